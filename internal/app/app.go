package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/TooLazyToCreate/student-directory/config"
	"github.com/TooLazyToCreate/student-directory/internal/repository"
	"github.com/TooLazyToCreate/student-directory/internal/service"
	"github.com/TooLazyToCreate/student-directory/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func Run(ctx context.Context, logger *zap.Logger, cfg *config.Config) error {
	db, err := storage.Open(ctx, logger, cfg.DatabaseUrl, storage.Options{
		MaxOpenConns:   cfg.Database.MaxOpenConns,
		MaxIdleConns:   cfg.Database.MaxIdleConns,
		ConnMaxIdle:    cfg.Database.ConnMaxIdle.Duration,
		ConnectRetries: cfg.Database.ConnectRetries,
		HealthInterval: cfg.Database.HealthInterval.Duration,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Connection to database was closed with error", zap.Error(err))
		}
	}()

	if err = db.Migrate(ctx); err != nil {
		return err
	}

	/* Фоновая проверка соединения с базой, результат отдаётся в /healthz */
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go db.Monitor(monitorCtx)

	userRepo := repository.NewUserRepository(logger, db.Conn())
	studentRepo := repository.NewStudentRepository(logger, db.Conn())
	authService := service.NewAuthService(logger, cfg, userRepo)
	directoryService := service.NewDirectoryService(logger, studentRepo, cfg.Database.QueryTimeout.Duration)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           NewRouter(logger, cfg, db, authService, directoryService),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Will serve on " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err = <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func NewRouter(logger *zap.Logger, cfg *config.Config, health service.HealthChecker,
	authService *service.AuthService, directoryService *service.DirectoryService) http.Handler {
	router := chi.NewRouter()

	// Это нагромождение выдаёт в RemoteAddr ip-адрес до переадресаций без порта
	router.Use(middleware.RealIP)
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				r.RemoteAddr = host
			}
			next.ServeHTTP(w, r)
		})
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(corsOptions(cfg.AllowedOrigins)))

	/* Устанавливаем свой логгер запросов в дебаг режиме */
	if cfg.IsDev() {
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.Debug("Request to "+r.RequestURI,
					zap.String("ip", r.RemoteAddr),
					zap.String("request_id", middleware.GetReqID(r.Context())))
				next.ServeHTTP(w, r)
			})
		})
	}

	router.Get("/healthz", service.HandleHealth(logger, health))
	router.Post("/login", authService.HandleLogin)

	router.Group(func(r chi.Router) {
		if cfg.RequireDirectoryAuth {
			r.Use(service.RequireSession(logger, cfg.Secret))
		} else {
			logger.Warn("Student directory is readable without a session token")
		}
		r.Get("/estudiantes", directoryService.HandleList)
	})

	return router
}

/* Без списка разрешённых источников пускаем всех */
func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}
}
