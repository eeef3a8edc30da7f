package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/TooLazyToCreate/student-directory/config"
	"github.com/TooLazyToCreate/student-directory/internal/app"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	workingDir, err := os.Getwd()
	if err != nil {
		log.Fatal("os.Getwd() failed with error - " + err.Error())
	}

	configPath := pflag.StringP("config", "c", filepath.Join(workingDir, "config.json"), "path to the JSON config file")
	envPath := pflag.String("env-file", filepath.Join(workingDir, "go.env"), "path to the env file")
	template := pflag.Bool("template", false, "write a config template to --config and exit")
	pflag.Parse()

	if *template {
		if err := config.WriteTemplate(*configPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	/* go.env не обязателен: в контейнере переменные приходят из окружения */
	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("Error loading .env file; Error - " + err.Error())
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Config loading failed with error - " + err.Error())
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.IsDev() {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		zapConfig.Development = true
	} else {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		zapConfig.Development = false
	}
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatal("Logger build failed with error - " + err.Error())
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = app.Run(ctx, logger, cfg); err != nil {
		logger.Fatal("Server have been stopped with error - " + err.Error())
	}
	logger.Info("Server have been stopped.")
}
