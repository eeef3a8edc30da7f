package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/TooLazyToCreate/student-directory/config"
	"github.com/TooLazyToCreate/student-directory/internal/repository"
	"github.com/TooLazyToCreate/student-directory/internal/token"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	logger   *zap.Logger
	cfg      *config.Config
	userRepo repository.UserRepository
	validate *validator.Validate
	now      func() time.Time
	/* Сравниваем пароль с этим хэшем, если пользователя нет,
	 * чтобы время ответа не выдавало существование email */
	dummyHash []byte
}

func NewAuthService(logger *zap.Logger, cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		logger.Warn("Failed to generate dummy bcrypt hash", zap.Error(err))
	}
	return &AuthService{
		logger:    logger,
		cfg:       cfg,
		userRepo:  userRepo,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
		dummyHash: dummyHash,
	}
}

// Login verifies the credentials and issues a session token. Unknown email
// and wrong password both return ErrInvalidCredentials.
func (service *AuthService) Login(ctx context.Context, credentials Credentials) ([]byte, error) {
	if err := service.validate.Struct(credentials); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingField, err)
	}

	user, err := service.userRepo.GetByEmail(ctx, credentials.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if service.dummyHash != nil {
				bcrypt.CompareHashAndPassword(service.dummyHash, []byte(credentials.Password))
			}
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return token.Issue(service.cfg.Secret, token.Claims{UserID: user.ID, Email: user.Email}, service.now())
}
