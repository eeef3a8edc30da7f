package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TooLazyToCreate/student-directory/internal/token"
	"go.uber.org/zap"
)

func (service *AuthService) HandleLogin(w http.ResponseWriter, req *http.Request) {
	/* Парсим запрос; битый JSON считаем отсутствием полей */
	credentials := Credentials{}
	if err := json.NewDecoder(req.Body).Decode(&credentials); err != nil {
		writeError(service.logger, w, http.StatusBadRequest, msgMissingFields)
		service.logger.Debug("Bad request", zap.Error(err), zap.String("ip", req.RemoteAddr))
		return
	}

	sessionToken, err := service.Login(req.Context(), credentials)
	switch {
	case errors.Is(err, ErrMissingField):
		writeError(service.logger, w, http.StatusBadRequest, msgMissingFields)
		service.logger.Debug("Bad request", zap.Error(err), zap.String("ip", req.RemoteAddr))
		return
	case errors.Is(err, ErrInvalidCredentials):
		writeError(service.logger, w, http.StatusUnauthorized, msgInvalidCredentials)
		service.logger.Info("Login rejected",
			zap.String("ip", req.RemoteAddr),
			zap.String("email", credentials.Email))
		return
	case err != nil:
		writeError(service.logger, w, http.StatusInternalServerError, msgServerError)
		service.logger.Error("Login failed", zap.Error(err),
			zap.String("ip", req.RemoteAddr),
			zap.String("email", credentials.Email))
		return
	}

	/* Выдаём токен в виде JSON */
	result, err := token.ToJson(sessionToken)
	if err != nil {
		writeError(service.logger, w, http.StatusInternalServerError, msgServerError)
		service.logger.Error("JSON failure", zap.Error(err))
		return
	}
	service.logger.Debug("New token was given", zap.String("email", credentials.Email))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(result)
}
