package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

/* Тексты ошибок - часть контракта с фронтендом, он показывает их как есть */
const (
	msgMissingFields      = "Email y contraseña requeridos"
	msgInvalidCredentials = "Credenciales incorrectas"
	msgInvalidToken       = "Token inválido"
	msgServerError        = "Error del servidor"
)

var (
	ErrMissingField       = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error("JSON failure", zap.Error(err))
		status = http.StatusInternalServerError
		data = []byte(`{"error":"` + msgServerError + `"}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(logger *zap.Logger, w http.ResponseWriter, status int, message string) {
	writeJSON(logger, w, status, errorBody{Error: message})
}
