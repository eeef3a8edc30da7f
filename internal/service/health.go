package service

import (
	"net/http"

	"go.uber.org/zap"
)

type HealthChecker interface {
	Healthy() bool
}

func HandleHealth(logger *zap.Logger, checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if !checker.Healthy() {
			writeJSON(logger, w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(logger, w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
