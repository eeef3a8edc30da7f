package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/TooLazyToCreate/student-directory/internal/token"
	"go.uber.org/zap"
)

type sessionKey struct{}

// SessionFromContext returns the token verified by RequireSession.
func SessionFromContext(ctx context.Context) (*token.Verified, bool) {
	session, ok := ctx.Value(sessionKey{}).(*token.Verified)
	return session, ok
}

// RequireSession rejects requests without a valid "Authorization: Bearer"
// session token. Only signature and expiry are checked.
func RequireSession(logger *zap.Logger, secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				writeError(logger, w, http.StatusUnauthorized, msgInvalidToken)
				logger.Debug("Missing session token", zap.String("ip", req.RemoteAddr))
				return
			}

			session, err := token.Verify(secret, []byte(raw))
			if err != nil {
				writeError(logger, w, http.StatusUnauthorized, msgInvalidToken)
				logger.Info("Session token rejected", zap.Error(err), zap.String("ip", req.RemoteAddr))
				return
			}

			ctx := context.WithValue(req.Context(), sessionKey{}, session)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
