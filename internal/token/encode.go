package token

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/jwt"
)

// Lifetime of a session token. There is no refresh: a user logs in again.
const Lifetime = 2 * time.Hour

var Algorithm = jwt.HS256

type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
}

/* Полезная нагрузка токена: данные пользователя + стандартные поля.
 * iat и exp выставляем сами, а не через jwt.MaxAge, чтобы время бралось
 * из часов сервиса. */
type payload struct {
	UserID   int64  `json:"id"`
	Email    string `json:"email"`
	ID       string `json:"jti"`
	IssuedAt int64  `json:"iat"`
	Expiry   int64  `json:"exp"`
}

// Issue signs claims into a session token valid for Lifetime from issuedAt.
func Issue(secret []byte, claims Claims, issuedAt time.Time) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty signing secret")
	}
	return jwt.Sign(Algorithm, secret, payload{
		UserID:   claims.UserID,
		Email:    claims.Email,
		ID:       uuid.NewString(),
		IssuedAt: issuedAt.Unix(),
		Expiry:   issuedAt.Add(Lifetime).Unix(),
	})
}
