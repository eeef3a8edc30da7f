package token

import (
	"time"

	"github.com/kataras/jwt"
)

type Verified struct {
	Claims
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Verify checks the signature and expiry of a session token. Nothing else
// is consulted: tokens are not stored server-side.
func Verify(secret []byte, raw []byte) (*Verified, error) {
	verifiedToken, err := jwt.Verify(Algorithm, secret, raw)
	if err != nil {
		return nil, err
	}
	var claims Claims
	if err = verifiedToken.Claims(&claims); err != nil {
		return nil, err
	}
	return &Verified{
		Claims:    claims,
		ID:        verifiedToken.StandardClaims.ID,
		IssuedAt:  time.Unix(verifiedToken.StandardClaims.IssuedAt, 0),
		ExpiresAt: time.Unix(verifiedToken.StandardClaims.Expiry, 0),
	}, nil
}
