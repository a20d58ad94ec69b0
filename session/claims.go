package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the claim set the backend signs into access tokens.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Claims decodes the claim set of a bearer token without verifying its
// signature. Verification belongs to the backend; the client only inspects
// claims to decide whether a stored session is worth presenting.
func Claims(token string) (*TokenClaims, error) {
	var claims TokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// TokenExpired reports whether the token carries an expiry in the past. A
// token without an expiry claim, or one that cannot be decoded at all, is
// treated as expired.
func TokenExpired(token string, now time.Time) bool {
	claims, err := Claims(token)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Before(now)
}
