package state

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired inspects the session JWT's exp claim without verifying the
// signature; verification is the backend's job, the gateway only wants to
// avoid restoring a token that is already dead. Tokens that don't parse
// as JWTs are treated as live and left for the backend to reject.
func tokenExpired(tokenString string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(now)
}
