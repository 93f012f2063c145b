package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryLeeway treats tokens about to expire as expired.
const expiryLeeway = 30 * time.Second

// tokenExpired reports whether token is a JWT whose exp claim has passed at now.
// The signature is not verified: the portal remains the authority, this only avoids a
// request that is bound to fail. Opaque or exp-less tokens are never considered expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now.Add(expiryLeeway))
}
