package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryHint resolves the expiry for a freshly issued token. The ISO
// timestamp from the auth response wins; when it is missing, the token's
// own exp claim is used if the bearer parses as a JWT. The claim is read
// without signature verification, which is fine here: the value only
// bounds how long we bother persisting the token, the server remains the
// authority on validity. A zero time means no hint.
func ExpiryHint(expiresAtISO, bearer string) time.Time {
	if expiresAtISO != "" {
		if t, err := time.Parse(time.RFC3339, expiresAtISO); err == nil {
			return t
		}
	}
	if bearer == "" {
		return time.Time{}
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(bearer, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
