package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the browser cookie holding this service's session token.
const CookieName = "session_token"

// TTL is how long a browser session lives. The stored course API token
// expires together with the cookie.
const TTL = 24 * time.Hour

// NewToken signs a session JWT for a browser session. It asserts only the
// session ID and the role cached at login; all authorization stays with
// the course API.
func NewToken(secret, sessionID, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sid":  sessionID,
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
