// Package session covers the two token concerns of this service: the
// best-effort decode of the course API's bearer token for a display
// identity, and the signed session tokens this service mints for the
// browser cookie.
package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coursedeck/backend/internal/model"
)

// DecodeIdentity extracts a display identity from a course API bearer
// token without verifying its signature. The token's payload segment is
// self-describing (username, email, role) and verification is the course
// API's job; trusting this identity for anything beyond display would be
// wrong. A malformed token — wrong segment count, bad encoding, missing
// fields — yields the zero Identity and an error the caller should log
// and otherwise ignore.
func DecodeIdentity(token string) (model.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return model.Identity{}, fmt.Errorf("decode token payload: %w", err)
	}

	id := model.Identity{
		Username: stringClaim(claims, "username"),
		Email:    stringClaim(claims, "email"),
		Role:     stringClaim(claims, "role"),
	}
	if id.IsZero() {
		return model.Identity{}, errors.New("token payload carries no identity fields")
	}
	return id, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
