package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("malformed token")

// TokenClaims is the subset of backend token claims the portal reads.
type TokenClaims struct {
	UserID    uint64
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry that lies before now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TokenInspector decodes backend tokens without verifying them. The portal
// holds no signing key; the backend stays the only verifier.
type TokenInspector struct {
	parser *jwt.Parser
}

func NewTokenInspector() *TokenInspector {
	return &TokenInspector{parser: jwt.NewParser()}
}

// Inspect returns the claims encoded in token.
func (i *TokenInspector) Inspect(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrMalformedToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	out := &TokenClaims{}
	switch v := claims["user_id"].(type) {
	case float64:
		if v >= 0 {
			out.UserID = uint64(v)
		}
	case string:
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			out.UserID = id
		}
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
