package session

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/shared"
)

// TokenTTL is the lifetime of a local session token.
const TokenTTL = 24 * time.Hour

// placeholderSignature fills the third token segment. It is constant and never checked.
var placeholderSignature = base64.RawURLEncoding.EncodeToString([]byte("local-session"))

// Claims is the payload of a local session token.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// ValidAt reports whether the token has an expiry strictly after now.
func (c *Claims) ValidAt(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Time.After(now)
}

// Expiry returns the expiry time, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssueToken builds an unsigned local session token for id, issued at now (truncated to whole seconds)
// and expiring [TokenTTL] later.
func IssueToken(id models.Identity, now time.Time) (string, error) {
	issued := now.Truncate(time.Second)
	claims := Claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(TokenTTL)),
		},
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SigningString()
	if err != nil {
		return "", fmt.Errorf("failed to encode session token: %w", err)
	}
	return unsigned + "." + placeholderSignature, nil
}

// DecodeToken reads the payload of a local session token without checking its signature.
//
// It fails with [shared.ErrMalformedToken] when the token is not three segments or the payload is not valid JSON.
// Expiry is not checked here; see [Claims.ValidAt].
func DecodeToken(token string) (*Claims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, fmt.Errorf("%w: expected three segments", shared.ErrMalformedToken)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedToken, err)
	}
	return claims, nil
}
