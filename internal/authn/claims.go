package authn

import (
	"context"
	"errors"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidJWT = errors.New("invalid jwt token")
var ErrInvalidClaims = errors.New("invalid claims")

// Claims are the access token claims issued by Keycloak that the service relies on.
type Claims struct {
	jwt.RegisteredClaims
	Username    string `json:"preferred_username"`
	Email       string `json:"email"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// Name returns the caller's username, falling back to the subject.
func (c Claims) Name() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Subject
}

// HasRole checks if the caller holds a realm role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.RealmAccess.Roles, role)
}

// Verifier validates a raw bearer token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
