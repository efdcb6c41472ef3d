package authn

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// PublicKeyVerifier checks RS256 tokens against a fixed realm public key,
// for deployments that cannot reach the issuer's discovery endpoint.
type PublicKeyVerifier struct {
	key     *rsa.PublicKey
	options []jwt.ParserOption
}

// NewPublicKeyVerifier parses a PEM encoded RSA public key. Issuer and audience
// are only enforced when non-empty.
func NewPublicKeyVerifier(pemKey []byte, issuer, audience string) (*PublicKeyVerifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("parsing realm public key: %w", err)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		options = append(options, jwt.WithAudience(audience))
	}

	return &PublicKeyVerifier{key: key, options: options}, nil
}

func (v *PublicKeyVerifier) Verify(_ context.Context, token string) (Claims, error) {
	claims := Claims{}

	t, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, v.options...)
	if err != nil {
		return claims, fmt.Errorf("%w: %v", ErrInvalidJWT, err)
	}
	if !t.Valid {
		return claims, ErrInvalidClaims
	}
	return claims, nil
}
