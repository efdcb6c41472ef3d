package authn

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier checks tokens against the issuer's published signing keys.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's configuration and JWKS endpoint.
// An empty audience disables the audience check.
func NewOIDCVerifier(ctx context.Context, issuer, audience string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", issuer, err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(verifierConfig(audience))}, nil
}

// NewOIDCVerifierWithKeySet builds a verifier from an explicit key set, skipping discovery.
func NewOIDCVerifierWithKeySet(issuer, audience string, keySet oidc.KeySet) *OIDCVerifier {
	return &OIDCVerifier{verifier: oidc.NewVerifier(issuer, keySet, verifierConfig(audience))}
}

func verifierConfig(audience string) *oidc.Config {
	return &oidc.Config{
		ClientID:          audience,
		SkipClientIDCheck: audience == "",
	}
}

func (v *OIDCVerifier) Verify(ctx context.Context, token string) (Claims, error) {
	claims := Claims{}

	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return claims, fmt.Errorf("%w: %v", ErrInvalidJWT, err)
	}

	if err := idToken.Claims(&claims); err != nil {
		return claims, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
	return claims, nil
}
