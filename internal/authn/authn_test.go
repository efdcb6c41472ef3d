package authn

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "http://keycloak.test/realms/eodhp"

func signToken(t *testing.T, key *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func moderatorClaims() Claims {
	claims := Claims{Username: "moderator", Email: "mod@test.com"}
	claims.Subject = "subject-id"
	claims.Issuer = testIssuer
	claims.Audience = jwt.ClaimStrings{"account", "user-services"}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	claims.IssuedAt = jwt.NewNumericDate(time.Now())
	claims.RealmAccess.Roles = []string{"offline_access", "MODERATOR"}
	return claims
}

func publicKeyPEM(t *testing.T, key *rsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func TestClaims_HasRoleAndName(t *testing.T) {
	claims := moderatorClaims()
	assert.True(t, claims.HasRole("MODERATOR"))
	assert.False(t, claims.HasRole("moderator"))
	assert.Equal(t, "moderator", claims.Name())

	claims.Username = ""
	assert.Equal(t, "subject-id", claims.Name())
}

func TestOIDCVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := NewOIDCVerifierWithKeySet(testIssuer, "user-services", keySet)

	claims, err := verifier.Verify(context.Background(), signToken(t, key, moderatorClaims()))
	require.NoError(t, err)
	assert.Equal(t, "moderator", claims.Username)
	assert.Equal(t, "subject-id", claims.Subject)
	assert.True(t, claims.HasRole("MODERATOR"))
}

func TestOIDCVerifier_Rejects(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := NewOIDCVerifierWithKeySet(testIssuer, "user-services", keySet)

	expired := moderatorClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongAudience := moderatorClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"someone-else"}

	wrongIssuer := moderatorClaims()
	wrongIssuer.Issuer = "http://elsewhere.test/realms/eodhp"

	tests := map[string]string{
		"garbage":        "not-a-jwt",
		"wrong key":      signToken(t, otherKey, moderatorClaims()),
		"expired":        signToken(t, key, expired),
		"wrong audience": signToken(t, key, wrongAudience),
		"wrong issuer":   signToken(t, key, wrongIssuer),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidJWT)
		})
	}
}

func TestOIDCVerifier_NoAudience(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := NewOIDCVerifierWithKeySet(testIssuer, "", keySet)

	claims := moderatorClaims()
	claims.Audience = jwt.ClaimStrings{"account"}

	_, err = verifier.Verify(context.Background(), signToken(t, key, claims))
	assert.NoError(t, err)
}

func TestPublicKeyVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier, err := NewPublicKeyVerifier(publicKeyPEM(t, key), testIssuer, "user-services")
	require.NoError(t, err)

	claims, err := verifier.Verify(context.Background(), signToken(t, key, moderatorClaims()))
	require.NoError(t, err)
	assert.Equal(t, "moderator", claims.Name())
	assert.Equal(t, []string{"offline_access", "MODERATOR"}, claims.RealmAccess.Roles)
}

func TestPublicKeyVerifier_Rejects(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier, err := NewPublicKeyVerifier(publicKeyPEM(t, key), testIssuer, "user-services")
	require.NoError(t, err)

	noExpiry := moderatorClaims()
	noExpiry.ExpiresAt = nil

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, moderatorClaims()).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong key":  signToken(t, otherKey, moderatorClaims()),
		"no expiry":  signToken(t, key, noExpiry),
		"hmac token": hs256,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidJWT)
		})
	}
}

func TestNewPublicKeyVerifier_BadPEM(t *testing.T) {
	_, err := NewPublicKeyVerifier([]byte("not a key"), "", "")
	assert.Error(t, err)
}
