package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/EO-DataHub/eodhp-user-services/api/services"
	"github.com/EO-DataHub/eodhp-user-services/internal/appconfig"
	"github.com/EO-DataHub/eodhp-user-services/internal/authn"
	awsclient "github.com/EO-DataHub/eodhp-user-services/internal/aws"
	"github.com/EO-DataHub/eodhp-user-services/internal/events"
	"github.com/rs/zerolog/log"
)

// initializeKeycloakClient builds the admin API client. The client secret comes
// from Secrets Manager when an ARN is configured, otherwise from the environment.
func initializeKeycloakClient(ctx context.Context, cfg *appconfig.Config) (*services.KeycloakClient, error) {
	kcCfg := cfg.Keycloak

	clientSecret := kcCfg.ClientSecret()
	if kcCfg.ClientSecretArn != "" {
		awsCfg, err := awsclient.LoadAWSConfig(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		clientSecret, err = awsclient.GetSecretString(ctx, awsclient.NewSecretsManagerClient(awsCfg),
			kcCfg.ClientSecretArn, kcCfg.ClientSecretKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load keycloak client secret: %w", err)
		}
	}

	ts := services.NewAdminTokenSource(ctx, kcCfg.URL, services.AdminCredentials{
		AuthRealm:    kcCfg.AuthRealm,
		ClientID:     kcCfg.ClientId,
		ClientSecret: clientSecret,
		Username:     kcCfg.Username,
		Password:     kcCfg.Password(),
	}, kcCfg.Timeout)

	log.Info().Str("url", kcCfg.URL).Str("realm", kcCfg.Realm).Msg("Keycloak admin client initialized")
	return services.NewKeycloakClient(kcCfg.URL, kcCfg.Realm, ts, kcCfg.Timeout), nil
}

// initializeVerifier prefers a configured realm public key and falls back to
// OIDC discovery against the issuer.
func initializeVerifier(ctx context.Context, authCfg appconfig.AuthConfig) (authn.Verifier, error) {
	if authCfg.PublicKeyFile != "" {
		pemKey, err := os.ReadFile(authCfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key file: %w", err)
		}
		return authn.NewPublicKeyVerifier(pemKey, authCfg.Issuer, authCfg.Audience)
	}
	return authn.NewOIDCVerifier(ctx, authCfg.Issuer, authCfg.Audience)
}

// initializeNotifier connects to Pulsar when it is configured.
func initializeNotifier(pulsarCfg appconfig.PulsarConfig) (events.Notifier, error) {
	if pulsarCfg.URL == "" {
		log.Info().Msg("Pulsar not configured, user events disabled")
		return events.NoopNotifier{}, nil
	}
	return events.NewEventPublisher(pulsarCfg.URL, pulsarCfg.TopicProducer)
}
