package services

import (
	"context"

	"github.com/EO-DataHub/eodhp-user-services/internal/events"
	"github.com/EO-DataHub/eodhp-user-services/models"
)

// IdentityProvider is the subset of the Keycloak admin API used by UserService.
type IdentityProvider interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserRealmRoles(ctx context.Context, userID string) ([]models.Role, error)
	GetUserGroups(ctx context.Context, userID string) ([]models.Group, error)
}

// UserService orchestrates user operations against the identity provider.
type UserService struct {
	KC     IdentityProvider
	Events events.Notifier
}

// NewUserService wires a UserService. A nil notifier disables events.
func NewUserService(kc IdentityProvider, notifier events.Notifier) *UserService {
	if notifier == nil {
		notifier = events.NoopNotifier{}
	}
	return &UserService{KC: kc, Events: notifier}
}
