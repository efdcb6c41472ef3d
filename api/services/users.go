package services

import (
	"context"
	"fmt"
	"time"

	"github.com/EO-DataHub/eodhp-user-services/internal/events"
	"github.com/EO-DataHub/eodhp-user-services/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CreateUser creates the user in the identity provider with an initial password.
func (s *UserService) CreateUser(ctx context.Context, req models.UserRequest) error {
	logger := zerolog.Ctx(ctx).With().Str("username", req.Username).Logger()

	userID, err := s.KC.CreateUser(ctx, toProviderUser(req))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create user in identity provider")
		return classifyProviderError(err)
	}

	logger.Info().Str("user_id", userID).Msg("User created successfully")

	// Events are informational; the user exists regardless of the outcome
	event := events.UserEvent{
		Type:      events.UserCreated,
		UserID:    userID,
		Username:  req.Username,
		Timestamp: time.Now().UTC().Unix(),
	}
	if err := s.Events.Notify(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish user created event")
	}

	return nil
}

// GetUserByID fetches a user along with its effective realm roles and groups.
// Any failure resolving roles or groups fails the whole call.
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.UserResponse, error) {
	logger := zerolog.Ctx(ctx).With().Str("user_id", id.String()).Logger()

	user, err := s.KC.GetUser(ctx, id.String())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch user")
		return nil, classifyLookupError(err)
	}

	roles, err := s.KC.GetUserRealmRoles(ctx, id.String())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve user roles")
		return nil, fmt.Errorf("resolving roles: %w", classifyProviderError(err))
	}

	groups, err := s.KC.GetUserGroups(ctx, id.String())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve user groups")
		return nil, fmt.Errorf("resolving groups: %w", classifyProviderError(err))
	}

	logger.Debug().Int("roles", len(roles)).Int("groups", len(groups)).Msg("User retrieved")
	return toUserResponse(user, roles, groups), nil
}
