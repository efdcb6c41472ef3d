package services

import (
	"context"

	"github.com/EO-DataHub/eodhp-user-services/internal/events"
	"github.com/EO-DataHub/eodhp-user-services/models"
	"github.com/stretchr/testify/mock"
)

type MockKeycloakClient struct {
	mock.Mock
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockKeycloakClient) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockKeycloakClient) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockKeycloakClient) GetUserRealmRoles(ctx context.Context, userID string) ([]models.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Role), args.Error(1)
}

func (m *MockKeycloakClient) GetUserGroups(ctx context.Context, userID string) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *MockEventPublisher) Notify(ctx context.Context, event events.UserEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() {
	m.Called()
}
