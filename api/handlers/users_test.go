package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EO-DataHub/eodhp-user-services/api/middleware"
	services "github.com/EO-DataHub/eodhp-user-services/api/services"
	"github.com/EO-DataHub/eodhp-user-services/internal/authn"
	"github.com/EO-DataHub/eodhp-user-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userServiceMock struct {
	createErr   error
	user        *models.UserResponse
	getErr      error
	createCalls int
	created     models.UserRequest
	requestedID uuid.UUID
}

func (m *userServiceMock) CreateUser(_ context.Context, req models.UserRequest) error {
	m.createCalls++
	m.created = req
	return m.createErr
}

func (m *userServiceMock) GetUserByID(_ context.Context, id uuid.UUID) (*models.UserResponse, error) {
	m.requestedID = id
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func validUserJSON() []byte {
	body, _ := json.Marshal(models.UserRequest{
		Username:  "test-user",
		Email:     "email@test.com",
		Password:  "password",
		FirstName: "first",
		LastName:  "last",
	})
	return body
}

func TestCreateUser_Success(t *testing.T) {
	svc := &userServiceMock{}

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(validUserJSON()))
	w := httptest.NewRecorder()

	CreateUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, 1, svc.createCalls)
	assert.Equal(t, "test-user", svc.created.Username)
}

func TestCreateUser_InvalidEmail(t *testing.T) {
	svc := &userServiceMock{}
	body := []byte(`{"username":"test-user","email":"user.com","password":"password","firstName":"first","lastName":"last"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	w := httptest.NewRecorder()

	CreateUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.createCalls)

	var response models.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "validation_failed", response.ErrorCode)
	assert.Equal(t, map[string]string{"email": "must be a well-formed email address"}, response.Errors)
}

func TestCreateUser_MalformedJSON(t *testing.T) {
	svc := &userServiceMock{}

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader([]byte(`{"username":`)))
	w := httptest.NewRecorder()

	CreateUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.createCalls)
	assert.Contains(t, w.Body.String(), "invalid_payload")
}

func TestCreateUser_ProviderConflict(t *testing.T) {
	svc := &userServiceMock{
		createErr: fmt.Errorf("%w: %w", services.ErrProviderConflict,
			&services.HTTPError{Status: http.StatusConflict, Message: "User exists with same username"}),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(validUserJSON()))
	w := httptest.NewRecorder()

	CreateUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User exists with same username")
}

func TestCreateUser_TrailingData(t *testing.T) {
	svc := &userServiceMock{}
	body := append(validUserJSON(), []byte(`{"username":"second-user"}`)...)

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	w := httptest.NewRecorder()

	CreateUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.createCalls)
	assert.Contains(t, w.Body.String(), "invalid_payload")
}

func TestCreateUser_BodyTooLarge(t *testing.T) {
	svc := &userServiceMock{}
	body := `{"username":"` + strings.Repeat("a", maxRequestBytes) + `"}`

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	w := httptest.NewRecorder()

	CreateUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, svc.createCalls)
	assert.Contains(t, w.Body.String(), "invalid_payload")
}

func TestCreateUser_RealmNotFound(t *testing.T) {
	kc := new(services.MockKeycloakClient)
	kc.On("CreateUser", mock.Anything, mock.Anything).
		Return("", &services.HTTPError{Status: http.StatusNotFound, Message: "Realm not found."})

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(validUserJSON()))
	w := httptest.NewRecorder()

	CreateUser(services.NewUserService(kc, nil)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response models.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "identity_provider_unavailable", response.ErrorCode)
	assert.Equal(t, "Realm not found.", response.ErrorDetails)
	kc.AssertExpectations(t)
}

func TestCreateUser_ProviderUnavailable(t *testing.T) {
	svc := &userServiceMock{createErr: services.ErrProviderUnavailable}

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(validUserJSON()))
	w := httptest.NewRecorder()

	CreateUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "identity_provider_unavailable")
}

func TestGetUser_Success(t *testing.T) {
	expected := &models.UserResponse{
		FirstName: "first",
		LastName:  "last",
		Email:     "email@test.com",
		Roles:     []string{"MODERATOR"},
		Groups:    []string{},
	}
	svc := &userServiceMock{user: expected}
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+id.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": id.String()})
	w := httptest.NewRecorder()

	GetUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, svc.requestedID)

	var response models.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, *expected, response)
}

func TestGetUser_MalformedID(t *testing.T) {
	svc := &userServiceMock{}

	req := httptest.NewRequest(http.MethodGet, "/api/users/not-a-uuid", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})
	w := httptest.NewRecorder()

	GetUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_id")
	assert.Equal(t, uuid.Nil, svc.requestedID)
}

func TestGetUser_NotFound(t *testing.T) {
	svc := &userServiceMock{getErr: fmt.Errorf("%w: %w", services.ErrUserNotFound,
		&services.HTTPError{Status: http.StatusNotFound, Message: "User not found"})}
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+id.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": id.String()})
	w := httptest.NewRecorder()

	GetUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response models.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "not_found", response.ErrorCode)
}

func TestGetUser_ProviderUnavailable(t *testing.T) {
	svc := &userServiceMock{getErr: fmt.Errorf("resolving roles: %w", services.ErrProviderUnavailable)}
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+id.String(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": id.String()})
	w := httptest.NewRecorder()

	GetUser(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHello(t *testing.T) {
	claims := authn.Claims{Username: "moderator"}
	claims.Subject = "subject-id"

	req := httptest.NewRequest(http.MethodGet, "/api/users/hello", nil)
	ctx := context.WithValue(req.Context(), middleware.ClaimsKey, claims)
	w := httptest.NewRecorder()

	Hello().ServeHTTP(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "moderator", w.Body.String())
}

func TestHello_FallsBackToSubject(t *testing.T) {
	claims := authn.Claims{}
	claims.Subject = "subject-id"

	req := httptest.NewRequest(http.MethodGet, "/api/users/hello", nil)
	ctx := context.WithValue(req.Context(), middleware.ClaimsKey, claims)
	w := httptest.NewRecorder()

	Hello().ServeHTTP(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "subject-id", w.Body.String())
}

func TestHello_NoClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users/hello", nil)
	w := httptest.NewRecorder()

	Hello().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
