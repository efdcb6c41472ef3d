package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EO-DataHub/eodhp-user-services/api/middleware"
	services "github.com/EO-DataHub/eodhp-user-services/api/services"
	"github.com/EO-DataHub/eodhp-user-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// maxRequestBytes caps the size of a create user payload.
const maxRequestBytes = 1 << 20

// UserService is implemented by services.UserService.
type UserService interface {
	CreateUser(ctx context.Context, req models.UserRequest) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.UserResponse, error)
}

// @Summary Create a user
// @Description Create a user in the identity provider with an initial, non-temporary password.
// @Tags users
// @Accept json
// @Param user body models.UserRequest true "User to create"
// @Success 200
// @Failure 400 {object} models.Response
// @Failure 401 {object} string
// @Failure 403 {object} string
// @Failure 500 {object} models.Response
// @Router /users [post]
func CreateUser(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str("handler", "CreateUser").Logger()

		var req models.UserRequest
		if err := decodeUserRequest(w, r, &req); err != nil {
			logger.Warn().Err(err).Msg("Invalid request payload")
			services.WriteResponse(w, http.StatusBadRequest, models.Response{
				ErrorCode:    "invalid_payload",
				ErrorDetails: err.Error(),
			})
			return
		}

		if violations := ValidateUserRequest(req); violations != nil {
			logger.Warn().Interface("violations", violations).Msg("User request failed validation")
			services.WriteResponse(w, http.StatusBadRequest, models.Response{
				ErrorCode:    "validation_failed",
				ErrorDetails: violations.Error(),
				Errors:       violations,
			})
			return
		}

		if err := svc.CreateUser(r.Context(), req); err != nil {
			status := services.StatusCode(err)
			logger.Error().Err(err).Int("status", status).Msg("Failed to create user")
			services.HandleErrResponse(w, status, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// @Summary Get a user
// @Description Get a user's profile with effective realm roles and group memberships.
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} models.Response
// @Failure 401 {object} string
// @Failure 403 {object} string
// @Failure 404 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /users/{id} [get]
func GetUser(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str("handler", "GetUser").Logger()

		id, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			logger.Warn().Err(err).Msg("Malformed user id")
			services.WriteResponse(w, http.StatusBadRequest, models.Response{
				ErrorCode:    "invalid_id",
				ErrorDetails: err.Error(),
			})
			return
		}

		user, err := svc.GetUserByID(r.Context(), id)
		if err != nil {
			status := services.StatusCode(err)
			if errors.Is(err, services.ErrUserNotFound) {
				logger.Info().Str("user_id", id.String()).Msg("User not found")
			} else {
				logger.Error().Err(err).Str("user_id", id.String()).Msg("Failed to get user")
			}
			services.HandleErrResponse(w, status, err)
			return
		}

		services.WriteResponse(w, http.StatusOK, user)
	}
}

// @Summary Who am I
// @Description Echo the authenticated caller's username. Requires the privileged realm role.
// @Tags users
// @Produce plain
// @Success 200 {string} string
// @Failure 401 {object} string
// @Failure 403 {object} string
// @Router /users/hello [get]
func Hello() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized: invalid claims", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(claims.Name()))
	}
}

// decodeUserRequest reads exactly one JSON object from a size limited body.
func decodeUserRequest(w http.ResponseWriter, r *http.Request, req *models.UserRequest) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(req); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
