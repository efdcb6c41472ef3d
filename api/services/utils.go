package services

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EO-DataHub/eodhp-user-services/models"
)

func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}) {

	w.Header().Set("Content-Type", "application/json")

	// We don't want to cache API responses so the client receives most curent data
	w.Header().Set("Cache-Control", "max-age=0")

	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	}
}

// HandleErrResponse writes a JSON error body for err.
func HandleErrResponse(w http.ResponseWriter, statusCode int, err error) {
	response := models.Response{
		Success:      0,
		ErrorCode:    ErrorCode(err),
		ErrorDetails: err.Error(),
	}

	// Surface the identity provider's own message when there is one
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		response.ErrorDetails = httpErr.Message
	}

	WriteResponse(w, statusCode, response)
}

// StatusCode maps a UserService error onto the HTTP status returned to the caller.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrProviderConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns a stable, machine readable code for err.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "not_found"
	case errors.Is(err, ErrProviderConflict):
		return "identity_provider_conflict"
	case errors.Is(err, ErrProviderUnavailable):
		return "identity_provider_unavailable"
	default:
		return "internal_error"
	}
}
