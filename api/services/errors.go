package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserNotFound is returned when the identity provider has no user with the requested ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrProviderConflict is returned when the identity provider rejects a request,
	// for example a duplicate username or email.
	ErrProviderConflict = errors.New("identity provider rejected the request")

	// ErrProviderUnavailable covers connectivity failures, timeouts and server errors.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// classifyProviderError tags err with ErrProviderConflict or ErrProviderUnavailable
// while keeping the original error (and any *HTTPError) reachable via errors.As.
// A 404 here means a missing realm or endpoint, not a missing user; lookups
// use classifyLookupError instead.
func classifyProviderError(err error) error {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	switch {
	case httpErr.Status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	case httpErr.Status == http.StatusUnauthorized, httpErr.Status == http.StatusForbidden:
		// The service account itself was refused; nothing the caller can fix
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	case httpErr.Status >= 400 && httpErr.Status < 500:
		return fmt.Errorf("%w: %w", ErrProviderConflict, err)
	default:
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
}

// classifyLookupError is classifyProviderError for fetching a user by ID,
// where a 404 means the user does not exist.
func classifyLookupError(err error) error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	}
	return classifyProviderError(err)
}
