package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/EO-DataHub/eodhp-user-services/internal/authn"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// JWTMiddleware verifies the bearer token and adds its claims to the request context.
func JWTMiddleware(verifier authn.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				logger := zerolog.Ctx(r.Context()).With().
					Str("handler", "JWTMiddleware").Logger()

				// Get the Authorization header
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					logger.Debug().Msg("authorization header missing")
					unauthorized(w, "authorization header missing")
					return
				}

				// Check the Authorization header format
				token := strings.TrimPrefix(authHeader, "Bearer ")
				if token == authHeader || token == "" {
					logger.Warn().Msg("invalid token format")
					unauthorized(w, "invalid token format")
					return
				}

				claims, err := verifier.Verify(r.Context(), token)
				if err != nil {
					logger.Warn().Err(err).Msg("invalid bearer jwt token")
					unauthorized(w, "invalid bearer jwt token")
					return
				}

				// Add the claims to the context
				ctx := context.WithValue(r.Context(), ClaimsKey, claims)

				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// RequireRole rejects callers whose realm roles do not include role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				claims, ok := ClaimsFromContext(r.Context())
				if !ok {
					unauthorized(w, "unauthorized: invalid claims")
					return
				}

				if !claims.HasRole(role) {
					zerolog.Ctx(r.Context()).Warn().Str("user", claims.Name()).
						Str("required_role", role).Msg("Access denied: missing role")
					http.Error(w, "forbidden: missing required role", http.StatusForbidden)
					return
				}

				next.ServeHTTP(w, r)
			},
		)
	}
}

// ClaimsFromContext returns the claims stored by JWTMiddleware.
func ClaimsFromContext(ctx context.Context) (authn.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(authn.Claims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	http.Error(w, msg, http.StatusUnauthorized)
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := log.With().
				Str("host", r.Host).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Str("request_id", chimw.GetReqID(r.Context())).
				Time("timestamp", time.Now()).
				Logger()

			// Add the logger to the context
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}
