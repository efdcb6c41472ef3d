package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/EO-DataHub/eodhp-user-services/api/handlers"
	"github.com/EO-DataHub/eodhp-user-services/api/middleware"
	"github.com/EO-DataHub/eodhp-user-services/api/services"
	docs "github.com/EO-DataHub/eodhp-user-services/docs"
	"github.com/EO-DataHub/eodhp-user-services/internal/appconfig"
	"github.com/EO-DataHub/eodhp-user-services/internal/authn"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title EODHP User Services API
// @version v1
// @description This is the API for managing platform users held in Keycloak.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config and set up logging
		commonSetUp()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Initialise KeyCloak client
		keycloakClient, err := initializeKeycloakClient(ctx, appCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Keycloak client")
		}

		// Initialize the bearer token verifier
		verifier, err := initializeVerifier(ctx, appCfg.Auth)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize token verifier")
		}

		// Initialize event publisher
		notifier, err := initializeNotifier(appCfg.Pulsar)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}
		defer notifier.Close()

		userService := services.NewUserService(keycloakClient, notifier)

		srv := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           newRouter(appCfg, userService, verifier),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
			}
		}()

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("could not start server")
		}
		log.Info().Msg("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}

// newRouter registers every route. Order matters for /users/hello, which must
// be matched before /users/{id}.
func newRouter(cfg *appconfig.Config, userService handlers.UserService, verifier authn.Verifier) *mux.Router {
	r := mux.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, middleware.Metrics)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.Handle("/metrics", middleware.MetricsHandler()).Methods(http.MethodGet)

	// Docs
	docs.SwaggerInfo.Host = cfg.Host
	docs.SwaggerInfo.BasePath = cfg.BasePath
	r.PathPrefix(cfg.DocsPath).Handler(httpSwagger.Handler(
		httpSwagger.URL(path.Join(cfg.DocsPath, "/doc.json")),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)).Methods(http.MethodGet)

	// Register the routes
	api := r.PathPrefix(cfg.BasePath).Subrouter()

	// Apply the middleware to the API routes
	api.Use(middleware.WithLogger)
	api.Use(middleware.JWTMiddleware(verifier))
	api.Use(middleware.RequireRole(cfg.Auth.PrivilegedRole))

	// User routes
	api.HandleFunc("/users/hello", handlers.Hello()).Methods(http.MethodGet)
	api.HandleFunc("/users", handlers.CreateUser(userService)).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", handlers.GetUser(userService)).Methods(http.MethodGet)

	return r
}
