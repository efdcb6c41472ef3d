package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/EO-DataHub/eodhp-user-services/api/handlers"
	"github.com/EO-DataHub/eodhp-user-services/api/services"
	"github.com/EO-DataHub/eodhp-user-services/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// realmDirectory lists what a realm defines, independent of any user.
type realmDirectory interface {
	ListRealmRoles(ctx context.Context) ([]models.Role, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
}

var (
	newUser models.UserRequest
	userID  string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user in the identity provider",
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()

		ctx := log.Logger.WithContext(context.Background())
		keycloakClient := newCLIKeycloakClient(ctx)

		if err := createUser(ctx, services.NewUserService(keycloakClient, nil), newUser, os.Stdout); err != nil {
			log.Fatal().Err(err).Str("username", newUser.Username).Msg("Failed to create user")
		}
	},
}

var getUserCmd = &cobra.Command{
	Use:   "get-user",
	Short: "Print a user's profile, roles and groups as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()

		ctx := log.Logger.WithContext(context.Background())
		keycloakClient := newCLIKeycloakClient(ctx)

		if err := getUser(ctx, services.NewUserService(keycloakClient, nil), userID, os.Stdout); err != nil {
			log.Fatal().Err(err).Str("id", userID).Msg("Failed to get user")
		}
	},
}

var listRolesCmd = &cobra.Command{
	Use:   "list-roles",
	Short: "List the realm roles that can be granted to users",
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()

		ctx := log.Logger.WithContext(context.Background())
		if err := listRoles(ctx, newCLIKeycloakClient(ctx), os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Failed to list realm roles")
		}
	},
}

var listGroupsCmd = &cobra.Command{
	Use:   "list-groups",
	Short: "List the top level groups of the realm",
	Run: func(cmd *cobra.Command, args []string) {
		commonSetUp()

		ctx := log.Logger.WithContext(context.Background())
		if err := listGroups(ctx, newCLIKeycloakClient(ctx), os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Failed to list groups")
		}
	},
}

// createUser applies the same validation as POST /users before creating.
func createUser(ctx context.Context, svc handlers.UserService, req models.UserRequest, out io.Writer) error {
	if violations := handlers.ValidateUserRequest(req); violations != nil {
		return violations
	}
	if err := svc.CreateUser(ctx, req); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "User %s created\n", req.Username)
	return err
}

func getUser(ctx context.Context, svc handlers.UserService, rawID string, out io.Writer) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("malformed user id %q: %w", rawID, err)
	}

	user, err := svc.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(out, user)
}

func listRoles(ctx context.Context, dir realmDirectory, out io.Writer) error {
	roles, err := dir.ListRealmRoles(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return writeJSON(out, names)
}

func listGroups(ctx context.Context, dir realmDirectory, out io.Writer) error {
	groups, err := dir.ListGroups(ctx)
	if err != nil {
		return err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return writeJSON(out, groups)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newCLIKeycloakClient builds the admin client for one-shot commands; they do
// not hold a broker connection so user events are not published.
func newCLIKeycloakClient(ctx context.Context) *services.KeycloakClient {
	keycloakClient, err := initializeKeycloakClient(ctx, appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Keycloak client")
	}
	return keycloakClient
}

func init() {
	rootCmd.AddCommand(createUserCmd)
	createUserCmd.Flags().StringVar(&newUser.Username, "username", "", "username of the new user")
	createUserCmd.Flags().StringVar(&newUser.Email, "email", "", "email address of the new user")
	createUserCmd.Flags().StringVar(&newUser.Password, "password", "", "initial password")
	createUserCmd.Flags().StringVar(&newUser.FirstName, "first-name", "", "first name")
	createUserCmd.Flags().StringVar(&newUser.LastName, "last-name", "", "last name")

	rootCmd.AddCommand(getUserCmd)
	getUserCmd.Flags().StringVar(&userID, "id", "", "ID of the user")
	_ = getUserCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(listRolesCmd)
	rootCmd.AddCommand(listGroupsCmd)
}
