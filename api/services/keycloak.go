package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/EO-DataHub/eodhp-user-services/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// KeycloakClient is a client for interacting with the Keycloak admin API.
type KeycloakClient struct {
	BaseURL    string
	Realm      string
	HTTPClient *http.Client
}

// KeycloakError is the error body returned by the token and admin endpoints.
type KeycloakError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorMessage     string `json:"errorMessage"`
}

type HTTPError struct {
	Message string
	Status  int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("keycloak responded %d: %s", e.Status, e.Message)
}

// AdminCredentials identifies the account used to call the admin API. When
// Username is set the password grant is used (admin-cli style), otherwise
// client_credentials.
type AdminCredentials struct {
	AuthRealm    string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// NewKeycloakClient creates a new instance of KeycloakClient. Every request
// carries a bearer token obtained from ts.
func NewKeycloakClient(baseURL, realm string, ts oauth2.TokenSource, timeout time.Duration) *KeycloakClient {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: http.DefaultTransport},
		Timeout:   timeout,
	}
	return &KeycloakClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Realm:      realm,
		HTTPClient: httpClient,
	}
}

// NewAdminTokenSource returns a caching token source for the admin API.
func NewAdminTokenSource(ctx context.Context, baseURL string, creds AdminCredentials, timeout time.Duration) oauth2.TokenSource {
	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token",
		strings.TrimSuffix(baseURL, "/"), url.PathEscape(creds.AuthRealm))

	// Token requests use their own client so they honour the same timeout
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})

	if creds.Username == "" {
		cc := &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		return cc.TokenSource(ctx)
	}

	return oauth2.ReuseTokenSource(nil, &passwordTokenSource{
		ctx: ctx,
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		username: creds.Username,
		password: creds.Password,
	})
}

// passwordTokenSource logs in again on every call; refresh tokens issued to
// admin-cli are short lived so re-authenticating is simpler than refreshing.
type passwordTokenSource struct {
	ctx      context.Context
	config   *oauth2.Config
	username string
	password string
}

func (s *passwordTokenSource) Token() (*oauth2.Token, error) {
	return s.config.PasswordCredentialsToken(s.ctx, s.username, s.password)
}

// CreateUser creates a user in the realm and returns the new user's ID.
func (kc *KeycloakClient) CreateUser(ctx context.Context, user models.User) (string, error) {
	body, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("failed to encode user: %w", err)
	}

	resp, err := kc.makeRequest(ctx, http.MethodPost, kc.adminURL("users"), body)
	if err != nil {
		return "", err
	}

	if resp.status != http.StatusCreated {
		return "", fmt.Errorf("failed to create user, status: %d, response: %s", resp.status, resp.body)
	}

	// The new ID is the last segment of the Location header
	location := resp.header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("user created but no location returned")
	}
	return path.Base(location), nil
}

// GetUser retrieves a user by ID.
func (kc *KeycloakClient) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := kc.getJSON(ctx, kc.adminURL("users", userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers returns users whose username, email or name contains query.
func (kc *KeycloakClient) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	params := url.Values{}
	params.Set("search", query)

	var users []models.User
	if err := kc.getJSON(ctx, kc.adminURL("users")+"?"+params.Encode(), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserID retrieves a user ID by exact username.
func (kc *KeycloakClient) GetUserID(ctx context.Context, username string) (string, error) {
	params := url.Values{}
	params.Set("username", username)
	params.Set("exact", "true")

	var users []models.User
	if err := kc.getJSON(ctx, kc.adminURL("users")+"?"+params.Encode(), &users); err != nil {
		return "", fmt.Errorf("failed to fetch user by username: %w", err)
	}

	if len(users) == 0 {
		return "", &HTTPError{Message: fmt.Sprintf("user '%s' not found", username), Status: http.StatusNotFound}
	}

	return users[0].ID, nil
}

// ListUsers returns every user in the realm.
func (kc *KeycloakClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := kc.getJSON(ctx, kc.adminURL("users"), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUserRealmRoles retrieves the effective realm roles of a user, including
// roles granted through composites and groups.
func (kc *KeycloakClient) GetUserRealmRoles(ctx context.Context, userID string) ([]models.Role, error) {
	var roles []models.Role
	if err := kc.getJSON(ctx, kc.adminURL("users", userID, "role-mappings", "realm", "composite"), &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetUserGroups retrieves the groups a user is a member of.
func (kc *KeycloakClient) GetUserGroups(ctx context.Context, userID string) ([]models.Group, error) {
	var groups []models.Group
	if err := kc.getJSON(ctx, kc.adminURL("users", userID, "groups"), &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListRealmRoles returns the roles defined in the realm.
func (kc *KeycloakClient) ListRealmRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := kc.getJSON(ctx, kc.adminURL("roles"), &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// ListGroups returns the top level groups of the realm.
func (kc *KeycloakClient) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := kc.getJSON(ctx, kc.adminURL("groups"), &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (kc *KeycloakClient) adminURL(segments ...string) string {
	escaped := make([]string, 0, len(segments)+3)
	escaped = append(escaped, "admin", "realms", url.PathEscape(kc.Realm))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return kc.BaseURL + "/" + strings.Join(escaped, "/")
}

func (kc *KeycloakClient) getJSON(ctx context.Context, url string, out any) error {
	resp, err := kc.makeRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	if resp.status != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.status, url)
	}

	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type keycloakResponse struct {
	body   []byte
	header http.Header
	status int
}

// Helper function for making HTTP requests to keycloak API.
func (kc *KeycloakClient) makeRequest(ctx context.Context, method, url string, body []byte) (*keycloakResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := kc.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{Message: errorMessage(resp, respBody), Status: resp.StatusCode}
	}

	return &keycloakResponse{body: respBody, header: resp.Header, status: resp.StatusCode}, nil
}

// errorMessage extracts the most useful message from a Keycloak error body.
func errorMessage(resp *http.Response, body []byte) string {
	var kcErr KeycloakError
	if err := json.Unmarshal(body, &kcErr); err == nil {
		switch {
		case kcErr.ErrorMessage != "":
			return kcErr.ErrorMessage
		case kcErr.ErrorDescription != "":
			return kcErr.ErrorDescription
		case kcErr.Error != "":
			return kcErr.Error
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return resp.Status
}
