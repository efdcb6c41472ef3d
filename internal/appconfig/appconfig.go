package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

// Config holds all configuration details
type Config struct {
	Host     string         `yaml:"host"`
	BasePath string         `yaml:"basePath"`
	DocsPath string         `yaml:"docsPath"`
	Keycloak KeycloakConfig `yaml:"keycloak"`
	Auth     AuthConfig     `yaml:"auth"`
	Pulsar   PulsarConfig   `yaml:"pulsar"`
	AWS      AWSConfig      `yaml:"aws"`
}

// KeycloakConfig defines how the admin API is reached. Secrets are never read
// from the file; see ClientSecret and Password.
type KeycloakConfig struct {
	URL             string        `yaml:"url"`
	Realm           string        `yaml:"realm"`
	AuthRealm       string        `yaml:"authRealm"`
	ClientId        string        `yaml:"clientId"`
	Username        string        `yaml:"username"`
	ClientSecretArn string        `yaml:"clientSecretArn"`
	ClientSecretKey string        `yaml:"clientSecretKey"`
	Timeout         time.Duration `yaml:"timeout"`
}

// AuthConfig defines how bearer tokens on incoming requests are verified
type AuthConfig struct {
	Issuer         string `yaml:"issuer"`
	Audience       string `yaml:"audience"`
	PublicKeyFile  string `yaml:"publicKeyFile"`
	PrivilegedRole string `yaml:"privilegedRole"`
}

// PulsarConfig defines the messaging system connection details
type PulsarConfig struct {
	URL           string `yaml:"url"`
	TopicProducer string `yaml:"topicProducer"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

// ClientSecret returns the admin client secret from the environment.
func (k KeycloakConfig) ClientSecret() string {
	return os.Getenv("KEYCLOAK_CLIENT_SECRET")
}

// Password returns the admin user's password from the environment.
func (k KeycloakConfig) Password() string {
	return os.Getenv("KEYCLOAK_PASSWORD")
}

// LoadConfig loads and parses the configuration from a given file path
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config file path is required")
	}

	// A .env file is optional; anything it sets is visible to the template
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	// Parse the template file
	tmpl, err := template.New(filepath.Base(path)).
		Option("missingkey=zero").ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file template: %w", err)
	}

	// Execute the template with environment variables
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, loadEnvVars()); err != nil {
		return nil, fmt.Errorf("error executing config file template: %w", err)
	}

	return parseConfig(buf.Bytes())
}

func parseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.DocsPath == "" {
		c.DocsPath = "/docs"
	}
	if c.Keycloak.AuthRealm == "" {
		c.Keycloak.AuthRealm = c.Keycloak.Realm
	}
	if c.Keycloak.ClientId == "" {
		c.Keycloak.ClientId = "admin-cli"
	}
	if c.Keycloak.Timeout == 0 {
		c.Keycloak.Timeout = 10 * time.Second
	}
	if c.Auth.PrivilegedRole == "" {
		c.Auth.PrivilegedRole = "MODERATOR"
	}
}

func (c *Config) validate() error {
	var missing []string
	if c.Keycloak.URL == "" {
		missing = append(missing, "keycloak.url")
	}
	if c.Keycloak.Realm == "" {
		missing = append(missing, "keycloak.realm")
	}
	if c.Auth.Issuer == "" && c.Auth.PublicKeyFile == "" {
		missing = append(missing, "auth.issuer or auth.publicKeyFile")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

// loadEnvVars loads environment variables into a map
func loadEnvVars() map[string]string {
	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		kv := strings.SplitN(env, "=", 2)
		if len(kv) == 2 {
			envVars[kv[0]] = kv[1]
		}
	}
	return envVars
}
