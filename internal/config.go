package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Content  ContentConfig     `yaml:"content"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Git      GitConfig         `yaml:"git"`
	Webhook  WebhookConfig     `yaml:"webhook"`
	Frontend FrontendConfig    `yaml:"frontend"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig holds the content tree settings.
type ContentConfig struct {
	// Path is the checkout root of the content repository.
	Path string `yaml:"path"`
	// Watch enables the filesystem watcher that syncs on local edits.
	Watch bool `yaml:"watch"`
	// AutoCreateCategories creates category rows for unknown category
	// directories instead of falling back to the default category.
	AutoCreateCategories bool `yaml:"auto_create_categories"`
	// DefaultCategorySlug receives documents whose category cannot be
	// resolved. Empty leaves such documents uncategorized.
	DefaultCategorySlug string `yaml:"default_category_slug"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// GitConfig holds the identity used for automated metadata commits.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// WebhookConfig holds the push-notification receiver settings. An empty
// secret disables the endpoint entirely.
type WebhookConfig struct {
	Secret string `yaml:"secret"`
}

// Enabled reports whether the webhook endpoint should be mounted.
func (c *WebhookConfig) Enabled() bool {
	return c.Secret != ""
}

// FrontendConfig holds the outbound cache-invalidation settings. An
// empty URL disables invalidation.
type FrontendConfig struct {
	RevalidateURL string `yaml:"revalidate_url"`
	Token         string `yaml:"token"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path:                 "./content",
			DefaultCategorySlug:  "uncategorized",
			AutoCreateCategories: false,
		},
		SQLite: SQLiteConfig{
			Path: "./gitpress.db",
		},
		Git: GitConfig{
			AuthorName:  "gitpress",
			AuthorEmail: "gitpress@localhost",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
