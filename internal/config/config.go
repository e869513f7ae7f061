package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the Whispr server and its dependencies.
type Config struct {
	// Listen is the address the Whispr server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the base URL of the Whispr server, used in emails.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// SessionKey is the key used to encrypt session data.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// Auth holds the configuration for self-issued session tokens.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Email holds the email delivery configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Suggest holds the configuration for AI message suggestions.
	Suggest *SuggestConfig `yaml:"suggest" mapstructure:"suggest"`
	// Cleanup holds the configuration for background maintenance jobs.
	Cleanup *CleanupConfig `yaml:"cleanup" mapstructure:"cleanup"`
	// Gravatar holds the configuration for profile avatars.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// GravatarConfig holds the configuration for profile avatars.
type GravatarConfig struct {
	// Enabled indicates whether avatar URLs are included in public profiles.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the fallback image style (e.g. "mp", "identicon").
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum allowed image rating.
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the requested image size in pixels.
	Size int `yaml:"size" mapstructure:"size"`
}

// AuthConfig holds the configuration for self-issued session tokens.
type AuthConfig struct {
	// Secret is the symmetric key used to sign session tokens.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// TokenValidity is how long a session token stays valid.
	TokenValidity time.Duration `yaml:"token_validity" mapstructure:"token_validity"`
	// CookieName is the name of the cookie carrying the session token.
	CookieName string `yaml:"cookie_name" mapstructure:"cookie_name"`
	// CookieMaxAge is the max age of the session token cookie in seconds.
	CookieMaxAge int `yaml:"cookie_max_age" mapstructure:"cookie_max_age"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// URI is the MongoDB connection string.
	URI string `yaml:"uri" mapstructure:"uri"`
	// Name is the database name.
	Name string `yaml:"name" mapstructure:"name"`
	// Timeout is the per-operation timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// EmailConfig holds the email delivery configuration.
type EmailConfig struct {
	// Enabled indicates whether email delivery is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which mails are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which mails are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use implicit SSL/TLS for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// SuggestConfig holds the configuration for AI message suggestions.
type SuggestConfig struct {
	// Enabled indicates whether AI message suggestions are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// URL is the base URL of the chat completion API.
	URL string `yaml:"url" mapstructure:"url"`
	// APIKey is the API key for the chat completion API.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Model is the model used for suggestions.
	Model string `yaml:"model" mapstructure:"model"`
	// Timeout is the overall timeout for a suggestion request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CleanupConfig holds the configuration for background maintenance jobs.
type CleanupConfig struct {
	// Enabled indicates whether the unverified-account purge job is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Interval is how often the purge job runs.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// UnverifiedMaxAge is how long after code expiry an unverified account is kept.
	UnverifiedMaxAge time.Duration `yaml:"unverified_max_age" mapstructure:"unverified_max_age"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("WHISPR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.whispr")
		v.AddConfigPath("/etc/whispr")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with WHISPR_ prefix will override config file values")
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3000")
	v.SetDefault("server_url", "http://localhost:3000")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 172800) // 48 hours

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_validity", 7*24*time.Hour)
	v.SetDefault("auth.cookie_name", "session-token")
	v.SetDefault("auth.cookie_max_age", 86400)

	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "whispr")
	v.SetDefault("database.timeout", 10*time.Second)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_name", "Whispr")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)

	v.SetDefault("suggest.enabled", false)
	v.SetDefault("suggest.url", "https://api.cohere.com")
	v.SetDefault("suggest.model", "command-r-plus-08-2024")
	v.SetDefault("suggest.timeout", 30*time.Second)

	v.SetDefault("gravatar.enabled", true)
	v.SetDefault("gravatar.default_image", "mp")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 120)

	v.SetDefault("cleanup.enabled", true)
	v.SetDefault("cleanup.interval", 6*time.Hour)
	v.SetDefault("cleanup.unverified_max_age", 24*time.Hour)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing whispr config")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}

	if c.Auth == nil {
		return fmt.Errorf("missing auth config")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth secret is required")
	}
	if c.Auth.TokenValidity <= 0 {
		return fmt.Errorf("auth token validity must be positive")
	}

	if c.Database == nil {
		return fmt.Errorf("missing database config")
	}
	if c.Database.URI == "" {
		return fmt.Errorf("database URI is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email is enabled")
		}
	} else {
		log.Warn("Email delivery is disabled, verification codes will only be logged")
	}

	if c.Suggest != nil && c.Suggest.Enabled {
		if c.Suggest.URL == "" {
			return fmt.Errorf("suggest URL is required when suggestions are enabled")
		}
		if c.Suggest.APIKey == "" {
			return fmt.Errorf("suggest API key is required when suggestions are enabled")
		}
	}

	return nil
}
