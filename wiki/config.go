package wiki

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Default connection settings
const (
	DefaultAPIPath   = "/w/api.php"
	DefaultScheme    = "http"
	DefaultPort      = 80
	DefaultTimeout   = 30 * time.Second
	DefaultTokenPage = "Main Page"
	DefaultUserAgent = "mediawiki-api-client/1.0 (https://github.com/olgasafonova/mediawiki-api-client)"
)

// Config holds MediaWiki connection settings
type Config struct {
	// Site is the wiki host name (e.g., en.wikipedia.org)
	Site string `env:"MEDIAWIKI_SITE"`

	// APIPath is the path of api.php on the site
	APIPath string `env:"MEDIAWIKI_API_PATH" envDefault:"/w/api.php"`

	Scheme string `env:"MEDIAWIKI_SCHEME" envDefault:"http"`
	Port   int    `env:"MEDIAWIKI_PORT" envDefault:"80"`

	// NoBot stops edits from being flagged as bot edits. The zero value
	// flags them.
	NoBot bool `env:"MEDIAWIKI_NO_BOT"`

	// Username and Password are only used by callers that log in on startup
	Username string `env:"MEDIAWIKI_USERNAME"`
	Password string `env:"MEDIAWIKI_PASSWORD"`

	// Timeout for API requests made by the default transport
	Timeout time.Duration `env:"MEDIAWIKI_TIMEOUT" envDefault:"30s"`

	UserAgent string `env:"MEDIAWIKI_USER_AGENT"`

	// TokenPage is the reference page used when requesting operation tokens
	TokenPage string `env:"MEDIAWIKI_TOKEN_PAGE" envDefault:"Main Page"`
}

// DefaultConfig returns a config for site with every optional field defaulted
func DefaultConfig(site string) *Config {
	return &Config{
		Site:      site,
		APIPath:   DefaultAPIPath,
		Scheme:    DefaultScheme,
		Port:      DefaultPort,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		TokenPage: DefaultTokenPage,
	}
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first if present.
func LoadConfig() (*Config, error) {
	// The .env file is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Site == "" {
		return nil, &ConfigurationError{
			Field:   "MEDIAWIKI_SITE",
			Message: "environment variable is required",
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

// HasCredentials returns true if authentication credentials are configured
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// applyDefaults fills zero values so hand-built configs behave like loaded ones
func (c *Config) applyDefaults() {
	if c.APIPath == "" {
		c.APIPath = DefaultAPIPath
	}
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.TokenPage == "" {
		c.TokenPage = DefaultTokenPage
	}
}
