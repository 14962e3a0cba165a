package config

import (
	"os"

	"github.com/joho/godotenv"

	apperrors "github.com/kurosawa0120/wecom-dump/internal/errors"
)

// Config holds the application configuration. Credentials and proxy
// settings can come from the environment; flags override them.
type Config struct {
	// Credentials: either CorpID+CorpSecret or a pre-issued AccessToken
	CorpID      string
	CorpSecret  string
	AccessToken string

	// Proxy
	Proxy         string
	ProxyUser     string
	ProxyPassword string

	UserAgent string

	// BaseURL overrides the production API endpoint, mainly for tests
	BaseURL string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		CorpID:        getEnv("WX_CORP_ID", ""),
		CorpSecret:    getEnv("WX_CORP_SECRET", ""),
		AccessToken:   getEnv("WX_ACCESS_TOKEN", ""),
		Proxy:         getEnv("WX_PROXY", ""),
		ProxyUser:     getEnv("WX_PROXY_USER", ""),
		ProxyPassword: getEnv("WX_PROXY_PASSWORD", ""),
		UserAgent:     getEnv("WX_USER_AGENT", ""),
		BaseURL:       getEnv("WX_BASE_URL", ""),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate validates the configuration before any network activity
func (c *Config) Validate() error {
	hasIDSecret := c.CorpID != "" && c.CorpSecret != ""
	hasPartialIDSecret := (c.CorpID != "") != (c.CorpSecret != "")
	hasToken := c.AccessToken != ""

	if hasPartialIDSecret {
		return apperrors.NewConfigError("corp id and corp secret must be supplied together")
	}
	if !hasIDSecret && !hasToken {
		return apperrors.NewConfigError("supply corp id and secret, or a pre-issued access token")
	}
	if hasIDSecret && hasToken {
		return apperrors.NewConfigError("supply either corp credentials or an access token, not both")
	}

	if (c.ProxyUser != "") != (c.ProxyPassword != "") {
		return apperrors.NewConfigError("proxy username and password must be supplied together")
	}
	if c.ProxyUser != "" && c.Proxy == "" {
		return apperrors.NewConfigError("proxy credentials require a proxy URL")
	}

	return nil
}
