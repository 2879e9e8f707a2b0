package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Settings holds the endpoints and tunables the CLI runs with. Values come
// from environment variables; command-line flags override them afterwards.
type Settings struct {
	CloudAPIURL string `validate:"required,url"`
	AuthURL     string `validate:"required,url"`
	ClientID    string `validate:"required"`

	LoginPort    int           `validate:"min=1,max=65535"`
	LoginTimeout time.Duration `validate:"min=0"`

	PollInterval   time.Duration `validate:"min=100ms"`
	PollMaxWait    time.Duration `validate:"min=0"`
	PollMaxRetries int           `validate:"min=0,max=20"`

	GitHubClientID     string
	VercelClientID     string
	VercelClientSecret string
	VercelIntegration  string

	LogLevel slog.Level
}

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultCloudAPIURL    = "https://cloud.saleor.io/platform/api"
	DefaultAuthURL        = "https://auth.saleor.io"
	DefaultClientID       = "saleor-cli"
	DefaultLoginPort      = 3000
	DefaultLoginTimeout   = 5 * time.Minute
	DefaultPollInterval   = 3 * time.Second
	DefaultPollMaxRetries = 3
	DefaultGitHubClientID = "Iv1.saleor-cli"
	DefaultVercelApp      = "saleor-cli"
)

var validate = validator.New()

// LoadSettings reads settings from the environment and validates them.
func LoadSettings() (*Settings, error) {
	s := &Settings{
		CloudAPIURL:        strings.TrimRight(envString("SALEOR_CLOUD_API_URL", DefaultCloudAPIURL), "/"),
		AuthURL:            strings.TrimRight(envString("SALEOR_AUTH_URL", DefaultAuthURL), "/"),
		ClientID:           envString("SALEOR_CLIENT_ID", DefaultClientID),
		LoginPort:          envInt("SALEOR_LOGIN_PORT", DefaultLoginPort),
		LoginTimeout:       envDuration("SALEOR_LOGIN_TIMEOUT", DefaultLoginTimeout),
		PollInterval:       envDuration("SALEOR_POLL_INTERVAL", DefaultPollInterval),
		PollMaxWait:        envDuration("SALEOR_POLL_MAX_WAIT", 0),
		PollMaxRetries:     envInt("SALEOR_POLL_RETRIES", DefaultPollMaxRetries),
		GitHubClientID:     envString("SALEOR_GITHUB_CLIENT_ID", DefaultGitHubClientID),
		VercelClientID:     os.Getenv("SALEOR_VERCEL_CLIENT_ID"),
		VercelClientSecret: os.Getenv("SALEOR_VERCEL_CLIENT_SECRET"),
		VercelIntegration:  envString("SALEOR_VERCEL_INTEGRATION", DefaultVercelApp),
		LogLevel:           envLevel("SALEOR_LOG_LEVEL", slog.LevelWarn),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings after flag overrides have been applied.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid setting %s: failed %q check (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envLevel(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return defaultVal
	}
	return level
}
