package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

var (
	// ErrMissingHeadscaleURL is returned when HEADSCALE_URL is unset.
	ErrMissingHeadscaleURL = errors.New(EnvHeadscaleURL + " must be set")
	// ErrMissingHeadscaleKey is returned when HEADSCALE_API_KEY is unset.
	ErrMissingHeadscaleKey = errors.New(EnvHeadscaleAPIKey + " must be set")
	// ErrMissingMullvadAccount is returned when MULLVAD_ACCOUNT is unset.
	ErrMissingMullvadAccount = errors.New(EnvMullvadAccount + " must be set")
)

// Config holds everything hsmv reads from the environment.
type Config struct {
	HeadscaleURL    string
	HeadscaleAPIKey string
	MullvadAccount  string
	MullvadAPIURL   string

	// MaxWorkers caps concurrent requests within one batch.
	MaxWorkers int

	// PushgatewayURL enables pushing batch metrics when non-empty.
	PushgatewayURL string

	Timeouts *Timeouts
}

// Load reads envFile (if present) into the process environment and returns
// the resulting configuration. An empty envFile means DefaultEnvFile, whose
// absence is ignored; an explicitly named file must exist.
func Load(envFile string) (*Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	return FromEnv(), nil
}

// FromEnv builds a Config from the current process environment.
func FromEnv() *Config {
	return &Config{
		HeadscaleURL:    strings.TrimRight(strings.TrimSpace(os.Getenv(EnvHeadscaleURL)), "/"),
		HeadscaleAPIKey: strings.TrimSpace(os.Getenv(EnvHeadscaleAPIKey)),
		MullvadAccount:  strings.TrimSpace(os.Getenv(EnvMullvadAccount)),
		MullvadAPIURL:   strings.TrimRight(envOr(EnvMullvadAPIURL, DefaultMullvadAPIURL), "/"),
		MaxWorkers:      parseInt(EnvMaxWorkers, DefaultMaxWorkers),
		PushgatewayURL:  strings.TrimSpace(os.Getenv(EnvPushgatewayURL)),
		Timeouts:        LoadTimeouts(),
	}
}

// ValidateHeadscale checks the coordinator credentials.
func (c *Config) ValidateHeadscale() error {
	var errs []error
	if c.HeadscaleURL == "" {
		errs = append(errs, ErrMissingHeadscaleURL)
	} else if u, err := url.Parse(c.HeadscaleURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid %s %q", EnvHeadscaleURL, c.HeadscaleURL))
	}
	if c.HeadscaleAPIKey == "" {
		errs = append(errs, ErrMissingHeadscaleKey)
	}
	return errors.Join(errs...)
}

// ValidateMullvad checks the relay provider account.
func (c *Config) ValidateMullvad() error {
	if c.MullvadAccount == "" {
		return ErrMissingMullvadAccount
	}
	return nil
}

// Workers returns the effective per-batch concurrency.
func (c *Config) Workers() int {
	if c.MaxWorkers <= 0 {
		return DefaultMaxWorkers
	}
	return c.MaxWorkers
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
