// Package config loads console settings from defaults, an optional TOML
// file, an optional .env file and A3KD_-prefixed environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "A3KD_"

	DefaultAPIBaseURL      = "http://localhost:8000"
	DefaultRefreshInterval = 2 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultServiceName     = "a3kd-console"
)

// Config holds every console setting.
type Config struct {
	APIBaseURL      string        `env:"API_BASE_URL"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
	TLSVerification bool          `env:"TLS_VERIFY"`
	LogLevel        string        `env:"LOG_LEVEL"`
	LogFile         string        `env:"LOG_FILE"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName     string        `env:"OTEL_SERVICE_NAME"`
	MetricsAddr     string        `env:"METRICS_ADDR"`
}

// fileConfig mirrors Config as written in a TOML file. Durations are
// strings ("2s", "500ms").
type fileConfig struct {
	APIBaseURL      string `toml:"api_base_url"`
	RefreshInterval string `toml:"refresh_interval"`
	RequestTimeout  string `toml:"request_timeout"`
	TLSVerification *bool  `toml:"tls_verify"`
	LogLevel        string `toml:"log_level"`
	LogFile         string `toml:"log_file"`
	OTLPEndpoint    string `toml:"otlp_endpoint"`
	ServiceName     string `toml:"service_name"`
	MetricsAddr     string `toml:"metrics_addr"`
}

// Files names optional files read by Load. Empty fields are skipped.
type Files struct {
	Config string // TOML; must exist when set
	DotEnv string // .env; ignored when missing
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIBaseURL:      DefaultAPIBaseURL,
		RefreshInterval: DefaultRefreshInterval,
		RequestTimeout:  DefaultRequestTimeout,
		TLSVerification: true,
		LogLevel:        DefaultLogLevel,
		ServiceName:     DefaultServiceName,
	}
}

// Load builds a Config from defaults, files and the environment, then validates it.
func Load(files Files) (Config, error) {
	cfg := Default()

	if files.Config != "" {
		if err := loadFile(files.Config, &cfg); err != nil {
			return Config{}, err
		}
	}

	if files.DotEnv != "" {
		if _, err := os.Stat(files.DotEnv); err == nil {
			if err := godotenv.Load(files.DotEnv); err != nil {
				return Config{}, fmt.Errorf("error loading %s: %w", files.DotEnv, err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	var fc fileConfig
	if err := tree.Unmarshal(&fc); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFile, fc.LogFile)
	setString(&cfg.OTLPEndpoint, fc.OTLPEndpoint)
	setString(&cfg.ServiceName, fc.ServiceName)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)
	if fc.TLSVerification != nil {
		cfg.TLSVerification = *fc.TLSVerification
	}
	if err := setDuration(&cfg.RefreshInterval, fc.RefreshInterval, "refresh_interval"); err != nil {
		return err
	}
	return setDuration(&cfg.RequestTimeout, fc.RequestTimeout, "request_timeout")
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v, key string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("error parsing config file: %s: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate reports settings the console cannot run with.
func (c Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.APIBaseURL)
	switch {
	case c.APIBaseURL == "":
		errs = append(errs, errors.New("api base url must not be empty"))
	case err != nil:
		errs = append(errs, fmt.Errorf("api base url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("api base url: unsupported scheme %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("api base url: missing host"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("refresh interval must be positive, got %s", c.RefreshInterval))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}
