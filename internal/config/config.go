package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL    string `yaml:"database_url"`
	HTTPListenAddr string `yaml:"http_listen_addr"`
	ServiceName    string `yaml:"service_name"`
	LogLevel       string `yaml:"log_level"`

	// Issuer is the external base URL of the authorization server, used in
	// redirects and the login flow return URL.
	Issuer   string `yaml:"issuer"`
	LoginURL string `yaml:"login_url"`

	AuthCodeLifetime     time.Duration `yaml:"auth_code_lifetime"`
	AccessTokenLifetime  time.Duration `yaml:"access_token_lifetime"`
	RefreshTokenLifetime time.Duration `yaml:"refresh_token_lifetime"`

	RateLimitDefault int           `yaml:"rate_limit_default"`
	RateLimitWindow  time.Duration `yaml:"rate_limit_window"`

	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Load builds the config from an optional YAML file (CONFIG_FILE) with
// environment variables taking precedence.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPListenAddr:       ":8090",
		ServiceName:          "platform-api",
		LogLevel:             "info",
		Issuer:               "http://localhost:8090",
		LoginURL:             "http://localhost:8090/login",
		AuthCodeLifetime:     10 * time.Minute,
		AccessTokenLifetime:  time.Hour,
		RefreshTokenLifetime: 14 * 24 * time.Hour,
		RateLimitDefault:     1000,
		RateLimitWindow:      time.Hour,
		SweepInterval:        5 * time.Minute,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.HTTPListenAddr = getEnv("HTTP_LISTEN_ADDR", cfg.HTTPListenAddr)
	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Issuer = getEnv("ISSUER_URL", cfg.Issuer)
	cfg.LoginURL = getEnv("LOGIN_URL", cfg.LoginURL)

	var err error
	if cfg.AuthCodeLifetime, err = getDuration("AUTH_CODE_LIFETIME", cfg.AuthCodeLifetime); err != nil {
		return nil, err
	}
	if cfg.AccessTokenLifetime, err = getDuration("ACCESS_TOKEN_LIFETIME", cfg.AccessTokenLifetime); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenLifetime, err = getDuration("REFRESH_TOKEN_LIFETIME", cfg.RefreshTokenLifetime); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", cfg.RateLimitWindow); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", cfg.SweepInterval); err != nil {
		return nil, err
	}
	if cfg.RateLimitDefault, err = getInt("RATE_LIMIT_DEFAULT", cfg.RateLimitDefault); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required settings are present and sane.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RateLimitDefault <= 0 {
		return fmt.Errorf("rate limit default must be positive, got %d", c.RateLimitDefault)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.RateLimitWindow)
	}
	if c.AuthCodeLifetime <= 0 || c.AccessTokenLifetime <= 0 || c.RefreshTokenLifetime <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
