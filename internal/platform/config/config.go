package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

var (
	errInvalidPort    = errors.New("config: invalid PORT number")
	errInvalidOrigin  = errors.New("config: ALLOWED_ORIGIN must be an absolute http(s) origin")
	errInvalidTimeout = errors.New("config: timeouts must be positive")
	errEmptyUserAgent = errors.New("config: USER_AGENT must not be empty")
)

const defaultUserAgent = "Mozilla/5.0 (compatible; SiteScoreBot/1.0; +https://casestudynapoles.netlify.app)"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port                 string
	LogLevel             string
	AllowedOrigin        string
	UserAgent            string
	AssetFetchTimeout    time.Duration
	DocumentFetchTimeout time.Duration
	AnalyzeTimeout       time.Duration
	IncludeFeedback      bool
	AllowPrivateTargets  bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                 getEnv("PORT", "4000"),
		LogLevel:             getEnv("LOG_LEVEL", "INFO"),
		AllowedOrigin:        getEnv("ALLOWED_ORIGIN", "https://casestudynapoles.netlify.app"),
		UserAgent:            getEnv("USER_AGENT", defaultUserAgent),
		AssetFetchTimeout:    getEnvAsDuration("ASSET_FETCH_TIMEOUT", 5*time.Second),
		DocumentFetchTimeout: getEnvAsDuration("DOCUMENT_FETCH_TIMEOUT", 15*time.Second),
		AnalyzeTimeout:       getEnvAsDuration("ANALYZE_TIMEOUT", 60*time.Second),
		IncludeFeedback:      getEnvAsBool("INCLUDE_FEEDBACK", true),
		AllowPrivateTargets:  getEnvAsBool("ALLOW_PRIVATE_TARGETS", false),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	origin, err := url.Parse(c.AllowedOrigin)
	if err != nil || origin.Host == "" || (origin.Scheme != "http" && origin.Scheme != "https") {
		return fmt.Errorf("%w: %q", errInvalidOrigin, c.AllowedOrigin)
	}

	if c.AssetFetchTimeout <= 0 || c.DocumentFetchTimeout <= 0 || c.AnalyzeTimeout <= 0 {
		return errInvalidTimeout
	}

	if c.UserAgent == "" {
		return errEmptyUserAgent
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}
