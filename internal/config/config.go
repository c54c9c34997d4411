// Package config loads server configuration from command-line flags,
// environment variables, and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/versemark/versemark-server/internal/domain"
)

// File names below DataPath.
const (
	DatabaseFile   = "versemark.db"
	SettingsDir    = "settings"
	defaultEnvFile = ".env"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Labels    LabelsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig locates the bookmark database and the preference store.
type StorageConfig struct {
	DataPath string
}

// DatabasePath is the sqlite file holding bookmarks and labels.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataPath, DatabaseFile)
}

// SettingsPath is the badger directory holding preferences.
func (s StorageConfig) SettingsPath() string {
	return filepath.Join(s.DataPath, SettingsDir)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration // 0 disables the limit, needed for long SSE streams
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
}

// RateLimitConfig bounds requests per client IP on /api/v1.
type RateLimitConfig struct {
	RPS   float64 // 0 disables limiting
	Burst int
}

// Enabled reports whether requests should be rate limited.
func (r RateLimitConfig) Enabled() bool {
	return r.RPS > 0
}

// LabelsConfig holds label settings.
type LabelsConfig struct {
	SpeakLabelName string
	// Locale is a BCP 47 tag used to collate label names. "und" uses root collation.
	Locale string
}

// LocaleTag returns the parsed collation locale. Validate has already
// rejected malformed tags, so failures fall back to the root locale.
func (l LabelsConfig) LocaleTag() language.Tag {
	tag, err := language.Parse(l.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("versemark", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database and settings")
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 0, unlimited)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed CORS origins")
	rateLimitRPS := fs.String("rate-limit-rps", "", "Requests per second per client on /api/v1 (default: 20, 0 disables)")
	rateLimitBurst := fs.String("rate-limit-burst", "", "Rate limit burst size (default: 40)")
	speakLabel := fs.String("speak-label-name", "", "Name of the speak label")
	labelLocale := fs.String("label-locale", "", "BCP 47 locale for label ordering (default: und)")
	envFile := fs.String("env-file", defaultEnvFile, "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// godotenv.Load never overrides variables that are already set.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:               getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSAllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
		Labels: LabelsConfig{
			SpeakLabelName: getConfigValue(*speakLabel, "SPEAK_LABEL_NAME", domain.SpeakLabelName),
			Locale:         getConfigValue(*labelLocale, "LABEL_LOCALE", "und"),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if cfg.RateLimit.RPS, err = getFloatConfigValue(*rateLimitRPS, "RATE_LIMIT_RPS", "20"); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = getIntConfigValue(*rateLimitBurst, "RATE_LIMIT_BURST", "40"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if strings.TrimSpace(c.Labels.SpeakLabelName) == "" {
		return errors.New("speak label name cannot be blank")
	}
	if _, err := language.Parse(c.Labels.Locale); err != nil {
		return fmt.Errorf("invalid label locale %q: %w", c.Labels.Locale, err)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return errors.New("server timeouts cannot be negative")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate limit values cannot be negative")
	}
	if c.RateLimit.Enabled() && c.RateLimit.Burst == 0 {
		return errors.New("rate limit burst must be positive when limiting is enabled")
	}
	return nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) expandDataPath() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(home, ".versemark"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute. An empty path yields defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, rest)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return d, nil
}

func getFloatConfigValue(flagValue, envKey, defaultValue string) (float64, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return f, nil
}

func getIntConfigValue(flagValue, envKey, defaultValue string) (int, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
