package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings backends.
const (
	SettingsBackendDB     = "db"
	SettingsBackendFile   = "file"
	SettingsBackendMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	NodeEnv    string
	Port       string
	JWTSecret  string
	PathPrefix string
	Database   DatabaseConfig
	Settings   SettingsConfig
	Store      StoreConfig
	Preview    PreviewConfig
	Render     RenderConfig
	Designer   DesignerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Silent   bool
}

// SettingsConfig selects where settings documents live.
type SettingsConfig struct {
	Backend string
	File    string
}

// StoreConfig is the store identity printed on labels until one is saved
// through the settings API.
type StoreConfig struct {
	Name    string
	Address string
}

// PreviewConfig sizes the on-screen preview grid, in pixels.
type PreviewConfig struct {
	WidthPx  float64
	MarginPx float64
}

// RenderConfig holds print surface options.
type RenderConfig struct {
	// PDFFontFile is a TrueType font for PDF text outside cp1252, such as
	// Devanagari names or the rupee sign. Empty means core Arial.
	PDFFontFile string
}

// DesignerConfig bounds the in-memory designer sessions.
type DesignerConfig struct {
	SessionIdleTimeout time.Duration
	MaxSessions        int
}

// Load loads configuration from .env and environment variables.
// JWT_SECRET is optional: without it write routes are left open.
func Load() (*Config, error) {
	_ = godotenv.Load()

	width, err := getEnvFloat("PREVIEW_WIDTH_PX", 800)
	if err != nil {
		return nil, err
	}
	margin, err := getEnvFloat("PREVIEW_MARGIN_PX", 10)
	if err != nil {
		return nil, err
	}

	idle, err := getEnvDuration("DESIGNER_SESSION_IDLE", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	maxSessions, err := getEnvFloat("DESIGNER_MAX_SESSIONS", 500)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		NodeEnv:    getEnv("NODE_ENV", "development"),
		Port:       getEnv("PORT", "3210"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		PathPrefix: strings.TrimRight(os.Getenv("PATH_PREFIX"), "/"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "poslabel"),
			Silent:   getEnv("DB_SILENT", "false") == "true",
		},
		Settings: SettingsConfig{
			Backend: strings.ToLower(getEnv("SETTINGS_BACKEND", SettingsBackendDB)),
			File:    getEnv("SETTINGS_FILE", "./data/settings.json"),
		},
		Store: StoreConfig{
			Name:    getEnv("STORE_NAME", "M MART"),
			Address: getEnv("STORE_ADDRESS", "Main Road, City Centre"),
		},
		Preview: PreviewConfig{WidthPx: width, MarginPx: margin},
		Render:  RenderConfig{PDFFontFile: os.Getenv("PDF_FONT_FILE")},
		Designer: DesignerConfig{
			SessionIdleTimeout: idle,
			MaxSessions:        int(maxSessions),
		},
	}

	switch cfg.Settings.Backend {
	case SettingsBackendDB, SettingsBackendFile, SettingsBackendMemory:
	default:
		return nil, fmt.Errorf("SETTINGS_BACKEND must be db, file or memory, got %q", cfg.Settings.Backend)
	}
	if cfg.PathPrefix != "" && !strings.HasPrefix(cfg.PathPrefix, "/") {
		cfg.PathPrefix = "/" + cfg.PathPrefix
	}
	return cfg, nil
}

// IsProduction reports whether NODE_ENV is production.
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", key, raw)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 30m, got %q", key, raw)
	}
	return v, nil
}
