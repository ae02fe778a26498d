// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/series"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath    string
	LogPath         string
	LogLevel        string
	DataPath        string
	DashboardPath   string
	ExportDir       string
	HoverClearDelay time.Duration
	Responsive      bool
	DensifyFactor   int
	DefaultRange    models.DateRange
	Dashboard       *Dashboard
}

// Default values
const (
	defaultHoverClearDelay = 40 * time.Millisecond
	defaultRangeFrom       = "2024-01-20"
	defaultRangeTo         = "2024-02-09"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath:    getEnvString("SYNCGRID_DB_PATH", getDefaultDatabasePath()),
		LogPath:         getEnvString("SYNCGRID_LOG_PATH", getDefaultLogPath()),
		LogLevel:        getEnvString("SYNCGRID_LOG_LEVEL", "info"),
		DataPath:        getEnvString("SYNCGRID_DATA_PATH", ""),
		DashboardPath:   getEnvString("SYNCGRID_DASHBOARD_PATH", ""),
		ExportDir:       getEnvString("SYNCGRID_EXPORT_DIR", getDefaultExportDir()),
		HoverClearDelay: getEnvDuration("SYNCGRID_HOVER_CLEAR_DELAY", defaultHoverClearDelay),
		Responsive:      getEnvBool("SYNCGRID_RESPONSIVE", true),
		DensifyFactor:   getEnvInt("SYNCGRID_DENSIFY_FACTOR", series.DefaultDensifyFactor),
	}

	r, err := parseRange(
		getEnvString("DEFAULT_RANGE_FROM", defaultRangeFrom),
		getEnvString("DEFAULT_RANGE_TO", defaultRangeTo),
	)
	if err != nil {
		return nil, err
	}
	cfg.DefaultRange = r

	if cfg.DashboardPath != "" {
		cfg.Dashboard, err = LoadDashboard(cfg.DashboardPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg.Dashboard = DefaultDashboard()
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure log directory exists
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseRange parses the configured default range endpoints.
func parseRange(from, to string) (models.DateRange, error) {
	f, err := models.ParseDate(from)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid DEFAULT_RANGE_FROM %q: %w", from, err)
	}
	t, err := models.ParseDate(to)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid DEFAULT_RANGE_TO %q: %w", to, err)
	}
	return models.NewDateRange(f, t).Normalized(), nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "syncgrid", ".env"),
			filepath.Join(home, ".syncgrid", ".env"),
		)
	}

	return paths
}

// configDir returns the per-user configuration directory.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "syncgrid")
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	dir := configDir()
	if dir == "" {
		return "syncgrid.db"
	}
	return filepath.Join(dir, "syncgrid.db")
}

// getDefaultLogPath returns the default path for the rotating log file.
func getDefaultLogPath() string {
	dir := configDir()
	if dir == "" {
		return "syncgrid.log"
	}
	return filepath.Join(dir, "logs", "syncgrid.log")
}

// getDefaultExportDir returns where exported chart images are written.
func getDefaultExportDir() string {
	dir := configDir()
	if dir == "" {
		return "exports"
	}
	return filepath.Join(dir, "exports")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "40ms", "1s". Bare integers are read as milliseconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
