// Package config holds configuration and logging setup for plansheet.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values. Nothing reads the environment
// after Load; components receive their values explicitly.
type Config struct {
	// Remote spreadsheet API
	SheetsBaseURL string `yaml:"sheets_base_url"`
	AccessToken   string `yaml:"access_token"`

	// Retry behavior
	RetryBaseDelay time.Duration `yaml:"-"`
	RetryBaseName  string        `yaml:"retry_base_delay"`

	// Schema cache
	CachePath    string        `yaml:"cache_path"`
	CacheTTL     time.Duration `yaml:"-"`
	CacheTTLName string        `yaml:"cache_ttl"`

	// Message channel server
	ListenAddr string `yaml:"listen_addr"`

	// Logging
	LogFile       string     `yaml:"log_file"`
	LogLevel      slog.Level `yaml:"-"`
	LogLevelName  string     `yaml:"log_level"`
	LogBufferSize int        `yaml:"log_buffer_size"`
}

// Load reads the optional config file at path (or the default location
// when path is empty), then applies PLANSHEET_* environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = defaultConfigPath()
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnv(&cfg)
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	if d, err := time.ParseDuration(cfg.CacheTTLName); err == nil && d > 0 {
		cfg.CacheTTL = d
	}
	if d, err := time.ParseDuration(cfg.RetryBaseName); err == nil && d > 0 {
		cfg.RetryBaseDelay = d
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		SheetsBaseURL:  "https://sheets.googleapis.com/v4/spreadsheets",
		RetryBaseDelay: time.Second,
		CachePath:      filepath.Join(userDataDir(), "store.json"),
		CacheTTL:       24 * time.Hour,
		ListenAddr:     "127.0.0.1:8765",
		LogFile:        filepath.Join(userDataDir(), "plansheet.log"),
		LogLevelName:   "INFO",
		LogBufferSize:  200,
	}
}

func applyEnv(cfg *Config) {
	setEnv(&cfg.SheetsBaseURL, "PLANSHEET_SHEETS_URL")
	setEnv(&cfg.AccessToken, "PLANSHEET_ACCESS_TOKEN")
	setEnv(&cfg.CachePath, "PLANSHEET_CACHE_PATH")
	setEnv(&cfg.ListenAddr, "PLANSHEET_LISTEN_ADDR")
	setEnv(&cfg.LogFile, "PLANSHEET_LOG_FILE")
	setEnv(&cfg.LogLevelName, "PLANSHEET_LOG_LEVEL")

	setEnv(&cfg.CacheTTLName, "PLANSHEET_CACHE_TTL")
	setEnv(&cfg.RetryBaseName, "PLANSHEET_RETRY_BASE")
}

func setEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func defaultConfigPath() string {
	return filepath.Join(userDataDir(), "config.yaml")
}

// userDataDir is where plansheet keeps its cache, log and config.
func userDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".plansheet"
	}
	return filepath.Join(home, ".plansheet")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
