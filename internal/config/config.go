// ABOUTME: ChocoCrunch configuration: JSON file, .env file and environment overrides.
// ABOUTME: Resolves the dataset source, listen address, saved database path and log format.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults applied when nothing else sets a value.
const (
	DefaultCSVPath   = "ChocoCrunch_Cleaned_Dataset.csv"
	DefaultAddr      = "127.0.0.1:8501"
	DefaultLogFormat = "json"
)

// Environment variables that override the config file.
const (
	EnvCSV       = "CHOCO_CSV"
	EnvDB        = "CHOCO_DB"
	EnvAddr      = "CHOCO_ADDR"
	EnvSaveDB    = "CHOCO_SAVE_DB"
	EnvLogFormat = "CHOCO_LOG_FORMAT"
)

// Config stores chococrunch settings.
type Config struct {
	// CSVPath is the dataset loaded at startup. Supports ~ expansion.
	CSVPath string `json:"csv_path,omitempty"`

	// DBPath opens an already materialized database instead of the CSV.
	DBPath string `json:"db_path,omitempty"`

	// Addr is the dashboard listen address.
	Addr string `json:"addr,omitempty"`

	// SaveDB, when set, receives an on-disk copy of the materialized database.
	SaveDB string `json:"save_db,omitempty"`

	// LogFormat is "json" or "console".
	LogFormat string `json:"log_format,omitempty"`
}

// GetCSVPath returns the configured CSV path with ~ expanded.
func (c *Config) GetCSVPath() string {
	if c.CSVPath == "" {
		return DefaultCSVPath
	}
	return ExpandPath(c.CSVPath)
}

// GetDBPath returns the configured database path with ~ expanded, or "".
func (c *Config) GetDBPath() string {
	return ExpandPath(c.DBPath)
}

// GetSaveDB returns the configured save target with ~ expanded, or "".
func (c *Config) GetSaveDB() string {
	return ExpandPath(c.SaveDB)
}

// GetAddr returns the listen address, defaulting to DefaultAddr.
func (c *Config) GetAddr() string {
	if c.Addr == "" {
		return DefaultAddr
	}
	return c.Addr
}

// GetLogFormat returns the log format, defaulting to json.
func (c *Config) GetLogFormat() string {
	if c.LogFormat == "" {
		return DefaultLogFormat
	}
	return c.LogFormat
}

// UsesDatabase reports whether the dataset comes from a materialized database.
func (c *Config) UsesDatabase() bool {
	return c.DBPath != ""
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "chococrunch", "config.json")
}

// Load reads the config file at path (GetConfigPath when empty), then
// applies .env and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}
	cfg, err := LoadFile(ExpandPath(path))
	if err != nil {
		return nil, err
	}
	LoadDotEnv(".env")
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFile reads config from path. A missing file yields an empty config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDotEnv copies variables from a .env file into the process
// environment without overwriting variables that are already set. A missing
// file is ignored.
func LoadDotEnv(path string) {
	envMap, err := godotenv.Read(path)
	if err != nil {
		return
	}
	for k, v := range envMap {
		if os.Getenv(k) == "" {
			_ = os.Setenv(k, v)
		}
	}
}

// ApplyEnv overrides fields from CHOCO_* environment variables.
func (c *Config) ApplyEnv() {
	override := func(key string, field *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}
	override(EnvCSV, &c.CSVPath)
	override(EnvDB, &c.DBPath)
	override(EnvAddr, &c.Addr)
	override(EnvSaveDB, &c.SaveDB)
	override(EnvLogFormat, &c.LogFormat)
}

// Save writes config to the default config path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
