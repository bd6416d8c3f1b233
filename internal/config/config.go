package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LookupFunc resolves an environment variable, mirroring os.LookupEnv.
type LookupFunc func(string) (string, bool)

// Config represents the application configuration
type Config struct {
	MySQL        MySQLConfig         `json:"mysql"`
	Generator    GeneratorConfig     `json:"generator"`
	Template     string              `json:"template"`
	TopK         string              `json:"top_k"`
	Debug        bool                `json:"debug"`
	MaxHistory   int                 `json:"max_history"`
	QueryHistory []QueryHistoryEntry `json:"query_history"`
}

// MySQLConfig holds the database connection settings
type MySQLConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// GeneratorConfig holds the SQL generator endpoint settings
type GeneratorConfig struct {
	Endpoint    string `json:"endpoint"`
	Model       string `json:"model"`
	APIKey      string `json:"api_key"`
	TimeoutSecs int    `json:"timeout"`
}

// Timeout returns the generator request timeout as a duration
func (g GeneratorConfig) Timeout() time.Duration {
	if g.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(g.TimeoutSecs) * time.Second
}

// QueryHistoryEntry represents a query in history
type QueryHistoryEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Question      string    `json:"question"`
	SQL           string    `json:"sql,omitempty"`
	RowCount      int       `json:"row_count"`
	ExecutionTime float64   `json:"execution_time_ms"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		MySQL: MySQLConfig{
			Host: "127.0.0.1",
			Port: 3306,
			User: "root",
		},
		Generator: GeneratorConfig{
			Endpoint:    "http://127.0.0.1:8080",
			TimeoutSecs: 60,
		},
		Template:     "standard",
		TopK:         "5",
		MaxHistory:   50,
		QueryHistory: []QueryHistoryEntry{},
	}
}

// configDir is swapped out in tests
var configDir = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mysql-ai"), nil
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	return configDir()
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk and applies environment
// overrides. A missing file yields the defaults.
func Load() (*Config, error) {
	return LoadWith(os.LookupEnv)
}

// LoadWith is Load with an injectable environment lookup
func LoadWith(lookup LookupFunc) (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if cfg.QueryHistory == nil {
		cfg.QueryHistory = []QueryHistoryEntry{}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	if err := applyString(lookup, "MYSQL_AI_DB_HOST", &cfg.MySQL.Host); err != nil {
		return err
	}
	if err := applyInt(lookup, "MYSQL_AI_DB_PORT", &cfg.MySQL.Port); err != nil {
		return err
	}
	if err := applyString(lookup, "MYSQL_AI_DB_USER", &cfg.MySQL.User); err != nil {
		return err
	}
	if err := applyString(lookup, "MYSQL_AI_DB_PASSWORD", &cfg.MySQL.Password); err != nil {
		return err
	}
	if err := applyString(lookup, "MYSQL_AI_DB_NAME", &cfg.MySQL.Database); err != nil {
		return err
	}
	if err := applyString(lookup, "MYSQL_AI_LLM_ENDPOINT", &cfg.Generator.Endpoint); err != nil {
		return err
	}
	if err := applyString(lookup, "MYSQL_AI_LLM_MODEL", &cfg.Generator.Model); err != nil {
		return err
	}
	if err := applyString(lookup, "MYSQL_AI_LLM_API_KEY", &cfg.Generator.APIKey); err != nil {
		return err
	}
	if err := applyInt(lookup, "MYSQL_AI_LLM_TIMEOUT", &cfg.Generator.TimeoutSecs); err != nil {
		return err
	}
	if err := applyString(lookup, "MYSQL_AI_TEMPLATE", &cfg.Template); err != nil {
		return err
	}
	if err := applyString(lookup, "MYSQL_AI_TOP_K", &cfg.TopK); err != nil {
		return err
	}
	if err := applyBool(lookup, "MYSQL_AI_DEBUG", &cfg.Debug); err != nil {
		return err
	}
	return nil
}

// Validate checks that the settings needed to open a session are present
func (c *Config) Validate() error {
	if c.MySQL.Database == "" {
		return fmt.Errorf("mysql.database is required: set it in the config file or via MYSQL_AI_DB_NAME")
	}
	if c.Generator.Endpoint == "" {
		return fmt.Errorf("generator.endpoint is required: set it in the config file or via MYSQL_AI_LLM_ENDPOINT")
	}
	return nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	dir, err := configDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AddQueryToHistory adds a query to the history, most recent first
func (c *Config) AddQueryToHistory(entry QueryHistoryEntry) {
	c.QueryHistory = append([]QueryHistoryEntry{entry}, c.QueryHistory...)

	if c.MaxHistory > 0 && len(c.QueryHistory) > c.MaxHistory {
		c.QueryHistory = c.QueryHistory[:c.MaxHistory]
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}
