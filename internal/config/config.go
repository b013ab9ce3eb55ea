/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package config provides configuration management for PageDB.

The configuration system supports multiple sources with clear precedence:
 1. Command-line flags (highest priority)
 2. Environment variables
 3. Configuration file
 4. Default values (lowest priority)

Configuration File Format:
The configuration file uses a flat TOML subset.

Example configuration file:

	# PageDB Configuration
	data_dir = "./storage"
	page_size_kb = 64
	encoding = "UTF8"
	collation = "binary"
	locale = "en_US"
	log_level = "warn"
	log_json = false
	log_file = "out/pagedb.log"

Page Size:
The page size used by INSERT is not taken from this file directly. It is
read on every insert from the JSON file named by page_config_file
(default <data_dir>/user_management/config.json), key "page_size_kb".
page_size_kb here is the fallback when that file is absent or invalid.

Environment Variables:
  - PAGEDB_DATA_DIR: Storage root holding databases/
  - PAGEDB_PAGE_SIZE_KB: Fallback page size in KiB
  - PAGEDB_PAGE_CONFIG_FILE: JSON file consulted for page_size_kb
  - PAGEDB_ENCODING: Page file encoding (UTF8, LATIN1, ASCII)
  - PAGEDB_COLLATION: String ordering (binary, nocase, unicode)
  - PAGEDB_LOCALE: Locale for unicode collation
  - PAGEDB_LOG_LEVEL: Log level (debug, info, warn, error)
  - PAGEDB_LOG_JSON: Enable JSON logging (true/false)
  - PAGEDB_LOG_FILE: Optional log file path
  - PAGEDB_HISTORY_FILE: REPL history file
  - PAGEDB_CONFIG_FILE: Path to configuration file
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Environment variable names for configuration.
const (
	EnvDataDir        = "PAGEDB_DATA_DIR"
	EnvPageSizeKB     = "PAGEDB_PAGE_SIZE_KB"
	EnvPageConfigFile = "PAGEDB_PAGE_CONFIG_FILE"
	EnvEncoding       = "PAGEDB_ENCODING"
	EnvCollation      = "PAGEDB_COLLATION"
	EnvLocale         = "PAGEDB_LOCALE"
	EnvLogLevel       = "PAGEDB_LOG_LEVEL"
	EnvLogJSON        = "PAGEDB_LOG_JSON"
	EnvLogFile        = "PAGEDB_LOG_FILE"
	EnvHistoryFile    = "PAGEDB_HISTORY_FILE"
	EnvResultCache    = "PAGEDB_RESULT_CACHE_ENTRIES"
	EnvConfigFile     = "PAGEDB_CONFIG_FILE"
)

// DefaultPageSizeKB is the page capacity used when nothing else is configured.
const DefaultPageSizeKB = 64

// Default configuration file paths (searched in order).
var DefaultConfigPaths = []string{
	"/etc/pagedb/pagedb.conf",
	"$HOME/.config/pagedb/pagedb.conf",
	"./pagedb.conf",
}

// DefaultHistoryFile returns the REPL history path, ~/.pagedb_history
// when HOME is known.
func DefaultHistoryFile() string {
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".pagedb_history")
	}
	return ""
}

// Config holds all configuration values for PageDB.
type Config struct {
	// Storage configuration
	DataDir        string `toml:"data_dir" json:"data_dir"`
	PageSizeKB     int    `toml:"page_size_kb" json:"page_size_kb"`
	PageConfigFile string `toml:"page_config_file" json:"page_config_file"` // empty = <data_dir>/user_management/config.json
	Encoding       string `toml:"encoding" json:"encoding"`
	Collation      string `toml:"collation" json:"collation"`
	Locale         string `toml:"locale" json:"locale"`

	// Logging configuration
	LogLevel string `toml:"log_level" json:"log_level"`
	LogJSON  bool   `toml:"log_json" json:"log_json"`
	LogFile  string `toml:"log_file" json:"log_file"`

	// Shell
	HistoryFile string `toml:"history_file" json:"history_file"`

	// ResultCacheEntries caps the SELECT result cache. 0 disables it.
	ResultCacheEntries int `toml:"result_cache_entries" json:"result_cache_entries"`

	// Metadata
	ConfigFile string `toml:"-" json:"-"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DataDir:     "./storage",
		PageSizeKB:  DefaultPageSizeKB,
		Encoding:    "UTF8",
		Collation:   "binary",
		Locale:      "en_US",
		LogLevel:    "warn",
		LogJSON:     false,
		HistoryFile: DefaultHistoryFile(),
	}
}

// PageConfigPath returns the JSON file consulted for the page size.
func (c *Config) PageConfigPath() string {
	if c.PageConfigFile != "" {
		return c.PageConfigFile
	}
	return filepath.Join(c.DataDir, "user_management", "config.json")
}

// Manager handles configuration loading, validation, and access.
type Manager struct {
	config *Config
	mu     sync.RWMutex

	onReload []func(*Config)
}

// NewManager creates a new configuration manager with default values.
func NewManager() *Manager {
	return &Manager{
		config:   DefaultConfig(),
		onReload: make([]func(*Config), 0),
	}
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Set updates the configuration.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// OnReload registers a callback to be called when configuration is reloaded.
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, fn)
}

func (m *Manager) notifyReload() {
	m.mu.RLock()
	callbacks := make([]func(*Config), len(m.onReload))
	copy(callbacks, m.onReload)
	cfg := m.config
	m.mu.RUnlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.DataDir == "" {
		errs = append(errs, "data_dir cannot be empty")
	}
	if c.PageSizeKB < 1 {
		errs = append(errs, fmt.Sprintf("invalid page_size_kb: %d (must be at least 1)", c.PageSizeKB))
	}
	if c.ResultCacheEntries < 0 {
		errs = append(errs, fmt.Sprintf("invalid result_cache_entries: %d (must not be negative)", c.ResultCacheEntries))
	}

	switch strings.ToUpper(c.Encoding) {
	case "UTF8", "UTF-8", "LATIN1", "ISO-8859-1", "ASCII":
	default:
		errs = append(errs, fmt.Sprintf("invalid encoding: %s (must be UTF8, LATIN1, or ASCII)", c.Encoding))
	}

	switch strings.ToLower(c.Collation) {
	case "binary", "nocase", "unicode":
	default:
		errs = append(errs, fmt.Sprintf("invalid collation: %s (must be binary, nocase, or unicode)", c.Collation))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LoadFromFile loads configuration from a TOML file.
func (m *Manager) LoadFromFile(path string) error {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := parseTOML(string(data), cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// LoadFromEnv merges environment variables over the current configuration.
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()

	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvPageSizeKB); v != "" {
		if kb, err := strconv.Atoi(v); err == nil {
			cfg.PageSizeKB = kb
		}
	}
	if v := os.Getenv(EnvPageConfigFile); v != "" {
		cfg.PageConfigFile = v
	}
	if v := os.Getenv(EnvEncoding); v != "" {
		cfg.Encoding = v
	}
	if v := os.Getenv(EnvCollation); v != "" {
		cfg.Collation = v
	}
	if v := os.Getenv(EnvLocale); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		cfg.LogJSON = parseBool(v)
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(EnvHistoryFile); v != "" {
		cfg.HistoryFile = v
	}
	if v := os.Getenv(EnvResultCache); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ResultCacheEntries = n
		}
	}

	m.Set(cfg)
}

// FindConfigFile searches for a configuration file in default locations.
// Returns the path to the first file found, or empty string if none found.
func FindConfigFile() string {
	if envPath := os.Getenv(EnvConfigFile); envPath != "" {
		if _, err := os.Stat(os.ExpandEnv(envPath)); err == nil {
			return os.ExpandEnv(envPath)
		}
	}

	for _, path := range DefaultConfigPaths {
		expanded := os.ExpandEnv(path)
		if _, err := os.Stat(expanded); err == nil {
			return expanded
		}
	}

	return ""
}

// Load loads configuration from file then environment.
// Command-line flags should be applied after calling this function.
func (m *Manager) Load() error {
	if path := FindConfigFile(); path != "" {
		if err := m.LoadFromFile(path); err != nil {
			return err
		}
	}
	m.LoadFromEnv()
	return nil
}

// Reload resets to defaults and reloads from file and environment.
func (m *Manager) Reload() error {
	path := m.Get().ConfigFile
	if path == "" {
		path = FindConfigFile()
	}

	m.Set(DefaultConfig())

	if path != "" {
		if err := m.LoadFromFile(path); err != nil {
			return err
		}
	}
	m.LoadFromEnv()
	m.notifyReload()
	return nil
}

func parseBool(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

// parseTOML handles the flat key = value subset of TOML used here.
func parseTOML(data string, cfg *Config) error {
	for lineNum, line := range strings.Split(data, "\n") {
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("line %d: invalid syntax: %s", lineNum+1, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if len(value) >= 2 && ((value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'')) {
			value = value[1 : len(value)-1]
		}

		if err := applyConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("line %d: %w", lineNum+1, err)
		}
	}
	return nil
}

func applyConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "data_dir":
		cfg.DataDir = value
	case "page_size_kb":
		kb, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid page_size_kb value: %s", value)
		}
		cfg.PageSizeKB = kb
	case "page_config_file":
		cfg.PageConfigFile = value
	case "encoding":
		cfg.Encoding = value
	case "collation":
		cfg.Collation = value
	case "locale":
		cfg.Locale = value
	case "log_level":
		cfg.LogLevel = value
	case "log_json":
		cfg.LogJSON = parseBool(value)
	case "log_file":
		cfg.LogFile = value
	case "history_file":
		cfg.HistoryFile = value
	case "result_cache_entries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid result_cache_entries value: %s", value)
		}
		cfg.ResultCacheEntries = n
	default:
		// Unknown keys are ignored for forward compatibility.
	}
	return nil
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("PageDB Configuration:\n")
	sb.WriteString(fmt.Sprintf("  Data Dir:         %s\n", c.DataDir))
	sb.WriteString(fmt.Sprintf("  Page Size (KB):   %d\n", c.PageSizeKB))
	sb.WriteString(fmt.Sprintf("  Page Config:      %s\n", c.PageConfigPath()))
	sb.WriteString(fmt.Sprintf("  Encoding:         %s\n", c.Encoding))
	sb.WriteString(fmt.Sprintf("  Collation:        %s (%s)\n", c.Collation, c.Locale))
	sb.WriteString(fmt.Sprintf("  Log Level:        %s\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("  Log JSON:         %v\n", c.LogJSON))
	if c.LogFile != "" {
		sb.WriteString(fmt.Sprintf("  Log File:         %s\n", c.LogFile))
	}
	if c.ResultCacheEntries > 0 {
		sb.WriteString(fmt.Sprintf("  Result Cache:     %d entries\n", c.ResultCacheEntries))
	}
	if c.ConfigFile != "" {
		sb.WriteString(fmt.Sprintf("  Config File:      %s\n", c.ConfigFile))
	}
	return sb.String()
}

// ToTOML returns the configuration as a TOML string.
func (c *Config) ToTOML() string {
	var sb strings.Builder
	sb.WriteString("# PageDB Configuration File\n\n")
	sb.WriteString("# Storage\n")
	sb.WriteString(fmt.Sprintf("data_dir = \"%s\"\n", c.DataDir))
	sb.WriteString(fmt.Sprintf("page_size_kb = %d\n", c.PageSizeKB))
	if c.PageConfigFile != "" {
		sb.WriteString(fmt.Sprintf("page_config_file = \"%s\"\n", c.PageConfigFile))
	}
	sb.WriteString(fmt.Sprintf("encoding = \"%s\"\n", c.Encoding))
	sb.WriteString(fmt.Sprintf("collation = \"%s\"\n", c.Collation))
	sb.WriteString(fmt.Sprintf("locale = \"%s\"\n\n", c.Locale))
	sb.WriteString("# Logging\n")
	sb.WriteString(fmt.Sprintf("log_level = \"%s\"\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("log_json = %v\n", c.LogJSON))
	if c.LogFile != "" {
		sb.WriteString(fmt.Sprintf("log_file = \"%s\"\n", c.LogFile))
	}
	if c.HistoryFile != "" {
		sb.WriteString(fmt.Sprintf("\n# Shell\nhistory_file = \"%s\"\n", c.HistoryFile))
	}
	if c.ResultCacheEntries > 0 {
		sb.WriteString(fmt.Sprintf("result_cache_entries = %d\n", c.ResultCacheEntries))
	}
	return sb.String()
}

// SaveToFile saves the configuration to a file.
func (c *Config) SaveToFile(path string) error {
	path = os.ExpandEnv(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.ToTOML()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
