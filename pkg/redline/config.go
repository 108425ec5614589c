package redline

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jslattery/go-redline/pkg/redline/wml"
)

// Config contains all configuration options for a document session
type Config struct {
	// MaxPartSize is the byte ceiling applied to each part before parsing.
	// 0 means the default ceiling; negative disables the check.
	MaxPartSize int `toml:"max_part_size"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `toml:"log_level"`
	// Strict makes a document load fail on parse diagnostics instead of
	// degrading to partial data
	Strict bool `toml:"strict"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxPartSize: wml.DefaultMaxPartSize,
		LogLevel:    "info",
		Strict:      false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// REDLINE_MAX_PART_SIZE
	if val := os.Getenv("REDLINE_MAX_PART_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.MaxPartSize = size
		}
	}

	// REDLINE_LOG_LEVEL
	if val := os.Getenv("REDLINE_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// REDLINE_STRICT
	if val := os.Getenv("REDLINE_STRICT"); val != "" {
		config.Strict = parseBool(val)
	}

	return config
}

// LoadConfigFile reads a TOML configuration file and layers it over the
// defaults. Environment variables are not consulted; callers wanting both
// should start from ConfigFromEnvironment and decode over it.
func LoadConfigFile(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied to
// unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.MaxPartSize == 0 {
		config.MaxPartSize = defaults.MaxPartSize
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
