// Package config loads engine configuration from a YAML file with
// environment-variable overrides, backed by viper. The configuration covers
// engine defaults (timeouts, rounds, aggregation), the HTTP embedding
// surface, and logging. All values have sensible defaults so an empty
// configuration is valid.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config represents the complete Agora configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EngineConfig controls coordination engine defaults.
type EngineConfig struct {
	// ResponseTimeoutSeconds bounds each blocking receive inside a
	// coordination round.
	ResponseTimeoutSeconds int `mapstructure:"response_timeout_seconds"`
	// MaxRounds limits peer-to-peer coordination rounds.
	MaxRounds int `mapstructure:"max_rounds"`
	// BidTimeoutSeconds bounds the bid collection window in market-based
	// coordination.
	BidTimeoutSeconds int `mapstructure:"bid_timeout_seconds"`
	// BidPollIntervalMs is the polling interval while collecting bids.
	BidPollIntervalMs int `mapstructure:"bid_poll_interval_ms"`
	// DefaultWeight is the weight assigned to agents absent from a weighted
	// aggregator's weight map.
	DefaultWeight float64 `mapstructure:"default_weight"`
	// SimpleStrategy is the default simple-aggregation strategy.
	// Options: "first_success", "last_success", "concatenate".
	SimpleStrategy string `mapstructure:"simple_strategy"`
	// VotingMethod is the default voting method. Options: "majority", "plurality".
	VotingMethod string `mapstructure:"voting_method"`
}

// ServerConfig controls the HTTP embedding surface.
type ServerConfig struct {
	// Addr is the listen address for the HTTP server.
	Addr string `mapstructure:"addr"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level"`
	// Dir is the directory for log files. Empty means stderr.
	Dir string `mapstructure:"dir"`
}

// ResponseTimeout returns the per-receive timeout as a duration.
func (c *EngineConfig) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutSeconds) * time.Second
}

// BidTimeout returns the bid collection window as a duration.
func (c *EngineConfig) BidTimeout() time.Duration {
	return time.Duration(c.BidTimeoutSeconds) * time.Second
}

// BidPollInterval returns the bid polling interval as a duration.
func (c *EngineConfig) BidPollInterval() time.Duration {
	return time.Duration(c.BidPollIntervalMs) * time.Millisecond
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			ResponseTimeoutSeconds: 10,
			MaxRounds:              3,
			BidTimeoutSeconds:      5,
			BidPollIntervalMs:      100,
			DefaultWeight:          1.0,
			SimpleStrategy:         "first_success",
			VotingMethod:           "majority",
		},
		Server: ServerConfig{
			Addr: ":8721",
		},
		Logging: LoggingConfig{
			Level: "INFO",
			Dir:   "",
		},
	}
}

// Validate checks the configuration for invalid values. It returns a list of
// human-readable problems; an empty list means the configuration is valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.Engine.ResponseTimeoutSeconds < 0 {
		errs = append(errs, "engine.response_timeout_seconds must be >= 0")
	}
	if c.Engine.MaxRounds < 1 {
		errs = append(errs, "engine.max_rounds must be >= 1")
	}
	if c.Engine.BidTimeoutSeconds < 1 {
		errs = append(errs, "engine.bid_timeout_seconds must be >= 1")
	}
	if c.Engine.BidPollIntervalMs < 1 {
		errs = append(errs, "engine.bid_poll_interval_ms must be >= 1")
	}
	if c.Engine.DefaultWeight < 0 {
		errs = append(errs, "engine.default_weight must be >= 0")
	}
	switch c.Engine.SimpleStrategy {
	case "first_success", "last_success", "concatenate":
	default:
		errs = append(errs, fmt.Sprintf("engine.simple_strategy %q is not one of first_success, last_success, concatenate", c.Engine.SimpleStrategy))
	}
	switch c.Engine.VotingMethod {
	case "majority", "plurality":
	default:
		errs = append(errs, fmt.Sprintf("engine.voting_method %q is not one of majority, plurality", c.Engine.VotingMethod))
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is not one of DEBUG, INFO, WARN, ERROR", c.Logging.Level))
	}

	return errs
}

// SetDefaults registers all default values with viper. Call before reading
// the config file so that absent keys resolve to defaults.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("engine.response_timeout_seconds", defaults.Engine.ResponseTimeoutSeconds)
	v.SetDefault("engine.max_rounds", defaults.Engine.MaxRounds)
	v.SetDefault("engine.bid_timeout_seconds", defaults.Engine.BidTimeoutSeconds)
	v.SetDefault("engine.bid_poll_interval_ms", defaults.Engine.BidPollIntervalMs)
	v.SetDefault("engine.default_weight", defaults.Engine.DefaultWeight)
	v.SetDefault("engine.simple_strategy", defaults.Engine.SimpleStrategy)
	v.SetDefault("engine.voting_method", defaults.Engine.VotingMethod)

	v.SetDefault("server.addr", defaults.Server.Addr)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads agora.yaml from the given directory (or the current directory
// if dir is empty) into a Config. Environment variables with the AGORA
// prefix override file values (e.g. AGORA_ENGINE_MAX_ROUNDS). A missing
// config file is not an error; defaults apply.
func Load(dir string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName("agora")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AGORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !asConfigFileNotFound(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}

	return &cfg, nil
}

// asConfigFileNotFound reports whether err is viper's missing-config error.
func asConfigFileNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	if e, ok := err.(viper.ConfigFileNotFoundError); ok {
		*target = e
		return true
	}
	return false
}

// Watch re-reads the config file whenever it changes on disk and invokes
// onChange with the freshly loaded configuration. Invalid intermediate
// states are skipped. Returns an error if the initial load fails.
func Watch(dir string, onChange func(*Config)) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName("agora")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		if errs := cfg.Validate(); len(errs) > 0 {
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()

	return v, nil
}

// ConfigDir returns the path to the user's Agora config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agora")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agora"
	}
	return filepath.Join(home, ".config", "agora")
}
