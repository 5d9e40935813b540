package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/uyouii/zeta-algorithms/zeta"
	"golang.org/x/exp/rand"
)

const (
	configName      = ".zeta"
	configType      = "yaml"
	envPrefix       = "ZETA"
	envKeySeparator = "_"
)

var (
	ErrInvalidWindow        = errors.New("zeta.window must be positive")
	ErrInvalidJitterSize    = errors.New("zeta.jitter_size must be positive")
	ErrInvalidResampleCount = errors.New("zeta.resample_count must not be negative")
	ErrInvalidWorkers       = errors.New("zeta.workers must not be negative")
	ErrInvalidAddr          = errors.New("server.addr is required")
	ErrInvalidTimeout       = errors.New("server.timeout must be positive")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete application configuration
type Config struct {
	Zeta    ZetaConfig    `mapstructure:"zeta"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ZetaConfig holds the default test options
type ZetaConfig struct {
	Window         float64 `mapstructure:"window"`
	ResampleCount  int     `mapstructure:"resample_count"`
	DirectQuantile bool    `mapstructure:"direct_quantile"`
	JitterSize     float64 `mapstructure:"jitter_size"`
	Stitch         bool    `mapstructure:"stitch"`
	AllowParallel  bool    `mapstructure:"allow_parallel"`
	Workers        int     `mapstructure:"workers"`
	// 0 means time seeded
	Seed uint64 `mapstructure:"seed"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file, environment variables and defaults.
// If path is empty, .zeta.yaml is searched in the working directory, and a
// missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("zeta.window", 1.0)
	v.SetDefault("zeta.resample_count", zeta.DefaultResampleCount)
	v.SetDefault("zeta.direct_quantile", zeta.DefaultDirectQuantile)
	v.SetDefault("zeta.jitter_size", zeta.DefaultJitterSize)
	v.SetDefault("zeta.stitch", zeta.DefaultStitch)
	v.SetDefault("zeta.allow_parallel", false)
	v.SetDefault("zeta.workers", 0)
	v.SetDefault("zeta.seed", 0)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.timeout", "30s")

	v.SetDefault("logging.level", "info")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if !(c.Zeta.Window > 0) || math.IsInf(c.Zeta.Window, 0) {
		return ErrInvalidWindow
	}
	if !(c.Zeta.JitterSize > 0) || math.IsInf(c.Zeta.JitterSize, 0) {
		return ErrInvalidJitterSize
	}
	if c.Zeta.ResampleCount < 0 {
		return ErrInvalidResampleCount
	}
	if c.Zeta.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Server.Addr == "" {
		return ErrInvalidAddr
	}
	if c.Server.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// ZetaOptions maps the zeta section into computation options.
func (c *Config) ZetaOptions() zeta.Options {
	opts := zeta.DefaultOptions(c.Zeta.Window)
	opts.ResampleCount = c.Zeta.ResampleCount
	opts.DirectQuantile = c.Zeta.DirectQuantile
	opts.JitterSize = c.Zeta.JitterSize
	opts.Stitch = c.Zeta.Stitch
	opts.AllowParallel = c.Zeta.AllowParallel
	opts.Workers = c.Zeta.Workers
	if c.Zeta.Seed != 0 {
		opts.Src = rand.NewSource(c.Zeta.Seed)
	}
	return opts
}
