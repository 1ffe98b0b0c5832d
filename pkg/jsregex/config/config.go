// Package config provides configuration loading and validation for the
// jsregex CLI and server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chosenoffset/jsregex/pkg/jsregex"
	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
)

// Sentinel validation errors.
var (
	ErrInvalidPort       = errors.New("invalid server port")
	ErrInvalidMaxClients = errors.New("max clients must be positive")
	ErrInvalidBuffer     = errors.New("event buffer size must be positive")
	ErrInvalidBodySize   = errors.New("max body bytes must be positive")
	ErrInvalidLimit      = errors.New("limits must not be negative")
	ErrInvalidFlags      = errors.New("extra flags may only contain d, g and y")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidLogFormat  = errors.New("invalid log format")
)

// Default configuration values.
const (
	defaultPort            = 9090
	defaultHost            = "localhost"
	defaultMaxClients      = 100
	defaultEventBufferSize = 50
	defaultMaxBodyBytes    = 1 << 20
	maxPort                = 65535
)

// Config holds all configuration for jsregex.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Conversion ConversionConfig `mapstructure:"conversion"`
	Limits     LimitsConfig     `mapstructure:"limits"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	Port            int           `mapstructure:"port"`
	MaxClients      int           `mapstructure:"max_clients"`
	EventBufferSize int           `mapstructure:"event_buffer_size"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// ConversionConfig holds the default conversion options.
type ConversionConfig struct {
	Target            string `mapstructure:"target"`
	ExtraFlags        string `mapstructure:"extra_flags"`
	EmulatePossessive bool   `mapstructure:"emulate_possessive"`
}

// LimitsConfig bounds accepted trees. Zero disables a limit.
type LimitsConfig struct {
	MaxNodes     int `mapstructure:"max_nodes"`
	MaxDepth     int `mapstructure:"max_depth"`
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	// Set defaults.
	setDefaults(viperCfg)

	// Read config file.
	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("jsregex")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/jsregex")
	}

	// Read environment variables.
	viperCfg.SetEnvPrefix("JSREGEX")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	limits := jsregex.DefaultLimits()

	// Server defaults.
	viperCfg.SetDefault("server.port", defaultPort)
	viperCfg.SetDefault("server.host", defaultHost)
	viperCfg.SetDefault("server.read_timeout", "15s")
	viperCfg.SetDefault("server.write_timeout", "15s")
	viperCfg.SetDefault("server.idle_timeout", "60s")
	viperCfg.SetDefault("server.allowed_origins", []string{"localhost", "127.0.0.1"})
	viperCfg.SetDefault("server.max_clients", defaultMaxClients)
	viperCfg.SetDefault("server.event_buffer_size", defaultEventBufferSize)
	viperCfg.SetDefault("server.max_body_bytes", defaultMaxBodyBytes)

	// Conversion defaults.
	viperCfg.SetDefault("conversion.target", converter.ES2009.String())
	viperCfg.SetDefault("conversion.emulate_possessive", false)
	viperCfg.SetDefault("conversion.extra_flags", "")

	// Limits defaults.
	viperCfg.SetDefault("limits.max_nodes", limits.MaxNodes)
	viperCfg.SetDefault("limits.max_depth", limits.MaxDepth)
	viperCfg.SetDefault("limits.max_batch_size", limits.MaxBatchSize)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "text")
	viperCfg.SetDefault("logging.output", "stderr")
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Server.MaxClients <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxClients, config.Server.MaxClients)
	}

	if config.Server.EventBufferSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBuffer, config.Server.EventBufferSize)
	}

	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBodySize, config.Server.MaxBodyBytes)
	}

	if _, err := converter.ParseTarget(config.Conversion.Target); err != nil {
		return err
	}

	if strings.Trim(config.Conversion.ExtraFlags, "dgy") != "" {
		return fmt.Errorf("%w: %q", ErrInvalidFlags, config.Conversion.ExtraFlags)
	}

	l := config.Limits
	if l.MaxNodes < 0 || l.MaxDepth < 0 || l.MaxBatchSize < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidLimit, l)
	}

	if _, err := parseLevel(config.Logging.Level); err != nil {
		return err
	}

	switch config.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}

// Options returns the conversion options. The target was checked by
// LoadConfig.
func (c *Config) Options() converter.Options {
	target, _ := converter.ParseTarget(c.Conversion.Target)
	return converter.Options{
		Target:            target,
		EmulatePossessive: c.Conversion.EmulatePossessive,
		ExtraFlags:        c.Conversion.ExtraFlags,
	}
}

func (c *Config) EngineLimits() *jsregex.Limits {
	return &jsregex.Limits{
		MaxNodes:     c.Limits.MaxNodes,
		MaxDepth:     c.Limits.MaxDepth,
		MaxBatchSize: c.Limits.MaxBatchSize,
	}
}
