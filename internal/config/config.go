// Package config loads tool settings from defaults, an optional YAML file
// and L14_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. L14_LOGGER_LEVEL.
const EnvPrefix = "L14"

// Config holds every setting of the command line tools.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Render RenderConfig `mapstructure:"render" yaml:"render"`
	Viewer ViewerConfig `mapstructure:"viewer" yaml:"viewer"`
}

// LoggerConfig selects the log level, encoder and optional rotating file.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// RenderConfig controls PNG output.
type RenderConfig struct {
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir"`
	ShowLabels      bool   `mapstructure:"show_labels" yaml:"show_labels"`
	ShowCompositing bool   `mapstructure:"show_compositing" yaml:"show_compositing"`
	// Concurrency bounds how many scenes render at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	// ReferenceDir, when set, holds expected PNGs that rendered scenes
	// are compared against.
	ReferenceDir string `mapstructure:"reference_dir" yaml:"reference_dir"`
	Tolerance    int    `mapstructure:"tolerance" yaml:"tolerance"`
}

// ViewerConfig controls the interactive window.
type ViewerConfig struct {
	Title  string `mapstructure:"title" yaml:"title"`
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
}

// SetDefaults initializes default values for every setting.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "l14")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)

	// -- Render --
	v.SetDefault("render.output_dir", ".")
	v.SetDefault("render.show_labels", false)
	v.SetDefault("render.show_compositing", false)
	v.SetDefault("render.concurrency", 4)
	v.SetDefault("render.reference_dir", "")
	v.SetDefault("render.tolerance", 2)

	// -- Viewer --
	v.SetDefault("viewer.title", "l14 layers")
	v.SetDefault("viewer.width", 1024)
	v.SetDefault("viewer.height", 768)
}

// NewDefaultConfig returns the configuration with nothing but defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return cfg
}

// Load reads file, or ./l14.yaml when file is empty and it exists, on top
// of the defaults. Environment variables override both.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("l14")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Render.Concurrency <= 0 {
		return fmt.Errorf("render.concurrency must be a positive integer")
	}
	if c.Render.Tolerance < 0 || c.Render.Tolerance > 255 {
		return fmt.Errorf("render.tolerance must be within 0-255, got %d", c.Render.Tolerance)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	return nil
}
