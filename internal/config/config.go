package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"

	"github.com/prcd/imageprocessor/pkg/processing"
	"github.com/prcd/imageprocessor/pkg/types"
)

// EnvPrefix is the prefix for environment overrides, e.g. IMGPROC_OUTPUT_FORMAT
const EnvPrefix = "IMGPROC"

// Config holds the application configuration
type Config struct {
	Output   OutputConfig   `json:"output" mapstructure:"output"`
	Resample ResampleConfig `json:"resample" mapstructure:"resample"`
	Log      LogConfig      `json:"log" mapstructure:"log"`
}

// OutputConfig holds configuration for the encoded output
type OutputConfig struct {
	Format         string `json:"format" mapstructure:"format" default:"jpeg" validate:"oneof=jpeg jpg png webp"`
	DefaultQuality int    `json:"default_quality" mapstructure:"default_quality" default:"75" validate:"min=0,max=100"`
	DefaultMethod  string `json:"default_method" mapstructure:"default_method" default:"fit" validate:"oneof=fill fit"`
	WebPLossless   bool   `json:"webp_lossless" mapstructure:"webp_lossless"`
}

// ResampleConfig holds configuration for pixel resampling
type ResampleConfig struct {
	Engine string `json:"engine" mapstructure:"engine" default:"imaging" validate:"oneof=imaging nfnt xdraw"`
	Filter string `json:"filter" mapstructure:"filter" default:"lanczos" validate:"oneof=lanczos catmullrom linear box nearest"`
}

// LogConfig holds configuration for logging
type LogConfig struct {
	Level      string `json:"level" mapstructure:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `json:"format" mapstructure:"format" default:"console" validate:"oneof=console json"`
	File       string `json:"file" mapstructure:"file"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb" default:"10" validate:"min=1"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups" default:"2" validate:"min=0"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days" default:"28" validate:"min=0"`
}

// Default returns a configuration with default values
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// NewViper returns a viper instance seeded with the defaults and environment overrides
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.default_quality", d.Output.DefaultQuality)
	v.SetDefault("output.default_method", d.Output.DefaultMethod)
	v.SetDefault("output.webp_lossless", d.Output.WebPLossless)
	v.SetDefault("resample.engine", d.Resample.Engine)
	v.SetDefault("resample.filter", d.Resample.Filter)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from v, merging filename when it is not empty.
// The file format follows its extension (json, yaml, toml).
func Load(v *viper.Viper, filename string) (*Config, error) {
	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a file, applying defaults for missing keys
func LoadFromFile(filename string) (*Config, error) {
	return Load(NewViper(), filename)
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: invalid value %v (%s=%s)", strings.ToLower(fe.Namespace()), fe.Value(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Processing().Validate(); err != nil {
		return fmt.Errorf("resample: %w", err)
	}
	return nil
}

// OutputFormat returns the configured output format
func (c *Config) OutputFormat() types.Format {
	f, ok := types.ParseFormat(c.Output.Format)
	if !ok {
		return types.JPEG
	}
	return f
}

// DefaultMethod returns the configured default resize method
func (c *Config) DefaultMethod() types.Method {
	m, ok := types.ParseMethod(c.Output.DefaultMethod)
	if !ok {
		return types.DefaultMethod
	}
	return m
}

// Processing returns the codec configuration
func (c *Config) Processing() processing.Config {
	cfg := processing.DefaultConfig()
	if e, ok := processing.ParseEngine(c.Resample.Engine); ok {
		cfg.Engine = e
	}
	if f, ok := processing.ParseFilter(c.Resample.Filter); ok {
		cfg.Filter = f
	}
	cfg.WebPLossless = c.Output.WebPLossless
	return cfg
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-processor", "config.json")
}
