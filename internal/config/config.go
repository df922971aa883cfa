// Package config loads cadnorm settings from a YAML file, CADNORM_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cadnorm/internal/common"
	"cadnorm/internal/logger"
	"cadnorm/internal/plan"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "CADNORM"

// Output formats.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputText = "text"
)

// DefaultTool is used when no tool id is configured.
const DefaultTool = "response-time"

// Config holds every setting.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Tool     string         `mapstructure:"tool"`
	Output   string         `mapstructure:"output"`
	// Extra passes unmapped columns through to the output.
	Extra   bool `mapstructure:"extra"`
	Workers int  `mapstructure:"workers"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ResolverConfig tunes auto-mapping.
type ResolverConfig struct {
	MinScore       int `mapstructure:"min_score"`
	MaxSuggestions int `mapstructure:"max_suggestions"`
	SampleRows     int `mapstructure:"sample_rows"`
}

// flagKeys maps flag names onto config keys.
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"dev":         "log.development",
	"min-score":   "resolver.min_score",
	"suggestions": "resolver.max_suggestions",
	"tool":        "tool",
	"output":      "output",
	"extra":       "extra",
	"workers":     "workers",
}

func setDefaults(v *viper.Viper) {
	def := plan.DefaultConfig()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("resolver.min_score", def.MinScore)
	v.SetDefault("resolver.max_suggestions", def.MaxSuggestions)
	v.SetDefault("resolver.sample_rows", def.SampleRows)
	v.SetDefault("tool", DefaultTool)
	v.SetDefault("output", OutputJSON)
	v.SetDefault("extra", true)
	v.SetDefault("workers", 4)
}

// Load reads configuration. path may be empty, in which case cadnorm.yaml
// is looked up in the working directory and is optional. flags may be nil;
// only flags the user actually set override lower layers.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("cadnorm")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Tool = common.FirstNonEmpty(strings.TrimSpace(cfg.Tool), DefaultTool)
	cfg.Output = strings.ToLower(common.FirstNonEmpty(strings.TrimSpace(cfg.Output), OutputJSON))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{OutputJSON, OutputYAML, OutputText}, c.Output) {
		errs = append(errs, fmt.Errorf("output %q is not one of json, yaml, text", c.Output))
	}

	if c.Resolver.MinScore <= 0 {
		errs = append(errs, fmt.Errorf("resolver.min_score must be positive, got %d", c.Resolver.MinScore))
	}

	if c.Resolver.MaxSuggestions < 0 {
		errs = append(errs, fmt.Errorf("resolver.max_suggestions must not be negative, got %d", c.Resolver.MaxSuggestions))
	}

	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}

	return errors.Join(errs...)
}

// Logger returns the logger configuration.
func (c Config) Logger() logger.Config {
	return logger.Config{Level: c.Log.Level, Development: c.Log.Development}
}

// Resolution returns the auto-mapping configuration.
func (c Config) Resolution() plan.ResolutionConfig {
	rc := plan.DefaultConfig()
	rc.MinScore = c.Resolver.MinScore
	rc.MaxSuggestions = c.Resolver.MaxSuggestions

	if c.Resolver.SampleRows > 0 {
		rc.SampleRows = c.Resolver.SampleRows
	}

	return rc
}
