// Package config loads command line configuration with the hierarchy
// defaults < config file < .env < environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. COURSEFORM_DATABASE_DSN.
const EnvPrefix = "COURSEFORM"

// DefaultEnvFile is loaded when present.
const DefaultEnvFile = ".env"

// Config is the resolved configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Log      Log      `mapstructure:"log"`
	Shapes   Shapes   `mapstructure:"shapes"`
	Render   Render   `mapstructure:"render"`
}

type Database struct {
	DSN string `mapstructure:"dsn"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Shapes points at a directory of YAML shape overrides.
type Shapes struct {
	Dir string `mapstructure:"dir"`
}

type Render struct {
	Renderer     string `mapstructure:"renderer"`
	TemplatesDir string `mapstructure:"templates_dir"`
	Locale       string `mapstructure:"locale"`
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	configFile string
	envFile    string
}

// WithConfigFile reads path (YAML, TOML or JSON by extension). A missing
// file is an error once named explicitly.
func WithConfigFile(path string) Option {
	return func(l *loader) {
		l.configFile = strings.TrimSpace(path)
	}
}

// WithEnvFile replaces the default .env path. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = strings.TrimSpace(path)
	}
}

// Load resolves the configuration.
func Load(options ...Option) (*Config, error) {
	l := loader{envFile: DefaultEnvFile}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&l)
	}

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", l.envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", l.configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "courseform.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("shapes.dir", "")
	v.SetDefault("render.renderer", "vanilla")
	v.SetDefault("render.templates_dir", "")
	v.SetDefault("render.locale", "")
}

func validate(cfg *Config) error {
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", cfg.Log.Format)
	}
	cfg.Render.Renderer = strings.ToLower(strings.TrimSpace(cfg.Render.Renderer))
	if cfg.Render.Renderer == "" {
		return errors.New("render.renderer is required")
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	return nil
}
