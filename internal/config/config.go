// Package config loads the quantum-dungeon configuration from a YAML file,
// QD_ prefixed environment variables, and defaults, in that order of
// precedence from last to first.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/suderio/quantum-dungeon/internal/engine"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "QD"

// Config is the full application configuration.
type Config struct {
	Catalog string `mapstructure:"catalog"`
	Level   string `mapstructure:"level"` // a level file or a level name
	// DataDirs are searched in order for level names and a missing catalog.
	DataDirs []string      `mapstructure:"data_dirs"`
	Seed     int64         `mapstructure:"seed"` // 0 draws a random seed
	Journal  string        `mapstructure:"journal"`
	Feed     FeedConfig    `mapstructure:"feed"`
	Log      LogConfig     `mapstructure:"log"`
	Engine   engine.Config `mapstructure:"engine"`
}

type FeedConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
	File   string `mapstructure:"file"`   // empty logs to stderr
}

// Env holds the overrides read with caarlos0/env. They win over both the
// file and viper's own environment binding.
type Env struct {
	LogLevel  string `env:"QD_LOG_LEVEL"`
	LogFormat string `env:"QD_LOG_FORMAT"`
	Seed      int64  `env:"QD_SEED"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Catalog:  "data/items.yaml",
		Level:    "data/levels/first.yaml",
		DataDirs: []string{"data"},
		Log:      LogConfig{Level: "info", Format: "console"},
		Engine:   engine.DefaultConfig(),
	}
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the configuration. When file is empty, quantum-dungeon.yaml
// is searched in the working directory and in $HOME/.config/quantum-dungeon;
// a missing file is not an error in that case.
func Load(v *viper.Viper, file string) (Config, error) {
	cfg := Default()
	setDefaults(v, cfg)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("quantum-dungeon")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "quantum-dungeon"))
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	var e Env
	if err := ParseEnv(&e); err != nil {
		return cfg, err
	}
	cfg.applyEnv(e)

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(e Env) {
	if e.LogLevel != "" {
		c.Log.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		c.Log.Format = e.LogFormat
	}
	if e.Seed != 0 {
		c.Seed = e.Seed
	}
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	if c.Catalog == "" && len(c.DataDirs) == 0 {
		return errors.New("catalog is empty and no data_dirs are set")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if c.Engine.MovesPerTurn <= 0 {
		return fmt.Errorf("engine.moves_per_turn must be positive, got %d", c.Engine.MovesPerTurn)
	}
	if c.Engine.OptionsPerSelect <= 0 {
		return fmt.Errorf("engine.options_per_select must be positive, got %d", c.Engine.OptionsPerSelect)
	}
	if c.Engine.ScriptBudget < 0 {
		return fmt.Errorf("engine.script_budget cannot be negative")
	}
	if c.Engine.RerollsPerCycle < 0 {
		return fmt.Errorf("engine.rerolls_per_cycle cannot be negative")
	}
	return nil
}

// setDefaults registers every key with viper so environment variables can
// override keys that the file does not mention.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("catalog", cfg.Catalog)
	v.SetDefault("level", cfg.Level)
	v.SetDefault("data_dirs", cfg.DataDirs)
	v.SetDefault("seed", cfg.Seed)
	v.SetDefault("journal", cfg.Journal)
	v.SetDefault("feed.addr", cfg.Feed.Addr)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)

	e := cfg.Engine
	v.SetDefault("engine.moves_per_turn", e.MovesPerTurn)
	v.SetDefault("engine.player_light", e.PlayerLight)
	v.SetDefault("engine.look_radius", e.LookRadius)
	v.SetDefault("engine.options_per_select", e.OptionsPerSelect)
	v.SetDefault("engine.rerolls_per_cycle", e.RerollsPerCycle)
	v.SetDefault("engine.portal_options", e.PortalOptions)
	v.SetDefault("engine.step_intro", e.StepIntro)
	v.SetDefault("engine.damage_animation", e.DamageAnimation)
	v.SetDefault("engine.duplicate_animation", e.DuplicateAnimation)
	v.SetDefault("engine.script_budget", e.ScriptBudget)
	v.SetDefault("engine.strict", e.Strict)
}
