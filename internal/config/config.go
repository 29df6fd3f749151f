// Package config provides Viper-based configuration loading for the tower simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds turn machine settings.
type BattleConfig struct {
	// AnimationMs is the delay between choosing an animated action and resolving it.
	AnimationMs int `mapstructure:"animation_ms"`
	// Seed selects a deterministic random source; 0 uses the crypto source.
	Seed int64 `mapstructure:"seed"`
	// Floors is the top floor of a run.
	Floors int `mapstructure:"floors"`
}

// Animation returns AnimationMs as a Duration.
func (b BattleConfig) Animation() time.Duration {
	return time.Duration(b.AnimationMs) * time.Millisecond
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit bounds every hook call; 0 disables the limit.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// Dir is an optional directory of extra *.lua files loaded after the builtin policies.
	Dir string `mapstructure:"dir"`
}

// ContentConfig points at optional replacements for the embedded game content.
// Empty fields keep the builtin content.
type ContentConfig struct {
	Classes    string `mapstructure:"classes"`
	Policies   string `mapstructure:"policies"`
	Roster     string `mapstructure:"roster"`
	EnemiesDir string `mapstructure:"enemies_dir"`
	Conditions string `mapstructure:"conditions_dir"`
}

// SimConfig holds headless simulation settings.
type SimConfig struct {
	// Runs is the number of simulated runs.
	Runs int `mapstructure:"runs"`
	// Class is a player class name, or "all" to rotate through every class.
	Class string `mapstructure:"class"`
	// TickMs is the simulated frame length.
	TickMs int `mapstructure:"tick_ms"`
	// MaxTicks stops a run that has not finished.
	MaxTicks int `mapstructure:"max_ticks"`
	// Workers is the number of runs simulated concurrently.
	Workers int `mapstructure:"workers"`
}

// Tick returns TickMs as a Duration.
func (s SimConfig) Tick() time.Duration {
	return time.Duration(s.TickMs) * time.Millisecond
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Content   ContentConfig   `mapstructure:"content"`
	Sim       SimConfig       `mapstructure:"sim"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.AnimationMs < 0 {
		errs = append(errs, fmt.Sprintf("battle.animation_ms must be >= 0, got %d", b.AnimationMs))
	}
	if b.Floors < 1 {
		errs = append(errs, fmt.Sprintf("battle.floors must be >= 1, got %d", b.Floors))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSim(s SimConfig) error {
	var errs []string
	if s.Runs < 1 {
		errs = append(errs, fmt.Sprintf("sim.runs must be >= 1, got %d", s.Runs))
	}
	validClasses := map[string]bool{"all": true, "warrior": true, "mage": true, "tank": true, "archer": true}
	if !validClasses[strings.ToLower(s.Class)] {
		errs = append(errs, fmt.Sprintf("sim.class must be one of [all, warrior, mage, tank, archer], got %q", s.Class))
	}
	if s.TickMs < 1 {
		errs = append(errs, fmt.Sprintf("sim.tick_ms must be >= 1, got %d", s.TickMs))
	}
	if s.MaxTicks < 1 {
		errs = append(errs, fmt.Sprintf("sim.max_ticks must be >= 1, got %d", s.MaxTicks))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Sprintf("sim.workers must be >= 1, got %d", s.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default returns the validated defaults with environment overrides applied.
func Default() (Config, error) {
	return LoadFromViper(newViper())
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with TOWER_ prefix
	v.SetEnvPrefix("TOWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battle.animation_ms", 600)
	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.floors", 8)

	v.SetDefault("scripting.instruction_limit", 100000)
	v.SetDefault("scripting.dir", "")

	v.SetDefault("content.classes", "")
	v.SetDefault("content.policies", "")
	v.SetDefault("content.roster", "")
	v.SetDefault("content.enemies_dir", "")
	v.SetDefault("content.conditions_dir", "")

	v.SetDefault("sim.runs", 100)
	v.SetDefault("sim.class", "all")
	v.SetDefault("sim.tick_ms", 50)
	v.SetDefault("sim.max_ticks", 200000)
	v.SetDefault("sim.workers", 4)
}
