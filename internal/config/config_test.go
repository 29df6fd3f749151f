package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Battle: BattleConfig{
			AnimationMs: 600,
			Floors:      8,
		},
		Scripting: ScriptingConfig{
			InstructionLimit: 100000,
		},
		Sim: SimConfig{
			Runs:     10,
			Class:    "all",
			TickMs:   50,
			MaxTicks: 1000,
			Workers:  2,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 600*time.Millisecond, cfg.Battle.Animation())
	assert.Equal(t, int64(0), cfg.Battle.Seed)
	assert.Equal(t, 8, cfg.Battle.Floors)
	assert.Equal(t, 100000, cfg.Scripting.InstructionLimit)
	assert.Equal(t, "all", cfg.Sim.Class)
	assert.Equal(t, 50*time.Millisecond, cfg.Sim.Tick())
	assert.Empty(t, cfg.Content.Roster)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
battle:
  animation_ms: 250
  seed: 42
scripting:
  dir: /opt/tower/lua
content:
  roster: /opt/tower/roster.yaml
sim:
  runs: 3
  class: mage
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Battle.Animation())
	assert.Equal(t, int64(42), cfg.Battle.Seed)
	assert.Equal(t, 8, cfg.Battle.Floors, "unset keys keep their defaults")
	assert.Equal(t, "/opt/tower/lua", cfg.Scripting.Dir)
	assert.Equal(t, "/opt/tower/roster.yaml", cfg.Content.Roster)
	assert.Equal(t, 3, cfg.Sim.Runs)
	assert.Equal(t, "mage", cfg.Sim.Class)
	assert.Equal(t, 4, cfg.Sim.Workers)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TOWER_BATTLE_SEED", "7")
	t.Setenv("TOWER_SIM_WORKERS", "9")
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Battle.Seed)
	assert.Equal(t, 9, cfg.Sim.Workers)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim:\n  workers: 0\nbattle:\n  floors: 0\n"), 0644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sim.workers")
	assert.Contains(t, err.Error(), "battle.floors")
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateSimClass(t *testing.T) {
	for _, class := range []string{"all", "Warrior", "mage", "TANK", "archer"} {
		cfg := validConfig()
		cfg.Sim.Class = class
		assert.NoError(t, cfg.Validate(), "class %q should be valid", class)
	}
	cfg := validConfig()
	cfg.Sim.Class = "bard"
	assert.Error(t, cfg.Validate())
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	cfg := validConfig()
	cfg.Battle.AnimationMs = -1
	cfg.Scripting.InstructionLimit = -5
	cfg.Sim.TickMs = 0
	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"battle.animation_ms", "scripting.instruction_limit", "sim.tick_ms"} {
		assert.Contains(t, err.Error(), key)
	}
}

// Property-based tests

func TestPropertyNonNegativeAnimationValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ms := rapid.IntRange(0, 60000).Draw(t, "animation_ms")
		cfg := validConfig()
		cfg.Battle.AnimationMs = ms
		if err := cfg.Validate(); err != nil {
			t.Fatalf("animation_ms %d rejected: %v", ms, err)
		}
		if got := cfg.Battle.Animation(); got != time.Duration(ms)*time.Millisecond {
			t.Fatalf("Animation() = %s for %d ms", got, ms)
		}
	})
}

func TestPropertyNonPositiveWorkersInvalid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		workers := rapid.IntRange(-100, 0).Draw(t, "workers")
		cfg := validConfig()
		cfg.Sim.Workers = workers
		if cfg.Validate() == nil {
			t.Fatalf("workers=%d accepted", workers)
		}
	})
}
