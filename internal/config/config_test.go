package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/suderio/quantum-dungeon/internal/script"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quantum-dungeon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
catalog: items.yaml
seed: 7
feed:
  addr: ":9000"
engine:
  moves_per_turn: 5
  look_radius: 6.5
`)
	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "items.yaml", cfg.Catalog)
	assert.Equal(t, Default().Level, cfg.Level)
	assert.Equal(t, []string{"data"}, cfg.DataDirs)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, ":9000", cfg.Feed.Addr)
	assert.Equal(t, 5, cfg.Engine.MovesPerTurn)
	assert.Equal(t, 6.5, cfg.Engine.LookRadius)
	assert.Equal(t, Default().Engine.OptionsPerSelect, cfg.Engine.OptionsPerSelect)
	assert.Equal(t, script.DefaultBudget, cfg.Engine.ScriptBudget)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "seed: 7\nlog:\n  level: info\n")
	t.Setenv("QD_ENGINE_MOVES_PER_TURN", "4")
	t.Setenv("QD_SEED", "11")
	t.Setenv("QD_LOG_LEVEL", "debug")
	t.Setenv("QD_LOG_FORMAT", "json")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Engine.MovesPerTurn)
	assert.Equal(t, int64(11), cfg.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(viper.New(), writeConfig(t, "log:\n  format: xml\n"))
	assert.ErrorContains(t, err, "log.format")

	_, err = Load(viper.New(), writeConfig(t, "engine:\n  moves_per_turn: 0\n"))
	assert.ErrorContains(t, err, "moves_per_turn")

	_, err = Load(viper.New(), writeConfig(t, "engine:\n  script_budget: -1\n"))
	assert.ErrorContains(t, err, "script_budget")

	t.Setenv("QD_SEED", "not-a-number")
	_, err = Load(viper.New(), writeConfig(t, "seed: 1\n"))
	assert.Error(t, err)
}

func TestResolveSeed(t *testing.T) {
	cfg := Config{Seed: 5}
	require.NoError(t, cfg.ResolveSeed())
	assert.Equal(t, int64(5), cfg.Seed)

	cfg.Seed = 0
	require.NoError(t, cfg.ResolveSeed())
	assert.NotZero(t, cfg.Seed)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	file := filepath.Join(t.TempDir(), "qd.log")
	logger, err = NewLogger(LogConfig{Level: "debug", Format: "console", File: file})
	require.NoError(t, err)
	logger.Debug("hello")
	require.NoError(t, logger.Sync())
	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "hello")

	_, err = NewLogger(LogConfig{Format: "xml"})
	assert.Error(t, err)
	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}
