package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Content: ContentConfig{Dir: "content"},
		Scripts: ScriptsConfig{Dir: "scripts", InstructionLimit: 50_000},
		Engine:  EngineConfig{MaxRounds: 100, Seed: 0},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	cfg.Content.Dir = ""
	cfg.Scripts.InstructionLimit = -1
	cfg.Engine.MaxRounds = -5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "content.dir")
	assert.Contains(t, err.Error(), "scripts.instruction_limit")
	assert.Contains(t, err.Error(), "engine.max_rounds")
}

func TestValidateLoggingFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
content:
  dir: /srv/arbiter/content
scripts:
  dir: /srv/arbiter/scripts
  instruction_limit: 25000
engine:
  max_rounds: 50
  seed: 42
`), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "/srv/arbiter/content", cfg.Content.Dir)
	assert.Equal(t, 25000, cfg.Scripts.InstructionLimit)
	assert.Equal(t, 50, cfg.Engine.MaxRounds)
	assert.Equal(t, int64(42), cfg.Engine.Seed)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content:\n  dir: content\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 0, cfg.Scripts.InstructionLimit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: shout
content:
  dir: content
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}
