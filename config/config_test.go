package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	env, err := ParseEnvironment("")
	assert.NoError(t, err)
	assert.Equal(t, EnvironmentDevelopment, env)

	env, err = ParseEnvironment("production")
	assert.NoError(t, err)
	assert.Equal(t, EnvironmentProduction, env)

	_, err = ParseEnvironment("testing")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.Checkpoint.Backend)
	assert.Equal(t, 8, cfg.Engine.MaxToolHops)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv("PARLEY_TEST_DB", "/tmp/parley-test.db")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment = "production"

[model]
provider = "anthropic"
name = "claude-3-5-sonnet-20241022"

[checkpoint]
backend = "sqlite"
path = "${PARLEY_TEST_DB}"

[engine]
max_tool_hops = 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "/tmp/parley-test.db", cfg.Checkpoint.Path)
	assert.Equal(t, 4, cfg.Engine.MaxToolHops)
	// Unset fields keep their defaults.
	assert.Equal(t, 50, cfg.Engine.HistoryLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Checkpoint.Backend = "sqlite"
	assert.Error(t, cfg.Validate(), "sqlite backend requires a path")

	cfg.Checkpoint.Path = "data/checkpoints.db"
	assert.NoError(t, cfg.Validate())

	cfg.Checkpoint.Backend = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Engine.MaxToolHops = -1
	assert.Error(t, cfg.Validate())
}
