package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadnorm/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cadnorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Resolver.MinScore)
	assert.Equal(t, config.DefaultTool, cfg.Tool)
	assert.Equal(t, config.OutputJSON, cfg.Output)
	assert.True(t, cfg.Extra)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_Layers(t *testing.T) {
	path := writeConfig(t, `
log:
  level: warn
resolver:
  min_score: 5
  sample_rows: 10
tool: call-density
output: YAML
`)

	t.Setenv("CADNORM_LOG_LEVEL", "debug")
	t.Setenv("CADNORM_WORKERS", "2")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("tool", "", "")
	flags.Int("min-score", 0, "")
	require.NoError(t, flags.Parse([]string{"--tool", "incident-map"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level, "env beats file")
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 5, cfg.Resolver.MinScore, "unset flag does not override")
	assert.Equal(t, "incident-map", cfg.Tool, "flag beats file")
	assert.Equal(t, config.OutputYAML, cfg.Output)

	rc := cfg.Resolution()
	assert.Equal(t, 5, rc.MinScore)
	assert.Equal(t, 10, rc.SampleRows)

	lc := cfg.Logger()
	assert.Equal(t, "debug", lc.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.Error(t, err)
	})

	t.Run("bad values", func(t *testing.T) {
		path := writeConfig(t, "output: xml\nresolver:\n  min_score: 0\nworkers: -1\n")

		_, err := config.Load(path, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output")
		assert.Contains(t, err.Error(), "min_score")
		assert.Contains(t, err.Error(), "workers")
	})
}
