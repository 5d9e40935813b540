package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/zeta-algorithms/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "zeta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cfg.Zeta.Window, 0)
	assert.Equal(t, 100, cfg.Zeta.ResampleCount)
	assert.False(t, cfg.Zeta.DirectQuantile)
	assert.InDelta(t, 2.0, cfg.Zeta.JitterSize, 0)
	assert.True(t, cfg.Zeta.Stitch)
	assert.False(t, cfg.Zeta.AllowParallel)
	assert.Equal(t, 0, cfg.Zeta.Workers)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
zeta:
  window: 0.5
  resample_count: 250
  direct_quantile: true
  allow_parallel: true
  workers: 4
  seed: 42
server:
  addr: ":9090"
  timeout: 5s
logging:
  level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, cfg.Zeta.Window, 0)
	assert.Equal(t, 250, cfg.Zeta.ResampleCount)
	assert.True(t, cfg.Zeta.DirectQuantile)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)

	opts := cfg.ZetaOptions()
	assert.InDelta(t, 0.5, opts.Window, 0)
	assert.Equal(t, 250, opts.ResampleCount)
	assert.True(t, opts.DirectQuantile)
	assert.True(t, opts.AllowParallel)
	assert.Equal(t, 4, opts.Workers)
	assert.True(t, opts.Stitch)
	assert.NotNil(t, opts.Src)
	require.NoError(t, opts.Validate())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ZETA_ZETA_RESAMPLE_COUNT", "7")
	t.Setenv("ZETA_SERVER_ADDR", ":1234")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Zeta.ResampleCount)
	assert.Equal(t, ":1234", cfg.Server.Addr)
	assert.Nil(t, cfg.ZetaOptions().Src)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "zeta:\n  window: -1\n")
	_, err := config.Load(path)
	assert.ErrorIs(t, err, config.ErrInvalidWindow)
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	valid := func() config.Config {
		return config.Config{
			Zeta: config.ZetaConfig{
				Window:        1,
				ResampleCount: 10,
				JitterSize:    2,
			},
			Server:  config.ServerConfig{Addr: ":8080", Timeout: time.Second},
			Logging: config.LoggingConfig{Level: "info"},
		}
	}

	base := valid()
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		err    error
	}{
		{"zero window", func(c *config.Config) { c.Zeta.Window = 0 }, config.ErrInvalidWindow},
		{"zero jitter", func(c *config.Config) { c.Zeta.JitterSize = 0 }, config.ErrInvalidJitterSize},
		{"negative resamples", func(c *config.Config) { c.Zeta.ResampleCount = -1 }, config.ErrInvalidResampleCount},
		{"negative workers", func(c *config.Config) { c.Zeta.Workers = -2 }, config.ErrInvalidWorkers},
		{"empty addr", func(c *config.Config) { c.Server.Addr = "" }, config.ErrInvalidAddr},
		{"zero timeout", func(c *config.Config) { c.Server.Timeout = 0 }, config.ErrInvalidTimeout},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, config.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.err)
		})
	}
}
