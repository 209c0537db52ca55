package main_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/plansync"
	main "github.com/fwojciec/plansync/cmd/plansync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plansync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := main.DefaultConfig()

	assert.Equal(t, 1000, cfg.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.ReportInterval)
	assert.Zero(t, cfg.Rate)
	assert.False(t, cfg.CollectFirst)
	assert.Equal(t, "open-energy-tracker (https://github.com/zivkan/open-energy-tracker)", cfg.UserAgent)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("overlays file values on defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
page_size: 250
timeout: 10s
workers: 4
report_interval: 15s
rate: 2.5
collect_first: true
index: /var/lib/plansync/index.db
`)

		cfg, err := main.LoadConfigFile(path)

		require.NoError(t, err)
		assert.Equal(t, 250, cfg.PageSize)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, 15*time.Second, cfg.ReportInterval)
		assert.InDelta(t, 2.5, cfg.Rate, 1e-9)
		assert.True(t, cfg.CollectFirst)
		assert.Equal(t, "/var/lib/plansync/index.db", cfg.Index)
		assert.Equal(t, main.DefaultConfig().UserAgent, cfg.UserAgent)
	})

	t.Run("rejects a bad duration", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfigFile(writeConfig(t, "timeout: soon\n"))

		assert.Equal(t, plansync.EINVALID, plansync.ErrorCode(err))
		assert.Contains(t, plansync.ErrorMessage(err), "timeout")
	})

	t.Run("rejects invalid YAML", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfigFile(writeConfig(t, "workers: [\n"))

		assert.Equal(t, plansync.EINVALID, plansync.ErrorCode(err))
	})

	t.Run("missing file is a precondition failure", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))

		assert.Equal(t, plansync.EPRECONDITION, plansync.ErrorCode(err))
	})
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("PLANSYNC_WORKERS", "8")
	t.Setenv("PLANSYNC_TIMEOUT", "5s")
	t.Setenv("PLANSYNC_RATE", "0.5")
	t.Setenv("PLANSYNC_INDEX", "/tmp/index.db")

	cfg := main.DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.InDelta(t, 0.5, cfg.Rate, 1e-9)
	assert.Equal(t, "/tmp/index.db", cfg.Index)
}

func TestConfig_LoadFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("PLANSYNC_WORKERS", "many")

	cfg := main.DefaultConfig()
	err := cfg.LoadFromEnv()

	assert.Equal(t, plansync.EINVALID, plansync.ErrorCode(err))
}

func TestConfig_Merge(t *testing.T) {
	t.Parallel()

	base := main.DefaultConfig()

	got := base.Merge(main.Config{Workers: 3, CollectFirst: true})

	assert.Equal(t, 3, got.Workers)
	assert.True(t, got.CollectFirst)
	assert.Equal(t, base.PageSize, got.PageSize)
	assert.Equal(t, base.Timeout, got.Timeout)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	for name, mutate := range map[string]func(*main.Config){
		"page size": func(c *main.Config) { c.PageSize = -1 },
		"timeout":   func(c *main.Config) { c.Timeout = -time.Second },
		"workers":   func(c *main.Config) { c.Workers = -2 },
		"interval":  func(c *main.Config) { c.ReportInterval = -time.Minute },
		"rate":      func(c *main.Config) { c.Rate = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := main.DefaultConfig()
			mutate(&cfg)

			assert.Equal(t, plansync.EINVALID, plansync.ErrorCode(cfg.Validate()))
		})
	}
}
