package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theplant/admintools/config"
)

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)
		require.Equal(t, &config.Config{
			Log:     config.Log{Level: "info"},
			Alchemy: config.Alchemy{BaseURL: "https://eth-mainnet.g.alchemy.com", SpamFile: config.DefaultSpamFile()},
			Bank:    config.Bank{DSN: ":memory:", Checks: 100},
		}, cfg)
	})

	t.Run("file, dotenv and environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "admintools.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\nbank:\n  checks: 20\n  seed: 7\n"), 0o600))
		require.NoError(t, os.WriteFile(".env", []byte("ALCHEMY_KEY=from-dotenv\nADMINTOOLS_BANK_CHECKS=30\n"), 0o600))
		t.Cleanup(func() { _ = os.Remove(".env") })

		t.Setenv("ADMINTOOLS_LOG_DEVELOPMENT", "true")
		t.Setenv("ADMINTOOLS_METRICS_ENABLED", "1")
		t.Setenv("CONNECTION_DB", "postgres://localhost/admintools")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, config.Log{Level: "warn", Development: true}, cfg.Log)
		require.Equal(t, "postgres://localhost/admintools", cfg.Postgres.DSN)
		require.Equal(t, "from-dotenv", cfg.Alchemy.APIKey)
		require.Equal(t, config.Bank{DSN: ":memory:", Checks: 30, Seed: 7}, cfg.Bank)
		require.True(t, cfg.Metrics.Enabled)

		t.Setenv("ADMINTOOLS_ALCHEMY_APIKEY", "from-env")
		cfg, err = config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "from-env", cfg.Alchemy.APIKey)
	})

	t.Run("spam file under the user config directory", func(t *testing.T) {
		if runtime.GOOS != "linux" {
			t.Skip("XDG_CONFIG_HOME is only read on linux")
		}
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", home)
		cfg, err := config.Load("")
		require.NoError(t, err)
		require.Equal(t, filepath.Join(home, "admintools", "spam.json"), cfg.Alchemy.SpamFile)

		t.Setenv("ADMINTOOLS_ALCHEMY_SPAMFILE", "/tmp/spam.json")
		cfg, err = config.Load("")
		require.NoError(t, err)
		require.Equal(t, "/tmp/spam.json", cfg.Alchemy.SpamFile)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorContains(t, err, "read config")
	})

	t.Run("negative checks", func(t *testing.T) {
		t.Setenv("ADMINTOOLS_BANK_CHECKS", "-1")
		_, err := config.Load("")
		require.ErrorContains(t, err, "bank.checks must not be negative")
	})
}
