// Package config loads admintools settings from an optional config file,
// a .env file and environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix maps ADMINTOOLS_LOG_LEVEL to log.level.
const EnvPrefix = "ADMINTOOLS_"

// legacyEnv are the variable names used by the earlier demo deployments.
var legacyEnv = map[string]string{
	"ALCHEMY_KEY":   "alchemy.apikey",
	"CONNECTION_DB": "postgres.dsn",
}

type Config struct {
	Log      Log      `mapstructure:"log"`
	Postgres Postgres `mapstructure:"postgres"`
	Alchemy  Alchemy  `mapstructure:"alchemy"`
	Bank     Bank     `mapstructure:"bank"`
	Metrics  Metrics  `mapstructure:"metrics"`
}

type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type Postgres struct {
	DSN string `mapstructure:"dsn"`
}

type Alchemy struct {
	APIKey  string `mapstructure:"apikey"`
	BaseURL string `mapstructure:"baseurl"`
	// SpamFile keeps the contracts reported as spam between runs. Empty keeps them in memory.
	SpamFile string `mapstructure:"spamfile"`
}

type Bank struct {
	// DSN of the SQLite database holding the checks.
	DSN string `mapstructure:"dsn"`
	// Checks is the number of demo checks seeded into an empty table.
	Checks int `mapstructure:"checks"`
	// Seed makes the demo checks reproducible. Zero picks a random seed.
	Seed uint64 `mapstructure:"seed"`
}

type Metrics struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultSpamFile is spam.json under the user config directory, or empty when there is none.
func DefaultSpamFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "admintools", "spam.json")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("alchemy.baseurl", "https://eth-mainnet.g.alchemy.com")
	v.SetDefault("alchemy.spamfile", DefaultSpamFile())
	v.SetDefault("bank.dsn", ":memory:")
	v.SetDefault("bank.checks", 100)
	v.SetDefault("bank.seed", 0)
	v.SetDefault("metrics.enabled", false)
}

// Load reads configuration in increasing precedence: defaults, the file at path
// (skipped when empty), .env in the working directory, then the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	if err := loadDotEnv(v, ".env"); err != nil {
		return nil, err
	}
	applyEnv(v, os.Environ())

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if cfg.Bank.Checks < 0 {
		return nil, errors.Errorf("bank.checks must not be negative, got %d", cfg.Bank.Checks)
	}
	return cfg, nil
}

func loadDotEnv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat %s", path)
	}

	dot := viper.New()
	dot.SetConfigFile(path)
	dot.SetConfigType("env")
	if err := dot.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	var pairs []string
	for _, key := range dot.AllKeys() {
		pairs = append(pairs, strings.ToUpper(key)+"="+dot.GetString(key))
	}
	applyEnv(v, pairs)
	return nil
}

// applyEnv sets KEY=value pairs carrying EnvPrefix or a legacy name.
func applyEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if legacy, ok := legacyEnv[key]; ok {
			v.Set(legacy, value)
			continue
		}
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		prop := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "."))
		v.Set(strings.Trim(prop, "."), value)
	}
}
