package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"f1laptrend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"F1LAPTREND_BASE_URL", "WEBSERVER_ADDRESS", "F1LAPTREND_DATA_DIR", "TELEGRAM_TOKEN", "F1LAPTREND_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Web.Address)
	assert.Equal(t, 10*time.Second, cfg.SourceTimeout())
	assert.Equal(t, "spa", cfg.Defaults.Circuit)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "f1laptrend.yaml")

	cfg := DefaultConfig()
	cfg.Source.BaseURL = "https://laps.example.com"
	cfg.Defaults.Circuit = "monza"
	cfg.Defaults.Metric = "gap"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://laps.example.com", loaded.Source.BaseURL)

	in := loaded.DefaultInputs()
	assert.Equal(t, "monza", in.Circuit)
	assert.Equal(t, model.MetricGap, in.Metric)
	assert.Equal(t, model.Qualifying, in.Session)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("web:\n  data_dir: ./public\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./public", cfg.Web.DataDir)
	assert.Equal(t, ":8080", cfg.Web.Address)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unclosed"), 0644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("F1LAPTREND_BASE_URL", "http://cdn:9000")
	t.Setenv("WEBSERVER_ADDRESS", ":9999")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("F1LAPTREND_DATA_DIR", "/srv/data")
	t.Setenv("F1LAPTREND_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn:9000", cfg.Source.BaseURL)
	assert.Equal(t, ":9999", cfg.Web.Address)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "/srv/data", cfg.Web.DataDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.BaseURL = "ftp://nope"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Level = "chatty"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Defaults.Session = "sprint"
	assert.ErrorContains(t, cfg.Validate(), "defaults")

	cfg = DefaultConfig()
	cfg.Telegram.CircuitsPerPage = 0
	assert.Error(t, cfg.Validate())

	for _, set := range []func(*Config){
		func(c *Config) { c.Web.ReadTimeout = "15 seconds" },
		func(c *Config) { c.Web.WriteTimeout = "bogus" },
		func(c *Config) { c.Web.IdleTimeout = "1m30" },
	} {
		cfg = DefaultConfig()
		set(cfg)
		assert.ErrorContains(t, cfg.Validate(), "invalid web")
	}

	cfg = DefaultConfig()
	cfg.Web.ReadTimeout = ""
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Web.ReadTimeout = "bogus"
	cfg.Web.WriteTimeout = "2s"
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout())
	assert.Equal(t, 2*time.Second, cfg.WriteTimeout())
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout())
}
