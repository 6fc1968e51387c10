package conf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "groupmute.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/from-file.db
api_addr: ":9000"
blocking:
  timezone: Europe/Berlin
  source_packages: [com.whatsapp]
feishu:
  relay_chat_id: oc_file
  relay_per_minute: 5
redis:
  channel: file-channel
`)
	t.Setenv("API_ADDR", ":9100")
	t.Setenv("SOURCE_PACKAGES", "com.whatsapp, com.whatsapp.w4b ,")
	t.Setenv("FEISHU_RELAY_PER_MINUTE", "7")
	t.Setenv("DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-file.db", cfg.Store.DBPath)
	assert.Equal(t, ":9100", cfg.API.Addr, "env overrides file")
	assert.Equal(t, "Europe/Berlin", cfg.Blocking.Timezone)
	assert.Equal(t, []string{"com.whatsapp", "com.whatsapp.w4b"}, cfg.Blocking.SourcePackages)
	assert.Equal(t, "oc_file", cfg.Feishu.RelayChatID)
	assert.Equal(t, 7, cfg.Feishu.RelayPerMinute)
	assert.Equal(t, "file-channel", cfg.Redis.Channel)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.RelayEnabled())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath(), cfg.Store.DBPath)
	assert.Equal(t, DefaultAPIAddr, cfg.API.Addr)
	assert.Equal(t, DefaultRelayPerMinute, cfg.Feishu.RelayPerMinute)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.RelayEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GROUPMUTE_DB_PATH", "~/data/groupmute.db")

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "groupmute.db"), cfg.Store.DBPath)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "db_path: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store: StoreConfig{DBPath: "/tmp/x.db"},
			API:   APIConfig{Addr: ":8090"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"bad timezone", func(c *Config) { c.Blocking.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"bad callback", func(c *Config) { c.Platform.CallbackURL = "ftp://device" }, "PLATFORM_CALLBACK_URL"},
		{"relay without credentials", func(c *Config) { c.Feishu.RelayChatID = "oc_1" }, "FEISHU_APP_ID/FEISHU_APP_SECRET"},
		{"relay zero rate", func(c *Config) {
			c.Feishu = FeishuConfig{AppID: "a", AppSecret: "s", RelayChatID: "oc_1"}
		}, "FEISHU_RELAY_PER_MINUTE"},
		{"no addr", func(c *Config) { c.API.Addr = "" }, "API_ADDR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			var cfgErr *ConfigError
			err := cfg.Validate()
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	cfg := valid()
	cfg.Platform.CallbackURL = "http://10.0.0.5:8080/invoke"
	assert.NoError(t, cfg.Validate())
}
