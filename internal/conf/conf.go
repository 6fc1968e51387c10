package conf

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration
type Config struct {
	// Preference database
	Store StoreConfig

	// HTTP API
	API APIConfig

	// Device-side callback for firing notification intents
	Platform PlatformConfig

	// Decision engine
	Blocking BlockingConfig

	// Feishu relay (optional)
	Feishu FeishuConfig

	// Redis fan-out (optional)
	Redis RedisConfig

	// Log level name
	LogLevel string

	// Debug mode
	Debug bool
}

// StoreConfig contains storage configuration
type StoreConfig struct {
	DBPath string
}

// APIConfig contains HTTP server configuration
type APIConfig struct {
	Addr string
}

// PlatformConfig contains the platform callback configuration
type PlatformConfig struct {
	CallbackURL string // empty runs dry
}

// BlockingConfig contains decision engine configuration
type BlockingConfig struct {
	Timezone       string   // IANA name, empty for the host zone
	SourcePackages []string // empty for the built-in chat app packages
}

// FeishuConfig contains Feishu relay configuration
type FeishuConfig struct {
	AppID          string
	AppSecret      string
	RelayChatID    string
	RelayPerMinute int
}

// RedisConfig contains Redis publisher configuration
type RedisConfig struct {
	URL     string
	Channel string
}

// Defaults used when neither the file nor the environment set a value
const (
	DefaultAPIAddr        = ":8090"
	DefaultRelayPerMinute = 20
	DefaultLogLevel       = "info"
)

// DefaultDBPath returns ~/.groupmute/groupmute.db
func DefaultDBPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".groupmute", "groupmute.db")
}

// LoadFromEnv loads configuration from the config file named by GROUPMUTE_CONFIG
// (or the default search paths) and then environment variables
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("GROUPMUTE_CONFIG"))
}

// Load reads the YAML file at configPath, searching the default paths when empty,
// and applies environment overrides on top
func Load(configPath string) (*Config, error) {
	file, err := LoadFileConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := file.toConfig()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Store.DBPath, "GROUPMUTE_DB_PATH")
	setString(&c.API.Addr, "API_ADDR")
	setString(&c.Platform.CallbackURL, "PLATFORM_CALLBACK_URL")
	setString(&c.Blocking.Timezone, "TIMEZONE")
	if val := os.Getenv("SOURCE_PACKAGES"); val != "" {
		c.Blocking.SourcePackages = splitList(val)
	}

	setString(&c.Feishu.AppID, "FEISHU_APP_ID")
	setString(&c.Feishu.AppSecret, "FEISHU_APP_SECRET")
	setString(&c.Feishu.RelayChatID, "FEISHU_RELAY_CHAT_ID")
	if val := os.Getenv("FEISHU_RELAY_PER_MINUTE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.Feishu.RelayPerMinute = parsed
		}
	}

	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Redis.Channel, "REDIS_CHANNEL")
	setString(&c.LogLevel, "LOG_LEVEL")
	if val := os.Getenv("DEBUG"); val != "" {
		c.Debug = val == "true"
	}

	if c.Store.DBPath == "" {
		c.Store.DBPath = DefaultDBPath()
	}
	c.Store.DBPath = expandHome(c.Store.DBPath)
	if c.API.Addr == "" {
		c.API.Addr = DefaultAPIAddr
	}
	if c.Feishu.RelayPerMinute == 0 {
		c.Feishu.RelayPerMinute = DefaultRelayPerMinute
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Location resolves the schedule timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Blocking.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Blocking.Timezone)
}

// RelayEnabled reports whether entries are relayed to Feishu
func (c *Config) RelayEnabled() bool {
	return c.Feishu.RelayChatID != ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.DBPath == "" {
		return &ConfigError{Field: "GROUPMUTE_DB_PATH", Message: "required"}
	}
	if c.API.Addr == "" {
		return &ConfigError{Field: "API_ADDR", Message: "required"}
	}
	if _, err := c.Location(); err != nil {
		return &ConfigError{Field: "TIMEZONE", Message: err.Error()}
	}
	if c.Platform.CallbackURL != "" {
		u, err := url.Parse(c.Platform.CallbackURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ConfigError{Field: "PLATFORM_CALLBACK_URL", Message: "must be an http(s) URL"}
		}
	}
	if c.RelayEnabled() {
		if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
			return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required when FEISHU_RELAY_CHAT_ID is set"}
		}
		if c.Feishu.RelayPerMinute < 1 {
			return &ConfigError{Field: "FEISHU_RELAY_PER_MINUTE", Message: "must be at least 1"}
		}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
