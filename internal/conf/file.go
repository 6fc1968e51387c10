package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration file layout
type FileConfig struct {
	DBPath   string `yaml:"db_path"`
	APIAddr  string `yaml:"api_addr"`
	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`

	Platform struct {
		CallbackURL string `yaml:"callback_url"`
	} `yaml:"platform"`

	Blocking struct {
		Timezone       string   `yaml:"timezone"`
		SourcePackages []string `yaml:"source_packages"`
	} `yaml:"blocking"`

	Feishu struct {
		AppID          string `yaml:"app_id"`
		AppSecret      string `yaml:"app_secret"`
		RelayChatID    string `yaml:"relay_chat_id"`
		RelayPerMinute int    `yaml:"relay_per_minute"`
	} `yaml:"feishu"`

	Redis struct {
		URL     string `yaml:"url"`
		Channel string `yaml:"channel"`
	} `yaml:"redis"`
}

// LoadFileConfig loads the YAML config file.
// With an empty path the default locations are tried and a missing file yields an empty config.
func LoadFileConfig(configPath string) (*FileConfig, error) {
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
		return parseFileConfig(data, configPath)
	}

	paths := []string{
		"configs/groupmute.yaml",
		"/etc/groupmute/groupmute.yaml",
	}
	// Add path relative to executable
	if execPath, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "groupmute.yaml"))
	}
	// Add path under the home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".groupmute", "groupmute.yaml"))
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err == nil {
			return parseFileConfig(data, p)
		}
	}
	return &FileConfig{}, nil
}

func parseFileConfig(data []byte, path string) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &fc, nil
}

func (fc *FileConfig) toConfig() *Config {
	return &Config{
		Store:    StoreConfig{DBPath: fc.DBPath},
		API:      APIConfig{Addr: fc.APIAddr},
		Platform: PlatformConfig{CallbackURL: fc.Platform.CallbackURL},
		Blocking: BlockingConfig{
			Timezone:       fc.Blocking.Timezone,
			SourcePackages: fc.Blocking.SourcePackages,
		},
		Feishu: FeishuConfig{
			AppID:          fc.Feishu.AppID,
			AppSecret:      fc.Feishu.AppSecret,
			RelayChatID:    fc.Feishu.RelayChatID,
			RelayPerMinute: fc.Feishu.RelayPerMinute,
		},
		Redis: RedisConfig{
			URL:     fc.Redis.URL,
			Channel: fc.Redis.Channel,
		},
		LogLevel: fc.LogLevel,
		Debug:    fc.Debug,
	}
}
