package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SystemConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"`
}

// BackendConfig points at the remote POS backend. SyncInterval is a cron
// spec for the catalog re-sync job, "" disables it.
type BackendConfig struct {
	BaseURL      string `yaml:"base_url"`
	ApiKey       string `yaml:"api_key"`
	Timeout      int    `yaml:"timeout"`
	SyncInterval string `yaml:"sync_interval"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System  SystemConfig  `yaml:"system"`
	Web     WebConfig     `yaml:"web"`
	Backend BackendConfig `yaml:"backend"`
	Logger  LoggerConfig  `yaml:"logger"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		System: SystemConfig{
			Appid:    "tillgate",
			Location: "Asia/Jakarta",
			Workdir:  "/var/tillgate",
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 1989,
		},
		Backend: BackendConfig{
			BaseURL:      "http://127.0.0.1:8000",
			Timeout:      10,
			SyncInterval: "@every 5m",
		},
		Logger: LoggerConfig{
			Mode:     "development",
			Filename: "/var/tillgate/tillgate.log",
		},
	}
}

// LoadConfig reads the YAML config file when present and applies environment
// overrides. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultConfig()
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvStringValue("TILLGATE_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("TILLGATE_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvStringValue("TILLGATE_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("TILLGATE_WEB_PORT", &cfg.Web.Port)
	setEnvStringValue("TILLGATE_WEB_SECRET", &cfg.Web.Secret)
	setEnvStringValue("TILLGATE_BACKEND_BASEURL", &cfg.Backend.BaseURL)
	setEnvStringValue("TILLGATE_BACKEND_APIKEY", &cfg.Backend.ApiKey)
	setEnvIntValue("TILLGATE_BACKEND_TIMEOUT", &cfg.Backend.Timeout)
	setEnvStringValue("TILLGATE_BACKEND_SYNC_INTERVAL", &cfg.Backend.SyncInterval)
	setEnvStringValue("TILLGATE_LOGGER_MODE", &cfg.Logger.Mode)

	if cfg.Logger.Filename == "" {
		cfg.Logger.Filename = filepath.Join(cfg.System.Workdir, "tillgate.log")
	}
	return cfg
}

func setEnvStringValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToInt(v)
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToBool(v)
	}
}
