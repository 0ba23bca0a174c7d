package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config captures the service runtime parameters.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Hub      HubConfig      `mapstructure:"hub"`
	Log      LogConfig      `mapstructure:"log"`

	v *viper.Viper
}

type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

type AuthConfig struct {
	// Secret signs and verifies identity tokens. Must be set in production;
	// the default exists only so local runs work out of the box.
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type HubConfig struct {
	MailboxSize   int           `mapstructure:"mailbox_size"`
	SessionBuffer int           `mapstructure:"session_buffer"`
	SendTimeout   time.Duration `mapstructure:"send_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	defaultHTTPAddr     = "0.0.0.0:8080"
	defaultDatabasePath = "data/fanchat.db"
	defaultLogLevel     = "info"
)

// Load reads configuration from the provided file path (if any) and the
// environment. Environment variables are prefixed with FANCHAT_ and override
// file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FANCHAT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("http.addr", defaultHTTPAddr)
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.busy_timeout", "5s")
	v.SetDefault("auth.secret", "dev-secret-change-me")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("hub.mailbox_size", 256)
	v.SetDefault("hub.session_buffer", 64)
	v.SetDefault("hub.send_timeout", "500ms")
	v.SetDefault("log.level", defaultLogLevel)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr cannot be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Hub.MailboxSize <= 0 {
		return fmt.Errorf("hub.mailbox_size must be positive")
	}
	if c.Hub.SessionBuffer <= 0 {
		return fmt.Errorf("hub.session_buffer must be positive")
	}
	if c.Hub.SendTimeout <= 0 {
		return fmt.Errorf("hub.send_timeout must be positive")
	}
	return nil
}

// Watch re-reads the config file on change and invokes fn with the fresh
// values. Used to adjust the log level without a restart. No-op when the
// config came purely from defaults and environment.
func (c *Config) Watch(fn func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(_ fsnotify.Event) {
		fresh := &Config{v: c.v}
		if err := c.v.Unmarshal(fresh); err != nil {
			return
		}
		if err := fresh.Validate(); err != nil {
			return
		}
		fn(fresh)
	})
	c.v.WatchConfig()
}
