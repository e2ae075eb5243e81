// Package config loads client settings from .env, config.yaml and BOOKNSTAY_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BOOKNSTAY_API_URL.
const EnvPrefix = "BOOKNSTAY"

// Config is the resolved client configuration.
type Config struct {
	APIURL  string
	WebURL  string
	DataDir string
	Storage Storage
	Cache   Cache
	HTTP    HTTP
	Log     Log
	Metrics Metrics
	// File is the config file that was read, empty when only defaults and env applied.
	File string
}

// Storage selects where the session snapshot is kept.
type Storage struct {
	Driver    string // "file", "redis" or "memory"
	Namespace string
	Redis     Redis
}

// Redis holds the connection settings of the redis driver.
type Redis struct {
	Addr     string
	Username string
	Password string
	DB       int
}

type Cache struct {
	KeepUnusedFor time.Duration
}

type HTTP struct {
	Timeout time.Duration
}

type Log struct {
	Level  string
	Format string // "text" or "json"
	File   string
}

type Metrics struct {
	Addr string
}

// Load reads configuration. An explicit path must exist; otherwise config.yaml is looked up in
// $HOME/.booknstay and the working directory and may be absent.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.booknstay")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	}

	dataDir, err := expandHome(v.GetString("data_dir"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		APIURL:  strings.TrimRight(v.GetString("api_url"), "/"),
		WebURL:  strings.TrimRight(v.GetString("web_url"), "/"),
		DataDir: dataDir,
		Storage: Storage{
			Driver:    v.GetString("storage.driver"),
			Namespace: v.GetString("storage.namespace"),
			Redis: Redis{
				Addr:     v.GetString("storage.redis.addr"),
				Username: v.GetString("storage.redis.username"),
				Password: v.GetString("storage.redis.password"),
				DB:       v.GetInt("storage.redis.db"),
			},
		},
		Cache:   Cache{KeepUnusedFor: v.GetDuration("cache.keep_unused_for")},
		HTTP:    HTTP{Timeout: v.GetDuration("http.timeout")},
		Log:     Log{Level: v.GetString("log.level"), Format: v.GetString("log.format"), File: v.GetString("log.file")},
		Metrics: Metrics{Addr: v.GetString("metrics.addr")},
		File:    v.ConfigFileUsed(),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8000/api")
	v.SetDefault("web_url", "http://localhost:5173")
	v.SetDefault("data_dir", "~/.booknstay")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.namespace", "booknstay")
	v.SetDefault("storage.redis.addr", "")
	v.SetDefault("storage.redis.username", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("cache.keep_unused_for", "60s")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("metrics.addr", "")
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "file", "memory":
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return errors.New("config: storage.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.APIURL == "" {
		return errors.New("config: api_url is required")
	}
	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
