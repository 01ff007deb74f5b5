package config

import (
	"fmt"
	"os"
	"time"

	"authportal/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL        = "http://127.0.0.1:5000"
	DefaultTimeout        = 30 * time.Second
	DefaultTokenStatePath = "configs/authportal_state.json"
	DefaultTokenKey       = "jwtoken"
	// DefaultTokenTTL is roughly 300 days.
	DefaultTokenTTL     = 25892000000 * time.Millisecond
	DefaultLogPath      = "logs/authportal.log"
	DefaultRedisPrefix  = "authportal:"
	DefaultRedisTimeout = 3 * time.Second
)

// Token store drivers.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds portal configuration.
type Config struct {
	BaseURL    string           `yaml:"baseURL"`
	Timeout    time.Duration    `yaml:"timeout"`
	PrettyJSON *bool            `yaml:"prettyJSON"`
	TokenStore TokenStoreConfig `yaml:"tokenStore"`
	Redis      RedisConfig      `yaml:"redis"`
	Log        logger.Config    `yaml:"log"`
}

// TokenStoreConfig selects where the bearer token lives.
type TokenStoreConfig struct {
	Driver string        `yaml:"driver"`
	Path   string        `yaml:"path"`
	Key    string        `yaml:"key"`
	TTL    time.Duration `yaml:"ttl"`
	// PersistBeforeStatus stores the login token as soon as a body is parsed,
	// before the HTTP status is checked.
	PersistBeforeStatus bool `yaml:"persistBeforeStatus"`
}

// RedisConfig is used when TokenStore.Driver is "redis".
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"keyPrefix"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Load reads the YAML file at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file failed: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns a config with every default applied.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// Validate checks values that defaults cannot repair.
func (c Config) Validate() error {
	switch c.TokenStore.Driver {
	case DriverFile, DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for redis token store")
		}
	default:
		return fmt.Errorf("unknown token store driver: %s", c.TokenStore.Driver)
	}
	if c.TokenStore.TTL < 0 {
		return fmt.Errorf("tokenStore.ttl must not be negative")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PrettyJSON == nil {
		value := true
		cfg.PrettyJSON = &value
	}
	if cfg.TokenStore.Driver == "" {
		cfg.TokenStore.Driver = DriverFile
	}
	if cfg.TokenStore.Path == "" {
		cfg.TokenStore.Path = DefaultTokenStatePath
	}
	if cfg.TokenStore.Key == "" {
		cfg.TokenStore.Key = DefaultTokenKey
	}
	if cfg.TokenStore.TTL == 0 {
		cfg.TokenStore.TTL = DefaultTokenTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisPrefix
	}
	if cfg.Redis.Timeout == 0 {
		cfg.Redis.Timeout = DefaultRedisTimeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.OutputPath == "" {
		cfg.Log.OutputPath = DefaultLogPath
	}
}
