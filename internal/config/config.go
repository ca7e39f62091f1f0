package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "DEVTOOLS"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Profiler ProfilerConfig `mapstructure:"profiler"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"` // developer, default or production
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"`
	Seed     bool   `mapstructure:"seed"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) GetRedisAddr() string {
	return r.Host + ":" + r.Port
}

type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`

	// Login attempts per client IP per minute, enforced only with redis
	LoginAttemptsPerMinute int `mapstructure:"login_attempts_per_minute"`
}

type ProfilerConfig struct {
	AssetBaseURL     string        `mapstructure:"asset_base_url"`
	AssetDir         string        `mapstructure:"asset_dir"`
	Theme            string        `mapstructure:"theme"`
	Locales          []string      `mapstructure:"locales"`
	LogFile          string        `mapstructure:"log_file"`
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes"`
	SettingsCacheTTL time.Duration `mapstructure:"settings_cache_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "developer")
	v.SetDefault("server.environment", "development")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "devtools.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.seed", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.expiry_hours", 24)
	v.SetDefault("auth.login_attempts_per_minute", 10)

	v.SetDefault("profiler.asset_base_url", "/static")
	v.SetDefault("profiler.asset_dir", "./static")
	v.SetDefault("profiler.theme", "Magento/luma")
	v.SetDefault("profiler.locales", []string{"en_US"})
	v.SetDefault("profiler.log_file", "var/log/devtools_profiler.log")
	v.SetDefault("profiler.max_body_bytes", 64*1024)
	v.SetDefault("profiler.settings_cache_ttl", "30s")
}

// Load reads path (json, yaml or toml by extension) on top of the defaults.
// DEVTOOLS_* environment variables override both, e.g. DEVTOOLS_DATABASE_DSN.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", v.ConfigFileUsed(), err)
		}
		log.Printf("No config file found, using defaults and environment")
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}

	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	if c.Server.Environment == "production" && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required in production")
	}

	if c.Profiler.MaxBodyBytes < 0 {
		return errors.New("profiler.max_body_bytes must not be negative")
	}

	return nil
}
