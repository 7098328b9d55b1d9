package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Webhook    WebhookConfig    `yaml:"webhook"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds the connection settings for the notification channel.
type RedisConfig struct {
	Addr                  string        `yaml:"addr"`
	Channel               string        `yaml:"channel"`
	PublishTimeoutSeconds int           `yaml:"publish_timeout_seconds"`
	PublishTimeout        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// AuthConfig holds JWT signing and seed-admin settings.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"`
	Issuer           string        `yaml:"issuer"`
	AccessTTLMinutes int           `yaml:"access_ttl_minutes"`
	RefreshTTLDays   int           `yaml:"refresh_ttl_days"`
	AdminEmail       string        `yaml:"admin_email"`
	AdminName        string        `yaml:"admin_name"`
	AdminPassword    string        `yaml:"admin_password"`
	AccessTTL        time.Duration `yaml:"-"`
	RefreshTTL       time.Duration `yaml:"-"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// WebhookConfig holds the shared secret for the sheets ingestion endpoint.
type WebhookConfig struct {
	Secret string `yaml:"secret"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "occupancy-updates"
	}
	if cfg.Redis.PublishTimeoutSeconds <= 0 {
		cfg.Redis.PublishTimeoutSeconds = 2
	}
	cfg.Redis.PublishTimeout = time.Duration(cfg.Redis.PublishTimeoutSeconds) * time.Second

	if cfg.Auth.AccessTTLMinutes <= 0 {
		cfg.Auth.AccessTTLMinutes = 30
	}
	if cfg.Auth.RefreshTTLDays <= 0 {
		cfg.Auth.RefreshTTLDays = 7
	}
	cfg.Auth.AccessTTL = time.Duration(cfg.Auth.AccessTTLMinutes) * time.Minute
	cfg.Auth.RefreshTTL = time.Duration(cfg.Auth.RefreshTTLDays) * 24 * time.Hour

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}

	return &cfg, nil
}
