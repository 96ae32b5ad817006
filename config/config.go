package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"hutplan-backend/internal/occupancy"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Layout     LayoutConfig     `yaml:"layout"`
	Cache      CacheConfig      `yaml:"cache"`
	Holidays   HolidayConfig    `yaml:"holidays"`
	Push       PushConfig       `yaml:"push"`
	AMQP       AMQPConfig       `yaml:"amqp"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port" validate:"min=1,max=65535"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec" validate:"gt=0"`
	RateLimitBurst  int     `yaml:"rate_limit_burst" validate:"min=1"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" validate:"oneof=postgres mysql sqlite"`
	DSN                    string `yaml:"dsn" validate:"required"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableRangeIndex       bool   `yaml:"enable_range_index"`
}

// LayoutConfig holds the lane packing parameters, in fractions of a day.
type LayoutConfig struct {
	Master occupancy.StackOptions `yaml:"master"`
	Room   occupancy.StackOptions `yaml:"room"`
}

// CacheConfig configures the GET response cache.
type CacheConfig struct {
	TTLSeconds int           `yaml:"ttl_seconds"`
	TTL        time.Duration `yaml:"-"`
	RedisAddr  string        `yaml:"redis_addr"`
	RedisDB    int           `yaml:"redis_db"`
	Prefix     string        `yaml:"prefix"`
}

// HolidayConfig configures the public holiday sources.
type HolidayConfig struct {
	Country         string        `yaml:"country" validate:"len=2"`
	APIURL          string        `yaml:"api_url" validate:"omitempty,url"`
	HTTPProxy       string        `yaml:"http_proxy"`
	RefreshHours    int           `yaml:"refresh_hours"`
	RefreshInterval time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// AMQPConfig configures the assignment event publisher.
type AMQPConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path. A .env file next to the
// working directory is loaded first; DATABASE_DSN, REDIS_ADDR and AMQP_URL
// override the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not read .env: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Layout keys missing from the file keep their defaults.
	cfg := Config{Layout: LayoutConfig{
		Master: occupancy.MasterStackOptions(),
		Room:   occupancy.RoomStackOptions(),
	}}
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQP.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	// An empty "master:" or "room:" block decodes to zero values.
	if cfg.Layout.Master == (occupancy.StackOptions{}) {
		cfg.Layout.Master = occupancy.MasterStackOptions()
	}
	if cfg.Layout.Room == (occupancy.StackOptions{}) {
		cfg.Layout.Room = occupancy.RoomStackOptions()
	}

	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	cfg.Cache.TTL = time.Duration(cfg.Cache.TTLSeconds) * time.Second
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "hutplan"
	}

	if cfg.Holidays.Country == "" {
		cfg.Holidays.Country = "AT"
	}
	if cfg.Holidays.RefreshHours <= 0 {
		cfg.Holidays.RefreshHours = 24
	}
	cfg.Holidays.RefreshInterval = time.Duration(cfg.Holidays.RefreshHours) * time.Hour

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.AMQP.Queue == "" {
		cfg.AMQP.Queue = "assignment.committed"
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
