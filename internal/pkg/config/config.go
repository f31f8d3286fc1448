package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB/Redis connection), security settings
// - default: Values common across all environments (timeouts, TTLs), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Log     LogConfig
	CORS    CORSConfig
	JWT     JWTConfig
	Seckill SeckillConfig
	Cache   CacheConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

// SeckillConfig tunes the admission path and the order consumer.
type SeckillConfig struct {
	Stream        string        `envconfig:"SECKILL_STREAM" default:"stream.orders"`
	Group         string        `envconfig:"SECKILL_GROUP" default:"g1"`
	Consumer      string        `envconfig:"SECKILL_CONSUMER" default:"c1"`
	BlockTimeout  time.Duration `envconfig:"SECKILL_BLOCK_TIMEOUT" default:"2s"`
	PoisonRetries int           `envconfig:"SECKILL_POISON_RETRIES" default:"3"`
	OrderLockTTL  time.Duration `envconfig:"SECKILL_ORDER_LOCK_TTL" default:"10s"`
}

// CacheConfig tunes the read-through cache over Redis.
type CacheConfig struct {
	ShopTTL        time.Duration `envconfig:"CACHE_SHOP_TTL" default:"30m"`
	VoucherTTL     time.Duration `envconfig:"CACHE_VOUCHER_TTL" default:"30m"`
	NullTTL        time.Duration `envconfig:"CACHE_NULL_TTL" default:"2m"`
	LogicalTTL     time.Duration `envconfig:"CACHE_LOGICAL_TTL" default:"20m"`
	RebuildLockTTL time.Duration `envconfig:"CACHE_REBUILD_LOCK_TTL" default:"10s"`
	RebuildWorkers int           `envconfig:"CACHE_REBUILD_WORKERS" default:"10"`
	RebuildBacklog int           `envconfig:"CACHE_REBUILD_BACKLOG" default:"128"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:16379",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: time.Hour,
		},
		Seckill: SeckillConfig{
			Stream:        "stream.orders",
			Group:         "g1",
			Consumer:      "c1",
			BlockTimeout:  50 * time.Millisecond,
			PoisonRetries: 3,
			OrderLockTTL:  time.Second,
		},
		Cache: CacheConfig{
			ShopTTL:        30 * time.Minute,
			VoucherTTL:     30 * time.Minute,
			NullTTL:        2 * time.Minute,
			LogicalTTL:     20 * time.Minute,
			RebuildLockTTL: time.Second,
			RebuildWorkers: 2,
			RebuildBacklog: 8,
		},
	}
}
