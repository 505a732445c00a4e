package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL,   default=15m"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL,  default=720h"`
	SessionRetention time.Duration `env:"SESSION_RETENTION,  default=168h"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL,     default=24h"`

	RateLimit      int64         `env:"RATE_LIMIT,        default=10"`
	RateWindow     time.Duration `env:"RATE_WINDOW,       default=1m"`
	ShutdownPeriod time.Duration `env:"SHUTDOWN_PERIOD,   default=10s"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=centralauth"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
