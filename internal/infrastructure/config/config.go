package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8000"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BaseURL is the externally reachable origin used in emails and payment
	// redirect URLs.
	BaseURL string `env:"BASE_URL, default=http://localhost:8000"`

	JWT       JWTConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	Stripe    StripeConfig
	RateLimit RateLimitConfig
}

type JWTConfig struct {
	Secret string `env:"JWT_SECRET"`
	// ExpiresIn bounds token validity; CookieDays bounds the jwt cookie.
	ExpiresIn  time.Duration `env:"JWT_EXPIRES_IN, default=24h"`
	CookieDays int           `env:"JWT_COOKIE_EXPIRES_IN, default=90"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=natours"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	DB       int    `env:"REDIS_DB,   default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type SMTPConfig struct {
	Host     string `env:"EMAIL_HOST, default=localhost"`
	Port     int    `env:"EMAIL_PORT, default=587"`
	Username string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASS"`
	From     string `env:"EMAIL_FROM, default=Natours <hello@natours.dev>"`
}

type StripeConfig struct {
	SecretKey string `env:"STRIPE_SECRET"`
}

type RateLimitConfig struct {
	// Max requests per client address within Window on the API prefix.
	Max    int           `env:"RATE_LIMIT_MAX,    default=100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=1h"`
}

// Development reports whether the process runs in development mode, which
// switches on verbose error payloads and pretty logs.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
