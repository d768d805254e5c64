// Package config defines the service configuration and loads it once at
// startup from an optional YAML file and the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// EnvProduction turns on Secure cookies.
const EnvProduction = "production"

// Config is the root configuration structure.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"DATABASE_URL" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	ClientURL               string `yaml:"client_url" env:"CLIENT_URL" env-required:"true"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	PasswordReset           `yaml:"password_reset"`
	RedisConnection         `yaml:"redis_connection"`
	RateLimit               `yaml:"rate_limit"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	CORS                    `yaml:"cors"`
}

// HTTPServer configures the HTTP listener.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// JWTToken configures the access token codec.
type JWTToken struct {
	JWTSecretKey string `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	// AccessTokenExpiresIn is the token and cookie lifetime in minutes.
	AccessTokenExpiresIn int `yaml:"access_token_expires_in" env:"ACCESS_TOKEN_EXPIRES_IN" env-default:"15"`
}

// PasswordReset configures the reset token window.
type PasswordReset struct {
	ResetTokenTTL time.Duration `yaml:"reset_token_ttl" env:"RESET_TOKEN_TTL" env-default:"10m"`
}

// RedisConnection configures the Redis client backing the rate limiter.
// An empty address selects the in-process limiter.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// RateLimit bounds the number of auth requests per client and route.
type RateLimit struct {
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"20"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

// RabbitMQ configures the notification queue. An empty URL makes the API
// send emails over SMTP directly.
type RabbitMQ struct {
	URL     string        `yaml:"url" env:"RABBITMQ_URL"`
	Retries int           `yaml:"retries" env:"RABBITMQ_RETRIES" env-default:"5"`
	Delay   time.Duration `yaml:"delay" env:"RABBITMQ_DELAY" env-default:"2s"`
}

// SMTP configures the outgoing mail server.
type SMTP struct {
	SMTPHost    string        `yaml:"host" env:"SMTP_HOST"`
	SMTPPort    string        `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser    string        `yaml:"user" env:"SMTP_USER"`
	SMTPPass    string        `yaml:"pass" env:"SMTP_PASS"`
	SMTPFrom    string        `yaml:"from" env:"SMTP_FROM"`
	SMTPTimeout time.Duration `yaml:"timeout" env:"SMTP_TIMEOUT" env-default:"10s"`
}

// CORS lists the browser origins allowed to call the API with credentials.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// AccessTokenTTL returns the access token lifetime as a duration.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiresIn) * time.Minute
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (if present), then the YAML file named by CONFIG_PATH (if
// set), then the environment. Environment values win over the file.
func Load() (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config
	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("%s: jwt_secret_key is required", op)
	}
	if cfg.ClientURL == "" {
		return nil, fmt.Errorf("%s: client_url is required", op)
	}
	if cfg.AccessTokenExpiresIn <= 0 {
		return nil, fmt.Errorf("%s: access_token_expires_in must be positive", op)
	}
	return &cfg, nil
}

// MustLoad calls Load and exits the process on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}
