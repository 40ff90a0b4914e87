// Package config loads the service configuration from the environment
// (optionally seeded from a .env file) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/inquirydesk/backend/internal/repository"
)

// Config holds the service configuration. Flags take precedence over env.
//
//nolint:lll // some tags are long
type Config struct {
	Port        string `default:"3000" env:"PORT"         help:"HTTP listen port."`
	FrontendURL string `default:"*"    env:"FRONTEND_URL" help:"Allowed CORS origin ('*' for any)."`

	LogLevel  string `default:"info" env:"LOG_LEVEL"  help:"Log level: debug, info, warn, error."`
	LogFormat string `default:"json" env:"LOG_FORMAT" help:"Log format: json or text." enum:"json,text"`

	RateLimitPerMinute int           `default:"30" env:"RATE_LIMIT_PER_MINUTE" help:"Inquiry submissions allowed per client IP per window (0 disables)."`
	RateLimitWindow    time.Duration `default:"1m" env:"RATE_LIMIT_WINDOW"     help:"Sliding window of the submission limit."`
	TrustedProxies     int           `default:"1"  env:"TRUSTED_PROXIES"       help:"Reverse proxies in front of the service that append to X-Forwarded-For."`

	DB DBConfig `embed:"" prefix:"db-"`
}

// DBConfig holds the store connection and retry settings.
//
//nolint:lll // some tags are long
type DBConfig struct {
	Driver   string `default:"mysql"     env:"DB_DRIVER"   help:"Store driver: mysql, postgres or sqlite." enum:"mysql,postgres,sqlite"`
	Host     string `default:"localhost" env:"DB_HOST"     help:"Store host."`
	Port     int    `default:"0"         env:"DB_PORT"     help:"Store port (0 for the driver default)."`
	User     string `default:""          env:"DB_USER"     help:"Store user."`
	Password string `default:""          env:"DB_PASSWORD" help:"Store password."`
	Name     string `default:"inquiries" env:"DB_NAME"     help:"Database name."`
	URL      string `default:""          env:"DATABASE_URL" name:"url" help:"PostgreSQL URL, MySQL DSN or SQLite path; overrides host/port/user/name."`

	MaxRetries     int           `default:"5"   env:"DB_MAX_RETRIES"     help:"Connection retries after the first attempt."`
	RetryDelay     time.Duration `default:"5s"  env:"DB_RETRY_DELAY"     help:"Fixed delay between connection attempts."`
	ConnectTimeout time.Duration `default:"10s" env:"DB_CONNECT_TIMEOUT" help:"Timeout of a single connection attempt."`
	OpTimeout      time.Duration `default:"5s"  env:"DB_OP_TIMEOUT"      help:"Timeout of a single store operation (0 disables)."`
	MaxConns       int           `default:"4"   env:"DB_MAX_CONNS"       help:"Maximum open store connections."`
}

// Load reads .env (if present), then parses args and the environment.
func Load(args []string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	parser, err := kong.New(&cfg,
		kong.Name("inquirydesk"),
		kong.Description("Contact-form inquiry service."),
	)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return errors.New("PORT must be set")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.RateLimitPerMinute > 0 && c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be greater than 0")
	}
	if c.TrustedProxies < 0 {
		return errors.New("TRUSTED_PROXIES must not be negative")
	}
	if c.DB.MaxRetries < 0 {
		return errors.New("DB_MAX_RETRIES must not be negative")
	}
	if c.DB.RetryDelay < 0 {
		return errors.New("DB_RETRY_DELAY must not be negative")
	}
	if c.DB.MaxConns <= 0 {
		return errors.New("DB_MAX_CONNS must be greater than 0")
	}
	if c.DB.Driver != repository.DriverSQLite && c.DB.URL == "" && c.DB.Host == "" {
		return errors.New("DB_HOST or DATABASE_URL must be set")
	}
	return nil
}

// StoreOptions converts the settings into repository.Open options.
func (c DBConfig) StoreOptions() repository.Options {
	return repository.Options{
		Driver:         c.Driver,
		Host:           c.Host,
		Port:           c.Port,
		User:           c.User,
		Password:       c.Password,
		Database:       c.Name,
		URL:            c.URL,
		MaxConns:       c.MaxConns,
		ConnectTimeout: c.ConnectTimeout,
	}
}
