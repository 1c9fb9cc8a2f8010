package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/thefiredev-cloud/vortis/modules/api"
	"github.com/thefiredev-cloud/vortis/pkg/config"
	"github.com/thefiredev-cloud/vortis/pkg/environment"
	"github.com/thefiredev-cloud/vortis/pkg/httpserver"
	"github.com/thefiredev-cloud/vortis/pkg/logger"
	"github.com/thefiredev-cloud/vortis/pkg/pg"
	"github.com/thefiredev-cloud/vortis/pkg/ratelimit"
	"github.com/thefiredev-cloud/vortis/pkg/redis"
	"github.com/thefiredev-cloud/vortis/pkg/requestid"
	"github.com/thefiredev-cloud/vortis/svc/auth"
	"github.com/thefiredev-cloud/vortis/svc/checkout"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

const serviceName = "vortis"

var (
	errInvalidLogFormat = errors.New("invalid LOG_FORMAT")
	errRedisRequired    = errors.New("RATE_LIMIT_STORE=redis requires REDIS_URL")
)

// appConfig is read from the environment, with .env as a local fallback.
type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"` // json | text; empty picks by environment

	HTTP      httpserver.Config
	API       api.Config
	RateLimit ratelimit.Config
	Postgres  pg.Config
	Redis     redis.Config
	Auth      auth.Config
	Checkout  checkout.Config
	Plans     subscription.Config
}

func loadConfig() (appConfig, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return appConfig{}, err
	}
	if err := cfg.validate(); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func (c appConfig) validate() error {
	switch logger.Format(c.LogFormat) {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, c.LogFormat)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if c.RateLimit.Store == ratelimit.StoreRedis && !c.Redis.Enabled() {
		return errRedisRequired
	}
	return nil
}

func (c appConfig) environment() environment.Environment {
	return environment.Parse(c.Env)
}

func newLogger(c appConfig) *slog.Logger {
	opts := []logger.Option{
		logger.WithOutput(os.Stderr),
		logger.WithEnvironment(c.environment(), serviceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if c.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(c.LogFormat)))
	}
	if c.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(c.LogLevel))
	}
	return logger.New(opts...)
}
