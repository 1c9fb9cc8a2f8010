package ratelimit

import (
	"fmt"
	"time"
)

// Store backends selectable through RATE_LIMIT_STORE.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Store           string        `env:"RATE_LIMIT_STORE" envDefault:"memory"`
	AnalyzeLimit    int           `env:"RATE_LIMIT_ANALYZE_LIMIT" envDefault:"10"`
	AnalyzeWindow   time.Duration `env:"RATE_LIMIT_ANALYZE_WINDOW" envDefault:"1h"`
	WebhookLimit    int           `env:"RATE_LIMIT_WEBHOOK_LIMIT" envDefault:"100"`
	WebhookWindow   time.Duration `env:"RATE_LIMIT_WEBHOOK_WINDOW" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"1m"`
}

// Rules converts the configured limits into per-preset rules.
func (c Config) Rules() map[Preset]Rule {
	return map[Preset]Rule{
		PresetAnalyze: {Limit: c.AnalyzeLimit, Window: c.AnalyzeWindow},
		PresetWebhook: {Limit: c.WebhookLimit, Window: c.WebhookWindow},
	}
}

// Validate checks the store name.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreRedis:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}
}
