package ratelimit

import (
	"context"
	"math"
	"time"
)

// Preset names an endpoint class with its own rule. The set is closed.
type Preset string

const (
	PresetAnalyze Preset = "analyze"
	PresetWebhook Preset = "webhook"
)

// Presets lists every preset a Limiter must be configured with.
func Presets() []Preset {
	return []Preset{PresetAnalyze, PresetWebhook}
}

// Rule allows Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// DefaultRules returns 10 analyses per hour and 100 webhook deliveries per
// minute.
func DefaultRules() map[Preset]Rule {
	return map[Preset]Rule{
		PresetAnalyze: {Limit: 10, Window: time.Hour},
		PresetWebhook: {Limit: 100, Window: time.Minute},
	}
}

// Result is the outcome of one Check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	ResetIn   time.Duration
}

// RetryAfter returns the whole seconds until the window resets, never less
// than 1.
func (r *Result) RetryAfter() int {
	secs := int(math.Ceil(r.ResetIn.Seconds()))
	return max(secs, 1)
}

// Store keeps fixed-window counters.
type Store interface {
	// IncrementAndGet adds incr to key's counter and returns the new count and
	// the time left in the window. A missing or expired counter starts a new
	// window of the given length.
	IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (count int64, ttl time.Duration, err error)

	// Delete drops key's counter.
	Delete(ctx context.Context, key string) error
}
