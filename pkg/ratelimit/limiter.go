package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"time"
)

// maxIdentifierLength bounds stored keys. Forwarded addresses are client
// controlled, so longer identifiers are hashed.
const maxIdentifierLength = 64

// Limiter applies fixed-window rules per preset.
type Limiter struct {
	store Store
	rules map[Preset]Rule
	now   func() time.Time
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithLimiterClock replaces time.Now when computing ResetAt.
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLimiter returns a Limiter after checking that every preset has a rule
// with a positive limit and window.
func NewLimiter(store Store, rules map[Preset]Rule, opts ...LimiterOption) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	for _, p := range Presets() {
		rule, ok := rules[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingPreset, p)
		}
		if rule.Limit <= 0 || rule.Window <= 0 {
			return nil, fmt.Errorf("%w: %s needs a positive limit and window, got %d per %s", ErrInvalidRule, p, rule.Limit, rule.Window)
		}
	}

	l := &Limiter{
		store: store,
		rules: maps.Clone(rules),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Rule returns the rule for p. It panics for presets outside the configured
// set, which NewLimiter makes a programming error.
func (l *Limiter) Rule(p Preset) Rule {
	rule, ok := l.rules[p]
	if !ok {
		panic(fmt.Sprintf("ratelimit: preset %q is not configured", p))
	}
	return rule
}

// Check counts one request for identifier under preset p.
func (l *Limiter) Check(ctx context.Context, p Preset, identifier string) (*Result, error) {
	rule := l.Rule(p)
	if identifier == "" {
		return nil, ErrKeyRequired
	}

	count, ttl, err := l.store.IncrementAndGet(ctx, storageKey(p, identifier), 1, rule.Window)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 || ttl > rule.Window {
		ttl = rule.Window
	}

	res := &Result{
		Allowed:   count <= int64(rule.Limit),
		Limit:     rule.Limit,
		Remaining: max(rule.Limit-int(count), 0),
		ResetAt:   l.now().Add(ttl),
		ResetIn:   ttl,
	}
	return res, nil
}

// Reset clears identifier's counter under preset p.
func (l *Limiter) Reset(ctx context.Context, p Preset, identifier string) error {
	l.Rule(p)
	if identifier == "" {
		return ErrKeyRequired
	}
	return l.store.Delete(ctx, storageKey(p, identifier))
}

func storageKey(p Preset, identifier string) string {
	if len(identifier) > maxIdentifierLength {
		sum := sha256.Sum256([]byte(identifier))
		identifier = hex.EncodeToString(sum[:16])
	}
	return string(p) + ":" + identifier
}
