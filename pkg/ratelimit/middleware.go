package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/thefiredev-cloud/vortis/pkg/logger"
)

// Observer is told about every decision the middleware makes.
type Observer func(p Preset, allowed bool)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	log            *slog.Logger
	observer       Observer
	onLimitReached func(w http.ResponseWriter, r *http.Request, res *Result)
}

func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.log = l
		}
	}
}

func WithObserver(o Observer) MiddlewareOption {
	return func(c *middlewareConfig) { c.observer = o }
}

// WithOnLimitReached replaces the default 429 JSON response.
func WithOnLimitReached(fn func(w http.ResponseWriter, r *http.Request, res *Result)) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.onLimitReached = fn
		}
	}
}

// LimitExceededBody is the JSON body of a rejected request.
type LimitExceededBody struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// WriteLimitExceeded writes the 429 response for res.
func WriteLimitExceeded(w http.ResponseWriter, _ *http.Request, res *Result) {
	retryAfter := res.RetryAfter()
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(LimitExceededBody{
		Error:      "Too many requests",
		RetryAfter: retryAfter,
	})
}

// SetHeaders writes the X-RateLimit-* headers for res.
func SetHeaders(h http.Header, res *Result) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

// Middleware checks every request against preset p. Store failures let the
// request through so a counter outage does not take the endpoint down.
func Middleware(l *Limiter, p Preset, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if l == nil {
		panic("ratelimit.Middleware: limiter is required")
	}
	if keyFunc == nil {
		panic("ratelimit.Middleware: keyFunc is required")
	}
	l.Rule(p)

	cfg := &middlewareConfig{
		log:            slog.Default(),
		onLimitReached: WriteLimitExceeded,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := l.Check(r.Context(), p, key)
			if err != nil {
				cfg.log.WarnContext(r.Context(), "rate limit check failed, allowing request",
					logger.Component("ratelimit"),
					logger.Identifier(key),
					logger.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			if cfg.observer != nil {
				cfg.observer(p, res.Allowed)
			}
			SetHeaders(w.Header(), res)

			if !res.Allowed {
				cfg.log.WarnContext(r.Context(), "rate limit exceeded",
					logger.Component("ratelimit"),
					logger.Identifier(key),
					slog.String("preset", string(p)),
					slog.Int("retry_after", res.RetryAfter()),
				)
				cfg.onLimitReached(w, r, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
