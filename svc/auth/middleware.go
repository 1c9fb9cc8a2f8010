package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/thefiredev-cloud/vortis/pkg/logger"
	"github.com/thefiredev-cloud/vortis/pkg/requestid"
)

type middlewareConfig struct {
	cookie string
}

// MiddlewareOption configures Middleware and OptionalMiddleware.
type MiddlewareOption func(*middlewareConfig)

// WithCookieName sets the session cookie read when no bearer token is sent.
func WithCookieName(name string) MiddlewareOption {
	return func(c *middlewareConfig) {
		if name != "" {
			c.cookie = name
		}
	}
}

func newMiddlewareConfig(v TokenVerifier, opts []MiddlewareOption) middlewareConfig {
	cfg := middlewareConfig{cookie: "__session"}
	if cv, ok := v.(interface{ CookieName() string }); ok {
		cfg.cookie = cv.CookieName()
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Middleware rejects requests without a valid session token with 401.
func Middleware(v TokenVerifier, log *slog.Logger, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if v == nil {
		panic("auth.Middleware: verifier is required")
	}
	if log == nil {
		log = slog.Default()
	}
	cfg := newMiddlewareConfig(v, opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.Verify(r.Context(), extractToken(r, cfg.cookie))
			if err != nil {
				log.WarnContext(r.Context(), "authentication failed",
					logger.Component("auth"),
					logger.RequestID(requestid.FromContext(r.Context())),
					slog.String("path", r.URL.Path),
					logger.Error(err),
				)
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r, claims)))
		})
	}
}

// OptionalMiddleware attaches the user when a valid token is present and
// passes every request through.
func OptionalMiddleware(v TokenVerifier, log *slog.Logger, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if v == nil {
		panic("auth.OptionalMiddleware: verifier is required")
	}
	if log == nil {
		log = slog.Default()
	}
	cfg := newMiddlewareConfig(v, opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cfg.cookie)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := v.Verify(r.Context(), token)
			if err != nil {
				log.DebugContext(r.Context(), "ignoring invalid session token",
					logger.Component("auth"),
					logger.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r, claims)))
		})
	}
}

func withClaims(r *http.Request, c *Claims) context.Context {
	return SetUserToContext(r.Context(), &User{ID: c.Subject, SessionID: c.SessionID})
}

// extractToken reads a bearer token, falling back to the session cookie.
func extractToken(r *http.Request, cookie string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "Unauthorized",
	})
}
