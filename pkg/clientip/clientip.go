// Package clientip resolves the caller address used for anonymous rate
// limiting.
package clientip

import (
	"context"
	"net/http"
	"strings"
)

// Unknown is returned when the request carries no forwarded address.
const Unknown = "unknown"

// GetIP returns the first entry of X-Forwarded-For, trimmed. The platform
// proxy prepends the real client address, so later entries are ignored.
// Requests without the header resolve to Unknown and share one bucket.
func GetIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	first, _, _ := strings.Cut(forwarded, ",")
	if ip := strings.TrimSpace(first); ip != "" {
		return ip
	}
	return Unknown
}

type contextKey struct{}

func SetIPToContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// GetIPFromContext returns the address stored by Middleware, or "".
func GetIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// Middleware stores the resolved address in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(SetIPToContext(r.Context(), GetIP(r))))
	})
}
