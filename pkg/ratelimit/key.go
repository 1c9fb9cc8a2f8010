package ratelimit

import (
	"net/http"

	"github.com/thefiredev-cloud/vortis/pkg/clientip"
)

// KeyFunc derives the rate limit identifier for a request. An empty result
// skips the check.
type KeyFunc func(*http.Request) string

// UserOrIP keys authenticated callers as "user:<id>" and everyone else as
// "ip:<address>".
func UserOrIP(userID func(*http.Request) string) KeyFunc {
	return func(r *http.Request) string {
		if userID != nil {
			if id := userID(r); id != "" {
				return "user:" + id
			}
		}
		return "ip:" + clientip.GetIP(r)
	}
}

// IP keys every caller by forwarded address.
func IP() KeyFunc {
	return UserOrIP(nil)
}
