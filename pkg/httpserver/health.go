package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/thefiredev-cloud/vortis/pkg/logger"
)

// Check is one named readiness dependency, such as a database ping.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// HealthStatus is the body of both health endpoints.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const checkTimeout = 3 * time.Second

// LivenessHandler reports that the process is serving requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthStatus{Status: "alive"})
	}
}

// ReadinessHandler runs every check with a bounded timeout. Any failure
// answers 500 with the failing check marked "fail".
func ReadinessHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		res := HealthStatus{Status: "ready", Checks: make(map[string]string, len(checks))}
		code := http.StatusOK

		for _, c := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			err := c.Fn(ctx)
			cancel()

			if err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					logger.Component("health"),
					slog.String("check", c.Name),
					logger.Error(err),
				)
				res.Checks[c.Name] = "fail"
				res.Status = "not_ready"
				code = http.StatusInternalServerError
				continue
			}
			res.Checks[c.Name] = "ok"
		}

		writeHealth(w, code, res)
	}
}

func writeHealth(w http.ResponseWriter, code int, body HealthStatus) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
