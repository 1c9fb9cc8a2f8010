package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefiredev-cloud/vortis/pkg/ratelimit"
)

func testConfig() appConfig {
	return appConfig{
		Env: "test",
		RateLimit: ratelimit.Config{
			Store:         ratelimit.StoreMemory,
			AnalyzeLimit:  10,
			AnalyzeWindow: time.Hour,
			WebhookLimit:  100,
			WebhookWindow: time.Minute,
		},
	}
}

func TestAppConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*appConfig)
		wantErr error
	}{
		{name: "defaults", mutate: func(*appConfig) {}},
		{name: "text logs", mutate: func(c *appConfig) { c.LogFormat = "text" }},
		{name: "unknown log format", mutate: func(c *appConfig) { c.LogFormat = "xml" }, wantErr: errInvalidLogFormat},
		{name: "unknown store", mutate: func(c *appConfig) { c.RateLimit.Store = "memcached" }, wantErr: ratelimit.ErrUnknownStore},
		{name: "redis without url", mutate: func(c *appConfig) { c.RateLimit.Store = ratelimit.StoreRedis }, wantErr: errRedisRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewApp(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.DiscardHandler)
	a, err := newApp(context.Background(), testConfig(), log, connections{})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.close()) })

	t.Run("ready without external dependencies", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("analyze is served", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"ticker":"NVDA"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ticker":"NVDA"`)
	})

	t.Run("checkout needs a session", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/api/stripe/checkout", strings.NewReader(`{"planName":"pro"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("clerk webhook without secret", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/clerk", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		a.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestNewAppRejectsRedisStoreWithoutClient(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RateLimit.Store = ratelimit.StoreRedis
	_, err := newApp(context.Background(), cfg, slog.New(slog.DiscardHandler), connections{})
	assert.ErrorIs(t, err, errRedisRequired)
}
