package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/thefiredev-cloud/vortis/modules/api"
	"github.com/thefiredev-cloud/vortis/pkg/httpserver"
	"github.com/thefiredev-cloud/vortis/pkg/logger"
	"github.com/thefiredev-cloud/vortis/pkg/metrics"
	"github.com/thefiredev-cloud/vortis/pkg/pg"
	"github.com/thefiredev-cloud/vortis/pkg/ratelimit"
	"github.com/thefiredev-cloud/vortis/pkg/redis"
	"github.com/thefiredev-cloud/vortis/svc/analysis"
	"github.com/thefiredev-cloud/vortis/svc/auth"
	"github.com/thefiredev-cloud/vortis/svc/checkout"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

// app holds the wired HTTP handler and the resources it owns.
type app struct {
	cfg     appConfig
	log     *slog.Logger
	handler http.Handler
	closers []func() error
}

// connections are the external clients an app may use. Nil entries fall
// back to in-process implementations.
type connections struct {
	pool  *pgxpool.Pool
	redis goredis.UniversalClient
}

// connect opens the configured Postgres and Redis connections.
func connect(ctx context.Context, cfg appConfig, log *slog.Logger) (connections, error) {
	var conns connections

	if cfg.Postgres.Enabled() {
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return connections{}, fmt.Errorf("connect postgres: %w", err)
		}
		conns.pool = pool
	} else {
		log.WarnContext(ctx, "PG_CONN_URL not set, subscriptions are kept in memory")
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			if conns.pool != nil {
				conns.pool.Close()
			}
			return connections{}, fmt.Errorf("connect redis: %w", err)
		}
		conns.redis = client
	}
	return conns, nil
}

// newApp wires every component from cfg. The returned app owns conns.
func newApp(ctx context.Context, cfg appConfig, log *slog.Logger, conns connections) (*app, error) {
	a := &app{cfg: cfg, log: log}
	if conns.pool != nil {
		a.closers = append(a.closers, func() error { conns.pool.Close(); return nil })
	}
	if conns.redis != nil {
		a.closers = append(a.closers, conns.redis.Close)
	}

	catalog, err := subscription.LoadCatalog(ctx, cfg.Plans)
	if err != nil {
		return nil, errors.Join(err, a.close())
	}

	var checks []httpserver.Check
	var store subscription.Store = subscription.NewMemoryStore()
	if conns.pool != nil {
		store = subscription.NewPostgresStore(conns.pool)
		checks = append(checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(conns.pool)})
	}
	if conns.redis != nil {
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(conns.redis)})
	}

	var rateStore ratelimit.Store
	switch cfg.RateLimit.Store {
	case ratelimit.StoreRedis:
		if conns.redis == nil {
			return nil, errors.Join(errRedisRequired, a.close())
		}
		rateStore = ratelimit.NewRedisStore(conns.redis)
	default:
		mem := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(cfg.RateLimit.CleanupInterval))
		a.closers = append(a.closers, mem.Close)
		rateStore = mem
	}
	limiter, err := ratelimit.NewLimiter(rateStore, cfg.RateLimit.Rules())
	if err != nil {
		return nil, errors.Join(err, a.close())
	}

	m := metrics.New(metrics.Config{ServiceName: serviceName, Environment: cfg.environment().String()})

	accounts := subscription.NewService(store, catalog, subscription.WithLogger(log))
	opts := api.Options{
		Config:          cfg.API,
		Logger:          log,
		Limiter:         limiter,
		Events:          subscription.NewSynchronizer(store, catalog, subscription.WithLogger(log)),
		Analyzer:        analysis.NewStubAnalyzer(nil),
		Quota:           accounts,
		Account:         accounts,
		Metrics:         m,
		ReadinessChecks: checks,
	}

	if cfg.Auth.Enabled() {
		verifier, err := auth.NewVerifier(ctx, cfg.Auth)
		if err != nil {
			return nil, errors.Join(err, a.close())
		}
		opts.Verifier = verifier
	} else {
		log.WarnContext(ctx, "CLERK_ISSUER not set, requests are anonymous and checkout is disabled")
	}

	if cfg.Checkout.Enabled() {
		svc, err := checkout.New(cfg.Checkout, catalog, checkout.WithLogger(log))
		if err != nil {
			return nil, errors.Join(err, a.close())
		}
		opts.Checkout = svc
	} else {
		log.WarnContext(ctx, "STRIPE_SECRET_KEY not set, checkout is disabled")
	}

	if cfg.API.ClerkWebhookSecret == "" {
		log.WarnContext(ctx, "CLERK_WEBHOOK_SECRET not set, Clerk deliveries answer 503")
	}
	if cfg.API.StripeWebhookSecret == "" {
		log.WarnContext(ctx, "STRIPE_WEBHOOK_SECRET not set, Stripe deliveries answer 500")
	}

	a.handler = api.Router(opts)
	log.InfoContext(ctx, "application wired",
		logger.Component("app"),
		slog.Bool("postgres", conns.pool != nil),
		slog.String("rate_limit_store", cfg.RateLimit.Store),
		slog.Int("plans", len(catalog.Plans())),
	)
	return a, nil
}

// run serves until ctx is cancelled.
func (a *app) run(ctx context.Context) error {
	srv := httpserver.NewFromConfig(a.cfg.HTTP, httpserver.WithLogger(a.log))
	return srv.Run(ctx, a.handler)
}

// close releases owned resources in reverse order.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
