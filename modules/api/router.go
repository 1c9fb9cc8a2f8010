package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thefiredev-cloud/vortis/handler"
	"github.com/thefiredev-cloud/vortis/pkg/binder"
	"github.com/thefiredev-cloud/vortis/pkg/clientip"
	"github.com/thefiredev-cloud/vortis/pkg/httpserver"
	"github.com/thefiredev-cloud/vortis/pkg/logger"
	"github.com/thefiredev-cloud/vortis/pkg/metrics"
	"github.com/thefiredev-cloud/vortis/pkg/ratelimit"
	"github.com/thefiredev-cloud/vortis/pkg/requestid"
	"github.com/thefiredev-cloud/vortis/pkg/webhook"
	"github.com/thefiredev-cloud/vortis/svc/analysis"
	"github.com/thefiredev-cloud/vortis/svc/auth"
	"github.com/thefiredev-cloud/vortis/svc/checkout"
	"github.com/thefiredev-cloud/vortis/svc/events"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

// Config holds the endpoint secrets and limits.
type Config struct {
	ClerkWebhookSecret  string        `env:"CLERK_WEBHOOK_SECRET"`
	StripeWebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET"`
	WebhookTolerance    time.Duration `env:"WEBHOOK_TOLERANCE" envDefault:"5m"`
	MaxBodySize         int64         `env:"API_MAX_BODY_SIZE" envDefault:"1048576"`
}

// QuotaService charges one analysis against a user's plan.
type QuotaService interface {
	ConsumeAnalysis(ctx context.Context, userID string) (*subscription.Usage, error)
}

// EventApplier applies a normalized provider event to local state.
type EventApplier interface {
	Apply(ctx context.Context, ev events.Event) (subscription.Result, error)
}

// AccountService reads plans, subscriptions and usage for the signed-in user.
type AccountService interface {
	Subscription(ctx context.Context, userID string) (subscription.Subscription, error)
	Usage(ctx context.Context, userID string) (subscription.Usage, error)
	Plan(id string) (subscription.Plan, error)
	Plans() []subscription.Plan
}

// SessionCreator opens checkout sessions.
type SessionCreator interface {
	CreateSession(ctx context.Context, req checkout.Request) (checkout.Session, error)
}

// Options wires the router. Limiter and Events are required.
type Options struct {
	Config   Config
	Logger   *slog.Logger
	Limiter  *ratelimit.Limiter
	Events   EventApplier
	Analyzer analysis.Analyzer

	// Verifier authenticates session tokens. Without it analyze is
	// anonymous and checkout always answers 401.
	Verifier auth.TokenVerifier
	// Quota is skipped when nil.
	Quota QuotaService
	// Checkout answers 500 when nil.
	Checkout SessionCreator
	// Account leaves the plan and subscription routes unmounted when nil.
	Account AccountService
	// Metrics disables /metrics and instrumentation when nil.
	Metrics *metrics.Metrics

	ReadinessChecks []httpserver.Check
	Now             func() time.Time
}

type api struct {
	cfg      Config
	log      *slog.Logger
	events   EventApplier
	analyzer analysis.Analyzer
	quota    QuotaService
	checkout SessionCreator
	account  AccountService
	metrics  *metrics.Metrics
	now      func() time.Time

	errorHandler handler.ErrorHandler[handler.Context]
}

// Router builds the HTTP surface.
func Router(opts Options) chi.Router {
	if opts.Limiter == nil {
		panic("api.Router: limiter is required")
	}
	if opts.Events == nil {
		panic("api.Router: event applier is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Analyzer == nil {
		opts.Analyzer = analysis.NewStubAnalyzer(opts.Now)
	}
	if opts.Config.MaxBodySize <= 0 {
		opts.Config.MaxBodySize = binder.DefaultMaxJSONSize
	}

	log := opts.Logger.With(logger.Component("api"))
	a := &api{
		cfg:          opts.Config,
		log:          log,
		events:       opts.Events,
		analyzer:     opts.Analyzer,
		quota:        opts.Quota,
		checkout:     opts.Checkout,
		account:      opts.Account,
		metrics:      opts.Metrics,
		now:          opts.Now,
		errorHandler: handler.NewErrorHandler(opts.Logger, handler.WithClassifiers(classify)),
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, opts.ReadinessChecks...))

	limitOpts := []ratelimit.MiddlewareOption{ratelimit.WithLogger(log)}
	if opts.Metrics != nil {
		limitOpts = append(limitOpts, ratelimit.WithObserver(func(p ratelimit.Preset, allowed bool) {
			opts.Metrics.ObserveRateLimit(string(p), allowed)
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.Verifier != nil {
				r.Use(auth.OptionalMiddleware(opts.Verifier, log))
			}
			r.Use(ratelimit.Middleware(opts.Limiter, ratelimit.PresetAnalyze, ratelimit.UserOrIP(auth.RequestUserID), limitOpts...))
			r.Post("/analyze", handler.Wrap[handler.Context, analyzeRequest](a.analyze,
				handler.WithBinder[handler.Context, analyzeRequest](binder.JSON(binder.WithMaxSize(a.cfg.MaxBodySize))),
				handler.WithErrorHandler[handler.Context, analyzeRequest](a.errorHandler),
			))
		})

		r.Group(func(r chi.Router) {
			if opts.Verifier != nil {
				r.Use(auth.Middleware(opts.Verifier, log))
			}
			r.Post("/stripe/checkout", handler.Wrap[handler.Context, checkoutRequest](a.createCheckout,
				handler.WithBinder[handler.Context, checkoutRequest](binder.JSON(binder.WithMaxSize(a.cfg.MaxBodySize))),
				handler.WithErrorHandler[handler.Context, checkoutRequest](a.errorHandler),
			))
			if a.account != nil {
				r.Get("/subscription", handler.Wrap[handler.Context, struct{}](a.currentSubscription,
					handler.WithErrorHandler[handler.Context, struct{}](a.errorHandler),
				))
			}
		})

		if a.account != nil {
			r.Get("/plans", handler.Wrap[handler.Context, struct{}](a.listPlans,
				handler.WithErrorHandler[handler.Context, struct{}](a.errorHandler),
			))
		}

		r.Post("/stripe/webhook", handler.Wrap[handler.Context, struct{}](a.stripeWebhook,
			handler.WithErrorHandler[handler.Context, struct{}](a.errorHandler),
		))

		r.With(ratelimit.Middleware(opts.Limiter, ratelimit.PresetWebhook, ratelimit.IP(), limitOpts...)).
			Post("/webhooks/clerk", handler.Wrap[handler.Context, struct{}](a.clerkWebhook,
				handler.WithErrorHandler[handler.Context, struct{}](a.errorHandler),
			))
	})

	return r
}

// verifyOptions applies the configured tolerance against the router clock.
func (a *api) verifyOptions() []webhook.Option {
	return []webhook.Option{
		webhook.WithTolerance(a.cfg.WebhookTolerance),
		webhook.WithNow(a.now),
	}
}
