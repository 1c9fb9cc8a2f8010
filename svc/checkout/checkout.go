// Package checkout starts Stripe Checkout sessions for plan subscriptions.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/thefiredev-cloud/vortis/pkg/logger"
	"github.com/thefiredev-cloud/vortis/svc/events"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

// Request is a checkout for one user and plan. Email, when known, is used to
// reuse the user's Stripe customer.
type Request struct {
	UserID   string
	Email    string
	PlanName string
}

// Session is the created checkout session.
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// Service creates checkout sessions.
type Service struct {
	api     *client.API
	catalog *subscription.Catalog
	cfg     Config
	log     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Service with its own Stripe client.
func New(cfg Config, catalog *subscription.Catalog, opts ...Option) (*Service, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	var backends *stripe.Backends
	if cfg.APIURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(cfg.APIURL),
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}

	s := &Service{
		api:     client.New(cfg.SecretKey, backends),
		catalog: catalog,
		cfg:     cfg,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("checkout"))
	return s, nil
}

// CreateSession starts a subscription checkout for req.
func (s *Service) CreateSession(ctx context.Context, req Request) (Session, error) {
	if req.UserID == "" {
		return Session{}, ErrMissingUser
	}
	plan, err := s.catalog.Plan(req.PlanName)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %q", ErrUnknownPlan, req.PlanName)
	}
	if plan.PriceID == "" {
		return Session{}, fmt.Errorf("%w: %q", ErrPlanNotForSale, plan.ID)
	}

	metadata := map[string]string{
		events.MetadataUserID:   req.UserID,
		events.MetadataPlanName: plan.ID,
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(req.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	if req.Email != "" {
		customerID, err := s.ensureCustomer(ctx, req)
		if err != nil {
			return Session{}, err
		}
		params.Customer = stripe.String(customerID)
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		s.log.ErrorContext(ctx, "stripe checkout session failed", logger.UserID(req.UserID), logger.Error(err))
		return Session{}, errors.Join(ErrProvider, err)
	}
	if sess.URL == "" {
		return Session{}, ErrMissingSessionURL
	}

	s.log.InfoContext(ctx, "checkout session created",
		logger.UserID(req.UserID),
		slog.String("plan", plan.ID),
		slog.String("session_id", sess.ID),
	)
	return Session{ID: sess.ID, URL: sess.URL}, nil
}

// ensureCustomer returns the customer with req.Email, creating it when absent.
func (s *Service) ensureCustomer(ctx context.Context, req Request) (string, error) {
	list := &stripe.CustomerListParams{Email: stripe.String(req.Email)}
	list.Context = ctx
	list.Limit = stripe.Int64(1)

	iter := s.api.Customers.List(list)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		s.log.ErrorContext(ctx, "stripe customer lookup failed", logger.UserID(req.UserID), logger.Error(err))
		return "", errors.Join(ErrProvider, err)
	}

	params := &stripe.CustomerParams{Email: stripe.String(req.Email)}
	params.Context = ctx
	params.AddMetadata(events.MetadataUserID, req.UserID)

	c, err := s.api.Customers.New(params)
	if err != nil {
		s.log.ErrorContext(ctx, "stripe customer create failed", logger.UserID(req.UserID), logger.Error(err))
		return "", errors.Join(ErrProvider, err)
	}
	return c.ID, nil
}
