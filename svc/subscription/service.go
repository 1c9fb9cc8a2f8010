package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thefiredev-cloud/vortis/pkg/logger"
)

// Service answers plan and quota questions for request handlers.
type Service struct {
	store   Store
	catalog *Catalog
	log     *slog.Logger
	now     func() time.Time
}

// NewService creates a Service.
func NewService(store Store, catalog *Catalog, opts ...Option) *Service {
	o := newOptions(opts)
	return &Service{
		store:   store,
		catalog: catalog,
		log:     o.log.With(logger.Component("subscription")),
		now:     o.now,
	}
}

// ConsumeAnalysis counts one analysis for the user. Users without a usage
// row are not tracked and get a nil Usage. When the allowance is used up it
// returns the current usage together with ErrQuotaExceeded.
func (s *Service) ConsumeAnalysis(ctx context.Context, userID string) (*Usage, error) {
	u, err := s.store.ConsumeAnalysis(ctx, userID, s.now().UTC())
	switch {
	case errors.Is(err, ErrUsageNotFound):
		return nil, nil
	case errors.Is(err, ErrQuotaExceeded):
		s.log.WarnContext(ctx, "analysis quota exceeded",
			logger.UserID(userID),
			slog.String("plan", u.PlanName),
			slog.Int64("limit", u.AnalysesLimit),
		)
		return &u, ErrQuotaExceeded
	case err != nil:
		return nil, fmt.Errorf("consume analysis: %w", err)
	}
	return &u, nil
}

// Usage returns the user's usage row.
func (s *Service) Usage(ctx context.Context, userID string) (Usage, error) {
	return s.store.GetUsage(ctx, userID)
}

// Subscription returns the user's most recent subscription.
func (s *Service) Subscription(ctx context.Context, userID string) (Subscription, error) {
	return s.store.GetSubscriptionByUser(ctx, userID)
}

// Plan returns a catalog plan.
func (s *Service) Plan(id string) (Plan, error) {
	return s.catalog.Plan(id)
}

// Plans lists the catalog.
func (s *Service) Plans() []Plan {
	return s.catalog.Plans()
}
