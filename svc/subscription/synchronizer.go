package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thefiredev-cloud/vortis/pkg/logger"
	"github.com/thefiredev-cloud/vortis/pkg/statemachine"
	"github.com/thefiredev-cloud/vortis/svc/events"
)

type trigger string

const (
	triggerCheckout       trigger = "checkout_completed"
	triggerUpdated        trigger = "subscription_updated"
	triggerDeleted        trigger = "subscription_deleted"
	triggerPaymentSuccess trigger = "payment_succeeded"
	triggerPaymentFailure trigger = "payment_failed"
)

// change is the data handed to guards and target functions.
type change struct {
	current *Subscription
	at      time.Time
	target  Status
}

func inOrder(_ context.Context, _ Status, _ trigger, data any) bool {
	c, ok := data.(change)
	return ok && (c.current == nil || c.current.accepts(c.at))
}

func providerTarget(data any) Status {
	return data.(change).target
}

// newStatusMachine builds the transition table. The empty status stands for
// a subscription that is not stored yet. Canceled only leaves through a new
// checkout.
func newStatusMachine() *statemachine.Machine[Status, trigger] {
	live := []Status{StatusActive, StatusTrialing, StatusPastDue, StatusIncomplete}
	withCanceled := []Status{StatusActive, StatusTrialing, StatusPastDue, StatusIncomplete, StatusCanceled}
	all := []Status{"", StatusActive, StatusTrialing, StatusPastDue, StatusIncomplete, StatusCanceled}

	return statemachine.NewBuilder[Status, trigger]().
		From(all...).When(triggerCheckout).To(StatusActive).WithGuard(inOrder).Add().
		From(live...).When(triggerUpdated).ToFunc(providerTarget).WithGuard(inOrder).Add().
		From(withCanceled...).When(triggerDeleted).To(StatusCanceled).WithGuard(inOrder).Add().
		From(live...).When(triggerPaymentSuccess).To(StatusActive).WithGuard(inOrder).Add().
		From(live...).When(triggerPaymentFailure).To(StatusPastDue).WithGuard(inOrder).Add().
		MustBuild()
}

// Synchronizer applies provider events to stored state.
type Synchronizer struct {
	store   Store
	catalog *Catalog
	machine *statemachine.Machine[Status, trigger]
	log     *slog.Logger
	now     func() time.Time
}

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer(store Store, catalog *Catalog, opts ...Option) *Synchronizer {
	o := newOptions(opts)
	return &Synchronizer{
		store:   store,
		catalog: catalog,
		machine: newStatusMachine(),
		log:     o.log.With(logger.Component("subscription-sync")),
		now:     o.now,
	}
}

// Apply applies one event. Store failures are returned so the provider
// retries; everything else is an Ok or a Skip.
func (s *Synchronizer) Apply(ctx context.Context, ev events.Event) (Result, error) {
	meta := ev.Metadata()
	log := s.log.With(
		logger.Provider(string(meta.Provider)),
		logger.EventType(meta.Type),
		logger.EventID(meta.EventID),
	)

	res, err := s.apply(ctx, log, ev)
	if err != nil {
		log.ErrorContext(ctx, "failed to apply event", logger.Error(err))
		return nil, err
	}

	switch r := res.(type) {
	case Ok:
		log.InfoContext(ctx, "event applied", slog.String("action", r.Action))
	case Skip:
		if dataQuality[r.Reason] {
			log.WarnContext(ctx, "event skipped", logger.Reason(r.Reason))
		} else {
			log.InfoContext(ctx, "event skipped", logger.Reason(r.Reason))
		}
	}
	return res, nil
}

func (s *Synchronizer) apply(ctx context.Context, log *slog.Logger, ev events.Event) (Result, error) {
	switch e := ev.(type) {
	case events.UserCreated:
		return s.upsertProfile(ctx, e.Profile)
	case events.UserUpdated:
		return s.upsertProfile(ctx, e.Profile)
	case events.UserDeleted:
		if err := s.store.DeleteUser(ctx, e.UserID); err != nil {
			return nil, err
		}
		return Ok{Action: ActionUserDeleted}, nil
	case events.CheckoutCompleted:
		return s.checkoutCompleted(ctx, log, e)
	case events.SubscriptionUpdated:
		return s.subscriptionUpdated(ctx, e)
	case events.SubscriptionDeleted:
		return s.setStatus(ctx, e.Meta, e.SubscriptionID, triggerDeleted, "", ActionSubscriptionCanceled, nil)
	case events.InvoicePaymentSucceeded:
		return s.paymentSucceeded(ctx, e)
	case events.InvoicePaymentFailed:
		return s.setStatus(ctx, e.Meta, e.SubscriptionID, triggerPaymentFailure, "", ActionPaymentFailed, nil)
	}
	return Skip{Reason: ReasonUnhandledEvent}, nil
}

func (s *Synchronizer) upsertProfile(ctx context.Context, p events.Profile) (Result, error) {
	err := s.store.UpsertProfile(ctx, Profile{
		ID:         p.ID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		AvatarURL:  p.AvatarURL,
		Username:   p.Username,
		ExternalID: p.ExternalID,
	})
	if err != nil {
		return nil, err
	}
	return Ok{Action: ActionProfileUpserted}, nil
}

func (s *Synchronizer) checkoutCompleted(ctx context.Context, log *slog.Logger, e events.CheckoutCompleted) (Result, error) {
	if e.UserID == "" || e.PlanName == "" || e.SubscriptionID == "" {
		log.WarnContext(ctx, "checkout session without correlation metadata",
			logger.UserID(e.UserID),
			slog.String("plan", e.PlanName),
			logger.SubscriptionID(e.SubscriptionID),
		)
		return Skip{Reason: ReasonMissingCorrelation}, nil
	}
	plan, err := s.catalog.Plan(e.PlanName)
	if err != nil {
		return Skip{Reason: ReasonUnknownPlan}, nil
	}

	current, err := s.lookup(ctx, e.SubscriptionID)
	if err != nil {
		return nil, err
	}
	status, skip := s.next(ctx, current, triggerCheckout, e.Meta, "")
	if skip != nil {
		if err := s.repairUsage(ctx, log, current, e); err != nil {
			return nil, err
		}
		return skip, nil
	}

	sub := Subscription{
		UserID:         e.UserID,
		PlanName:       plan.ID,
		Status:         status,
		CustomerID:     e.CustomerID,
		SubscriptionID: e.SubscriptionID,
		PriceID:        e.PriceID,
		LastEventID:    e.EventID,
		LastEventAt:    timePtr(e.OccurredAt),
	}
	if sub.PriceID == "" {
		sub.PriceID = plan.PriceID
	}
	replay := false
	if current != nil {
		sub.CurrentPeriodStart = current.CurrentPeriodStart
		sub.CurrentPeriodEnd = current.CurrentPeriodEnd
		sub.CancelAtPeriodEnd = current.CancelAtPeriodEnd
		if sub.CustomerID == "" {
			sub.CustomerID = current.CustomerID
		}
		replay = e.EventID != "" && current.LastEventID == e.EventID
	}

	if _, err := s.store.UpsertSubscription(ctx, sub); err != nil {
		if errors.Is(err, ErrStaleEvent) {
			if err := s.repairUsage(ctx, log, current, e); err != nil {
				return nil, err
			}
			return Skip{Reason: ReasonStaleEvent}, nil
		}
		return nil, fmt.Errorf("save subscription: %w", err)
	}

	// A redelivered checkout only repairs a missing usage row so analyses
	// counted since the first delivery are kept.
	if replay {
		if _, err := s.ensureUsage(ctx, log, e.UserID, e.SubscriptionID, plan); err != nil {
			return nil, err
		}
		return Ok{Action: ActionSubscriptionCreated}, nil
	}

	if err := s.initUsage(ctx, log, e.UserID, e.SubscriptionID, plan); err != nil {
		return nil, err
	}
	return Ok{Action: ActionSubscriptionCreated}, nil
}

// repairUsage creates the missing usage row of a subscription whose checkout
// was already applied when a redelivery is skipped by the ordering guard.
// The stored row decides the plan since later updates may have changed it.
func (s *Synchronizer) repairUsage(ctx context.Context, log *slog.Logger, current *Subscription, e events.CheckoutCompleted) error {
	if current == nil || current.SubscriptionID != e.SubscriptionID || current.UserID != e.UserID {
		return nil
	}
	plan, err := s.catalog.Plan(current.PlanName)
	if err != nil {
		if plan, err = s.catalog.Plan(e.PlanName); err != nil {
			return nil
		}
	}
	repaired, err := s.ensureUsage(ctx, log, e.UserID, e.SubscriptionID, plan)
	if err != nil {
		return err
	}
	if repaired {
		log.InfoContext(ctx, "usage repaired on checkout redelivery",
			logger.UserID(e.UserID),
			logger.SubscriptionID(e.SubscriptionID),
		)
	}
	return nil
}

// ensureUsage initializes usage only when none is stored and reports whether
// it did.
func (s *Synchronizer) ensureUsage(ctx context.Context, log *slog.Logger, userID, subscriptionID string, plan Plan) (bool, error) {
	_, err := s.store.GetUsage(ctx, userID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrUsageNotFound) {
		return false, fmt.Errorf("load usage: %w", err)
	}
	if err := s.initUsage(ctx, log, userID, subscriptionID, plan); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Synchronizer) initUsage(ctx context.Context, log *slog.Logger, userID, subscriptionID string, plan Plan) error {
	now := s.now().UTC()
	usage := Usage{
		UserID:        userID,
		PlanName:      plan.ID,
		AnalysesLimit: plan.Limit(ResourceAnalyses),
		PeriodStart:   now,
		PeriodEnd:     now.Add(UsagePeriod),
	}
	if err := s.store.UpsertUsage(ctx, usage); err != nil {
		log.ErrorContext(ctx, "usage not initialized after subscription upsert",
			logger.UserID(userID),
			logger.SubscriptionID(subscriptionID),
			logger.Error(err),
		)
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

func (s *Synchronizer) subscriptionUpdated(ctx context.Context, e events.SubscriptionUpdated) (Result, error) {
	target, ok := ParseProviderStatus(e.Status)
	if !ok {
		return Skip{Reason: ReasonUnknownStatus}, nil
	}

	var (
		userID  string
		newPlan *Plan
	)
	res, err := s.setStatus(ctx, e.Meta, e.SubscriptionID, triggerUpdated, target, ActionSubscriptionUpdated, func(sub *Subscription) bool {
		userID = sub.UserID
		if !e.PeriodStart.IsZero() {
			sub.CurrentPeriodStart = timePtr(e.PeriodStart)
		}
		if !e.PeriodEnd.IsZero() {
			sub.CurrentPeriodEnd = timePtr(e.PeriodEnd)
		}
		sub.CancelAtPeriodEnd = e.CancelAtPeriodEnd
		if e.CustomerID != "" {
			sub.CustomerID = e.CustomerID
		}
		if e.PriceID != "" && e.PriceID != sub.PriceID {
			sub.PriceID = e.PriceID
			if plan, ok := s.catalog.PlanByPriceID(e.PriceID); ok && plan.ID != sub.PlanName {
				sub.PlanName = plan.ID
				newPlan = &plan
			}
		}
		return sub.validPeriod()
	})
	if err != nil || newPlan == nil {
		return res, err
	}
	if _, ok := res.(Ok); !ok {
		return res, nil
	}

	if err := s.updateUsage(ctx, userID, func(u *Usage) {
		u.PlanName = newPlan.ID
		u.AnalysesLimit = newPlan.Limit(ResourceAnalyses)
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Synchronizer) paymentSucceeded(ctx context.Context, e events.InvoicePaymentSucceeded) (Result, error) {
	periodKnown := !e.PeriodStart.IsZero() && !e.PeriodEnd.Before(e.PeriodStart)

	var userID string
	res, err := s.setStatus(ctx, e.Meta, e.SubscriptionID, triggerPaymentSuccess, "", ActionPaymentRecorded, func(sub *Subscription) bool {
		userID = sub.UserID
		if periodKnown && e.PeriodEnd.After(e.PeriodStart) {
			sub.CurrentPeriodStart = timePtr(e.PeriodStart)
			sub.CurrentPeriodEnd = timePtr(e.PeriodEnd)
		}
		return true
	})
	if err != nil || !periodKnown {
		return res, err
	}
	if _, ok := res.(Ok); !ok {
		return res, nil
	}

	// Paid invoices for a new period reset the allowance.
	if err := s.updateUsage(ctx, userID, func(u *Usage) {
		if e.PeriodStart.Before(u.PeriodEnd) {
			return
		}
		u.AnalysesUsed = 0
		u.PeriodStart = e.PeriodStart.UTC()
		u.PeriodEnd = e.PeriodEnd.UTC()
		if !u.PeriodEnd.After(u.PeriodStart) {
			u.PeriodEnd = u.PeriodStart.Add(UsagePeriod)
		}
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// setStatus runs a status transition for a stored subscription. target is
// only used by transitions that take the provider's status. mutate may
// change other fields and returns false when the result is inconsistent.
func (s *Synchronizer) setStatus(
	ctx context.Context,
	meta events.Meta,
	subscriptionID string,
	trig trigger,
	target Status,
	action string,
	mutate func(*Subscription) bool,
) (Result, error) {
	if subscriptionID == "" {
		return Skip{Reason: ReasonMissingCorrelation}, nil
	}
	current, err := s.lookup(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return Skip{Reason: ReasonUnknownSubscription}, nil
	}

	status, skip := s.next(ctx, current, trig, meta, target)
	if skip != nil {
		return skip, nil
	}

	sub := *current
	sub.Status = status
	if mutate != nil && !mutate(&sub) {
		return Skip{Reason: ReasonInvalidPeriod}, nil
	}
	sub.LastEventID = meta.EventID
	if !meta.OccurredAt.IsZero() {
		sub.LastEventAt = timePtr(meta.OccurredAt)
	}

	switch err := s.store.UpdateSubscription(ctx, sub); {
	case errors.Is(err, ErrStaleEvent):
		return Skip{Reason: ReasonStaleEvent}, nil
	case errors.Is(err, ErrSubscriptionNotFound):
		return Skip{Reason: ReasonUnknownSubscription}, nil
	case err != nil:
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	return Ok{Action: action}, nil
}

// next evaluates the transition table. A nil Result means the move is
// allowed.
func (s *Synchronizer) next(ctx context.Context, current *Subscription, trig trigger, meta events.Meta, target Status) (Status, Result) {
	var from Status
	if current != nil {
		from = current.Status
	}
	to, err := s.machine.Next(ctx, from, trig, change{current: current, at: meta.OccurredAt, target: target})
	switch {
	case err == nil:
		return to, nil
	case statemachine.IsTransitionRejectedError(err):
		return "", Skip{Reason: ReasonStaleEvent}
	default:
		return "", Skip{Reason: ReasonTransitionNotAllowed}
	}
}

func (s *Synchronizer) lookup(ctx context.Context, subscriptionID string) (*Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, subscriptionID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	return &sub, nil
}

// updateUsage edits the user's usage row when it exists.
func (s *Synchronizer) updateUsage(ctx context.Context, userID string, fn func(*Usage)) error {
	u, err := s.store.GetUsage(ctx, userID)
	if errors.Is(err, ErrUsageNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load usage: %w", err)
	}
	fn(&u)
	if err := s.store.UpsertUsage(ctx, u); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
