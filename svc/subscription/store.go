package subscription

import (
	"context"
	"time"
)

// Store persists subscriptions, usage and profiles. Writes are single-row
// upserts or updates keyed by provider ids.
type Store interface {
	// GetSubscription returns ErrSubscriptionNotFound for an unknown id.
	GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error)
	// GetSubscriptionByUser returns the most recently updated subscription.
	GetSubscriptionByUser(ctx context.Context, userID string) (Subscription, error)
	// UpsertSubscription inserts or replaces the row with the same
	// SubscriptionID. It returns ErrStaleEvent when the stored row has seen a
	// newer event.
	UpsertSubscription(ctx context.Context, sub Subscription) (Subscription, error)
	// UpdateSubscription overwrites an existing row. It returns
	// ErrSubscriptionNotFound or ErrStaleEvent.
	UpdateSubscription(ctx context.Context, sub Subscription) error

	// GetUsage returns ErrUsageNotFound for users without a usage row.
	GetUsage(ctx context.Context, userID string) (Usage, error)
	UpsertUsage(ctx context.Context, usage Usage) error
	// ConsumeAnalysis rolls an expired period forward, then counts one
	// analysis if the limit allows. It returns the resulting usage, with
	// ErrQuotaExceeded when the limit is reached.
	ConsumeAnalysis(ctx context.Context, userID string, now time.Time) (Usage, error)

	UpsertProfile(ctx context.Context, p Profile) error
	// DeleteUser removes the profile and every subscription and usage row
	// of the user.
	DeleteUser(ctx context.Context, userID string) error
}
