package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

func TestMemoryStoreConsumeAnalysis(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		_, err := subscription.NewMemoryStore().ConsumeAnalysis(ctx, "nobody", start)
		require.ErrorIs(t, err, subscription.ErrUsageNotFound)
	})

	t.Run("counts up to the limit", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		require.NoError(t, store.UpsertUsage(ctx, subscription.Usage{
			UserID:        "user_1",
			AnalysesLimit: 2,
			PeriodStart:   start,
			PeriodEnd:     start.Add(subscription.UsagePeriod),
		}))

		for i := int64(1); i <= 2; i++ {
			u, err := store.ConsumeAnalysis(ctx, "user_1", start.Add(time.Minute))
			require.NoError(t, err)
			assert.Equal(t, i, u.AnalysesUsed)
		}

		u, err := store.ConsumeAnalysis(ctx, "user_1", start.Add(time.Minute))
		require.ErrorIs(t, err, subscription.ErrQuotaExceeded)
		assert.Equal(t, int64(2), u.AnalysesUsed)
	})

	t.Run("rolls over expired periods", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		require.NoError(t, store.UpsertUsage(ctx, subscription.Usage{
			UserID:        "user_1",
			AnalysesUsed:  2,
			AnalysesLimit: 2,
			PeriodStart:   start,
			PeriodEnd:     start.Add(subscription.UsagePeriod),
		}))

		now := start.Add(2*subscription.UsagePeriod + time.Hour)
		u, err := store.ConsumeAnalysis(ctx, "user_1", now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.AnalysesUsed)
		assert.Equal(t, start.Add(2*subscription.UsagePeriod), u.PeriodStart)
		assert.Equal(t, start.Add(3*subscription.UsagePeriod), u.PeriodEnd)
	})

	t.Run("unlimited never exhausts", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		require.NoError(t, store.UpsertUsage(ctx, subscription.Usage{
			UserID:        "user_1",
			AnalysesUsed:  1_000_000,
			AnalysesLimit: subscription.Unlimited,
			PeriodStart:   start,
			PeriodEnd:     start.Add(subscription.UsagePeriod),
		}))

		u, err := store.ConsumeAnalysis(ctx, "user_1", start)
		require.NoError(t, err)
		assert.Equal(t, int64(1_000_001), u.AnalysesUsed)
	})
}

func TestMemoryStoreSubscriptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	t.Run("upsert keeps identity", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		first, err := store.UpsertSubscription(ctx, subscription.Subscription{
			UserID: "user_1", SubscriptionID: "sub_1", Status: subscription.StatusActive, LastEventAt: &t0,
		})
		require.NoError(t, err)

		second, err := store.UpsertSubscription(ctx, subscription.Subscription{
			UserID: "user_1", SubscriptionID: "sub_1", Status: subscription.StatusActive, LastEventAt: &t1,
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
	})

	t.Run("older writes are stale", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		_, err := store.UpsertSubscription(ctx, subscription.Subscription{SubscriptionID: "sub_1", LastEventAt: &t1})
		require.NoError(t, err)

		_, err = store.UpsertSubscription(ctx, subscription.Subscription{SubscriptionID: "sub_1", LastEventAt: &t0})
		require.ErrorIs(t, err, subscription.ErrStaleEvent)

		err = store.UpdateSubscription(ctx, subscription.Subscription{SubscriptionID: "sub_1", LastEventAt: &t0})
		require.ErrorIs(t, err, subscription.ErrStaleEvent)

		err = store.UpdateSubscription(ctx, subscription.Subscription{SubscriptionID: "sub_2"})
		require.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})

	t.Run("delete user cascades", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		require.NoError(t, store.UpsertProfile(ctx, subscription.Profile{ID: "user_1"}))
		_, err := store.UpsertSubscription(ctx, subscription.Subscription{UserID: "user_1", SubscriptionID: "sub_1"})
		require.NoError(t, err)
		_, err = store.UpsertSubscription(ctx, subscription.Subscription{UserID: "user_2", SubscriptionID: "sub_2"})
		require.NoError(t, err)
		require.NoError(t, store.UpsertUsage(ctx, subscription.Usage{UserID: "user_1"}))

		require.NoError(t, store.DeleteUser(ctx, "user_1"))

		_, ok := store.GetProfile("user_1")
		assert.False(t, ok)
		_, err = store.GetSubscription(ctx, "sub_1")
		require.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
		_, err = store.GetUsage(ctx, "user_1")
		require.ErrorIs(t, err, subscription.ErrUsageNotFound)
		_, err = store.GetSubscription(ctx, "sub_2")
		require.NoError(t, err)
	})
}
