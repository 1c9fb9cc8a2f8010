package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

func TestServiceConsumeAnalysis(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	newService := func(t *testing.T) (*subscription.MemoryStore, *subscription.Service) {
		t.Helper()
		store := subscription.NewMemoryStore()
		svc := subscription.NewService(store, newCatalog(t),
			subscription.WithClock(func() time.Time { return testNow }),
		)
		return store, svc
	}

	t.Run("untracked users pass", func(t *testing.T) {
		t.Parallel()

		_, svc := newService(t)
		u, err := svc.ConsumeAnalysis(ctx, "anonymous")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("starter plan stops at 100", func(t *testing.T) {
		t.Parallel()

		store, svc := newService(t)
		apply(t, newSynchronizer(t, store), checkout("evt_1", testNow))

		for range 100 {
			_, err := svc.ConsumeAnalysis(ctx, "user_1")
			require.NoError(t, err)
		}

		u, err := svc.ConsumeAnalysis(ctx, "user_1")
		require.ErrorIs(t, err, subscription.ErrQuotaExceeded)
		require.NotNil(t, u)
		assert.Equal(t, int64(100), u.AnalysesUsed)
		assert.Equal(t, subscription.UsagePeriod, u.ResetIn(testNow))
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		t.Parallel()

		svc := subscription.NewService(&brokenUsageStore{MemoryStore: subscription.NewMemoryStore()}, newCatalog(t))
		_, err := svc.ConsumeAnalysis(ctx, "user_1")
		require.ErrorIs(t, err, errStore)
	})

	t.Run("lookups", func(t *testing.T) {
		t.Parallel()

		store, svc := newService(t)
		apply(t, newSynchronizer(t, store), checkout("evt_1", testNow))

		sub, err := svc.Subscription(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, "sub_1", sub.SubscriptionID)
		assert.True(t, sub.IsActive())

		usage, err := svc.Usage(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, int64(100), usage.Remaining())

		plan, err := svc.Plan(subscription.PlanPro)
		require.NoError(t, err)
		assert.Equal(t, "price_pro", plan.PriceID)
		assert.Len(t, svc.Plans(), 3)
	})
}

type brokenUsageStore struct {
	*subscription.MemoryStore
}

func (brokenUsageStore) ConsumeAnalysis(context.Context, string, time.Time) (subscription.Usage, error) {
	return subscription.Usage{}, errStore
}
