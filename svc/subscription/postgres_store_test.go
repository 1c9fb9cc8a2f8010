package subscription_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefiredev-cloud/vortis/migrations"
	"github.com/thefiredev-cloud/vortis/pkg/pg"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

func postgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("PG_CONN_URL")
	if url == "" {
		t.Skip("PG_CONN_URL not set")
	}
	cfg := pg.Config{
		ConnectionString: url,
		MaxOpenConns:     4,
		MaxIdleConns:     1,
		RetryAttempts:    1,
		MigrationsTable:  "schema_migrations",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		t.Skipf("postgres unreachable: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(context.Background(), pool, migrations.FS, cfg, slog.New(slog.DiscardHandler)))
	return pool
}

func TestPostgresStore(t *testing.T) {
	t.Parallel()

	store := subscription.NewPostgresStore(postgresPool(t))
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	newSub := func(t *testing.T) subscription.Subscription {
		t.Helper()
		id := uuid.NewString()
		userID := "user_" + id
		t.Cleanup(func() { _ = store.DeleteUser(context.Background(), userID) })
		return subscription.Subscription{
			UserID:         userID,
			PlanName:       subscription.PlanStarter,
			Status:         subscription.StatusActive,
			CustomerID:     "cus_" + id,
			SubscriptionID: "sub_" + id,
			PriceID:        "price_starter",
			LastEventID:    "evt_1",
			LastEventAt:    &at,
		}
	}

	t.Run("older upsert is stale", func(t *testing.T) {
		t.Parallel()

		sub := newSub(t)
		saved, err := store.UpsertSubscription(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, sub.SubscriptionID, saved.SubscriptionID)

		older := sub
		earlier := at.Add(-time.Minute)
		older.LastEventAt = &earlier
		older.LastEventID = "evt_0"
		_, err = store.UpsertSubscription(ctx, older)
		require.ErrorIs(t, err, subscription.ErrStaleEvent)

		same := sub
		same.PlanName = subscription.PlanPro
		saved, err = store.UpsertSubscription(ctx, same)
		require.NoError(t, err)
		assert.Equal(t, subscription.PlanPro, saved.PlanName)

		got, err := store.GetSubscriptionByUser(ctx, sub.UserID)
		require.NoError(t, err)
		assert.Equal(t, subscription.PlanPro, got.PlanName)
	})

	t.Run("update distinguishes missing from stale", func(t *testing.T) {
		t.Parallel()

		sub := newSub(t)
		err := store.UpdateSubscription(ctx, sub)
		require.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)

		_, err = store.UpsertSubscription(ctx, sub)
		require.NoError(t, err)

		older := sub
		earlier := at.Add(-time.Minute)
		older.LastEventAt = &earlier
		older.Status = subscription.StatusPastDue
		require.ErrorIs(t, store.UpdateSubscription(ctx, older), subscription.ErrStaleEvent)

		newer := sub
		later := at.Add(time.Minute)
		newer.LastEventAt = &later
		newer.Status = subscription.StatusPastDue
		require.NoError(t, store.UpdateSubscription(ctx, newer))

		got, err := store.GetSubscription(ctx, sub.SubscriptionID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusPastDue, got.Status)
	})

	t.Run("zero length period is accepted", func(t *testing.T) {
		t.Parallel()

		sub := newSub(t)
		_, err := store.UpsertSubscription(ctx, sub)
		require.NoError(t, err)

		later := at.Add(time.Minute)
		sub.LastEventAt = &later
		sub.CurrentPeriodStart = &later
		sub.CurrentPeriodEnd = &later
		require.NoError(t, store.UpdateSubscription(ctx, sub))

		got, err := store.GetSubscription(ctx, sub.SubscriptionID)
		require.NoError(t, err)
		require.NotNil(t, got.CurrentPeriodEnd)
		assert.True(t, got.CurrentPeriodEnd.Equal(later))
	})

	t.Run("consume analysis stops at the limit", func(t *testing.T) {
		t.Parallel()

		sub := newSub(t)
		_, err := store.ConsumeAnalysis(ctx, sub.UserID, at)
		require.ErrorIs(t, err, subscription.ErrUsageNotFound)

		require.NoError(t, store.UpsertUsage(ctx, subscription.Usage{
			UserID:        sub.UserID,
			PlanName:      subscription.PlanStarter,
			AnalysesLimit: 2,
			PeriodStart:   at,
			PeriodEnd:     at.Add(subscription.UsagePeriod),
		}))

		for want := int64(1); want <= 2; want++ {
			u, err := store.ConsumeAnalysis(ctx, sub.UserID, at.Add(time.Hour))
			require.NoError(t, err)
			assert.Equal(t, want, u.AnalysesUsed)
		}

		u, err := store.ConsumeAnalysis(ctx, sub.UserID, at.Add(time.Hour))
		require.ErrorIs(t, err, subscription.ErrQuotaExceeded)
		assert.Equal(t, int64(2), u.AnalysesUsed)

		stored, err := store.GetUsage(ctx, sub.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.AnalysesUsed)
	})

	t.Run("delete user removes every row", func(t *testing.T) {
		t.Parallel()

		sub := newSub(t)
		require.NoError(t, store.UpsertProfile(ctx, subscription.Profile{ID: sub.UserID, Email: "a@example.com"}))
		_, err := store.UpsertSubscription(ctx, sub)
		require.NoError(t, err)
		require.NoError(t, store.UpsertUsage(ctx, subscription.Usage{
			UserID:        sub.UserID,
			PlanName:      subscription.PlanStarter,
			AnalysesLimit: 100,
			PeriodStart:   at,
			PeriodEnd:     at.Add(subscription.UsagePeriod),
		}))

		require.NoError(t, store.DeleteUser(ctx, sub.UserID))

		_, err = store.GetSubscription(ctx, sub.SubscriptionID)
		require.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
		_, err = store.GetUsage(ctx, sub.UserID)
		require.ErrorIs(t, err, subscription.ErrUsageNotFound)
	})
}
