package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thefiredev-cloud/vortis/pkg/pg"
)

// PostgresStore is the Store backed by the tables in migrations/.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const subscriptionColumns = `id, user_id, plan_name, status, customer_id, subscription_id, price_id,
	current_period_start, current_period_end, cancel_at_period_end,
	last_event_id, last_event_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (Subscription, error) {
	var (
		s      Subscription
		status string
	)
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.PlanName,
		&status,
		&s.CustomerID,
		&s.SubscriptionID,
		&s.PriceID,
		&s.CurrentPeriodStart,
		&s.CurrentPeriodEnd,
		&s.CancelAtPeriodEnd,
		&s.LastEventID,
		&s.LastEventAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	s.Status = Status(status)
	return s, err
}

func (r *PostgresStore) GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE subscription_id = $1`
	s, err := scanSubscription(r.db.QueryRow(ctx, q, subscriptionID))
	if pg.IsNotFoundError(err) {
		return Subscription{}, ErrSubscriptionNotFound
	}
	if err != nil {
		return Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return s, nil
}

func (r *PostgresStore) GetSubscriptionByUser(ctx context.Context, userID string) (Subscription, error) {
	const q = `SELECT ` + subscriptionColumns + `
	           FROM subscriptions
	           WHERE user_id = $1
	           ORDER BY updated_at DESC
	           LIMIT 1`
	s, err := scanSubscription(r.db.QueryRow(ctx, q, userID))
	if pg.IsNotFoundError(err) {
		return Subscription{}, ErrSubscriptionNotFound
	}
	if err != nil {
		return Subscription{}, fmt.Errorf("get subscription by user: %w", err)
	}
	return s, nil
}

func (r *PostgresStore) UpsertSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	const q = `
INSERT INTO subscriptions (id, user_id, plan_name, status, customer_id, subscription_id, price_id,
                           current_period_start, current_period_end, cancel_at_period_end,
                           last_event_id, last_event_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (subscription_id)
DO UPDATE SET user_id              = EXCLUDED.user_id,
              plan_name            = EXCLUDED.plan_name,
              status               = EXCLUDED.status,
              customer_id          = EXCLUDED.customer_id,
              price_id             = EXCLUDED.price_id,
              current_period_start = EXCLUDED.current_period_start,
              current_period_end   = EXCLUDED.current_period_end,
              cancel_at_period_end = EXCLUDED.cancel_at_period_end,
              last_event_id        = EXCLUDED.last_event_id,
              last_event_at        = EXCLUDED.last_event_at,
              updated_at           = NOW()
WHERE subscriptions.last_event_at IS NULL
   OR EXCLUDED.last_event_at IS NULL
   OR subscriptions.last_event_at <= EXCLUDED.last_event_at
RETURNING ` + subscriptionColumns

	row := r.db.QueryRow(ctx, q,
		uuid.New(),
		sub.UserID,
		sub.PlanName,
		string(sub.Status),
		sub.CustomerID,
		sub.SubscriptionID,
		sub.PriceID,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
		sub.LastEventID,
		sub.LastEventAt,
	)
	saved, err := scanSubscription(row)
	if pg.IsNotFoundError(err) {
		// The conflict update was filtered out by the event time guard.
		return Subscription{}, ErrStaleEvent
	}
	if err != nil {
		return Subscription{}, fmt.Errorf("upsert subscription: %w", err)
	}
	return saved, nil
}

func (r *PostgresStore) UpdateSubscription(ctx context.Context, sub Subscription) error {
	const q = `
UPDATE subscriptions
SET plan_name            = $2,
    status               = $3,
    customer_id          = $4,
    price_id             = $5,
    current_period_start = $6,
    current_period_end   = $7,
    cancel_at_period_end = $8,
    last_event_id        = $9,
    last_event_at        = $10,
    updated_at           = NOW()
WHERE subscription_id = $1
  AND (last_event_at IS NULL OR $10::timestamptz IS NULL OR last_event_at <= $10::timestamptz)
`
	tag, err := r.db.Exec(ctx, q,
		sub.SubscriptionID,
		sub.PlanName,
		string(sub.Status),
		sub.CustomerID,
		sub.PriceID,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
		sub.LastEventID,
		sub.LastEventAt,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscription_id = $1)`,
		sub.SubscriptionID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if !exists {
		return ErrSubscriptionNotFound
	}
	return ErrStaleEvent
}

const usageColumns = `user_id, plan_name, analyses_used, analyses_limit, period_start, period_end, updated_at`

func scanUsage(row pgx.Row) (Usage, error) {
	var u Usage
	err := row.Scan(
		&u.UserID,
		&u.PlanName,
		&u.AnalysesUsed,
		&u.AnalysesLimit,
		&u.PeriodStart,
		&u.PeriodEnd,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *PostgresStore) GetUsage(ctx context.Context, userID string) (Usage, error) {
	const q = `SELECT ` + usageColumns + ` FROM usage_tracking WHERE user_id = $1`
	u, err := scanUsage(r.db.QueryRow(ctx, q, userID))
	if pg.IsNotFoundError(err) {
		return Usage{}, ErrUsageNotFound
	}
	if err != nil {
		return Usage{}, fmt.Errorf("get usage: %w", err)
	}
	return u, nil
}

func (r *PostgresStore) UpsertUsage(ctx context.Context, usage Usage) error {
	const q = `
INSERT INTO usage_tracking (user_id, plan_name, analyses_used, analyses_limit, period_start, period_end)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id)
DO UPDATE SET plan_name      = EXCLUDED.plan_name,
              analyses_used  = EXCLUDED.analyses_used,
              analyses_limit = EXCLUDED.analyses_limit,
              period_start   = EXCLUDED.period_start,
              period_end     = EXCLUDED.period_end,
              updated_at     = NOW()
`
	if _, err := r.db.Exec(ctx, q,
		usage.UserID,
		usage.PlanName,
		usage.AnalysesUsed,
		usage.AnalysesLimit,
		usage.PeriodStart,
		usage.PeriodEnd,
	); err != nil {
		return fmt.Errorf("upsert usage: %w", err)
	}
	return nil
}

func (r *PostgresStore) ConsumeAnalysis(ctx context.Context, userID string, now time.Time) (Usage, error) {
	var (
		usage    Usage
		exceeded bool
	)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		u, err := scanUsage(tx.QueryRow(ctx,
			`SELECT `+usageColumns+` FROM usage_tracking WHERE user_id = $1 FOR UPDATE`, userID))
		if err != nil {
			return err
		}
		u.rollover(now)
		if u.Exhausted() {
			usage, exceeded = u, true
			return nil
		}
		u.AnalysesUsed++
		u.UpdatedAt = now

		const q = `
UPDATE usage_tracking
SET analyses_used = $2,
    period_start  = $3,
    period_end    = $4,
    updated_at    = $5
WHERE user_id = $1
`
		if _, err := tx.Exec(ctx, q, u.UserID, u.AnalysesUsed, u.PeriodStart, u.PeriodEnd, u.UpdatedAt); err != nil {
			return err
		}
		usage = u
		return nil
	})
	switch {
	case pg.IsNotFoundError(err):
		return Usage{}, ErrUsageNotFound
	case err != nil:
		return Usage{}, fmt.Errorf("consume analysis: %w", err)
	case exceeded:
		return usage, ErrQuotaExceeded
	}
	return usage, nil
}

func (r *PostgresStore) UpsertProfile(ctx context.Context, p Profile) error {
	const q = `
INSERT INTO user_profiles (id, email, first_name, last_name, avatar_url, username, external_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id)
DO UPDATE SET email       = EXCLUDED.email,
              first_name  = EXCLUDED.first_name,
              last_name   = EXCLUDED.last_name,
              avatar_url  = EXCLUDED.avatar_url,
              username    = EXCLUDED.username,
              external_id = EXCLUDED.external_id,
              updated_at  = NOW()
`
	if _, err := r.db.Exec(ctx, q, p.ID, p.Email, p.FirstName, p.LastName, p.AvatarURL, p.Username, p.ExternalID); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *PostgresStore) DeleteUser(ctx context.Context, userID string) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, q := range []string{
			`DELETE FROM usage_tracking WHERE user_id = $1`,
			`DELETE FROM subscriptions WHERE user_id = $1`,
			`DELETE FROM user_profiles WHERE id = $1`,
		} {
			if _, err := tx.Exec(ctx, q, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
