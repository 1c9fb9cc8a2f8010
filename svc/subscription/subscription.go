package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is a user's billing relationship, keyed by the provider's
// subscription id.
type Subscription struct {
	ID                 uuid.UUID
	UserID             string
	PlanName           string
	Status             Status
	CustomerID         string
	SubscriptionID     string
	PriceID            string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
	LastEventID        string
	LastEventAt        *time.Time // provider time of the last applied event
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (s Subscription) IsActive() bool   { return s.Status == StatusActive || s.Status == StatusTrialing }
func (s Subscription) IsCanceled() bool { return s.Status == StatusCanceled }

// accepts reports whether an event that happened at the given time may
// change the row. Events older than the last applied one may not.
func (s Subscription) accepts(at time.Time) bool {
	if s.LastEventAt == nil || at.IsZero() {
		return true
	}
	return !at.Before(*s.LastEventAt)
}

func (s Subscription) validPeriod() bool {
	if s.CurrentPeriodStart == nil || s.CurrentPeriodEnd == nil {
		return true
	}
	return !s.CurrentPeriodEnd.Before(*s.CurrentPeriodStart)
}

// Usage counts analyses consumed in the current period.
type Usage struct {
	UserID        string
	PlanName      string
	AnalysesUsed  int64
	AnalysesLimit int64 // Unlimited for no cap
	PeriodStart   time.Time
	PeriodEnd     time.Time
	UpdatedAt     time.Time
}

func (u Usage) IsUnlimited() bool { return u.AnalysesLimit == Unlimited }

// ResetIn returns the time left until the period ends.
func (u Usage) ResetIn(now time.Time) time.Duration {
	return max(u.PeriodEnd.Sub(now), 0)
}

// Exhausted reports whether no analyses are left in the period.
func (u Usage) Exhausted() bool {
	return !u.IsUnlimited() && u.AnalysesUsed >= u.AnalysesLimit
}

// Remaining returns the analyses left, or Unlimited.
func (u Usage) Remaining() int64 {
	if u.IsUnlimited() {
		return Unlimited
	}
	return max(u.AnalysesLimit-u.AnalysesUsed, 0)
}

// rollover moves an expired period forward in UsagePeriod steps and resets
// the counter. It returns false when the period is still current.
func (u *Usage) rollover(now time.Time) bool {
	if now.Before(u.PeriodEnd) {
		return false
	}
	start := u.PeriodEnd
	if start.IsZero() {
		start = now
	}
	for !now.Before(start.Add(UsagePeriod)) {
		start = start.Add(UsagePeriod)
	}
	u.PeriodStart = start
	u.PeriodEnd = start.Add(UsagePeriod)
	u.AnalysesUsed = 0
	return true
}

// Profile mirrors the identity provider's user record.
type Profile struct {
	ID         string
	Email      string
	FirstName  string
	LastName   string
	AvatarURL  string
	Username   string
	ExternalID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
