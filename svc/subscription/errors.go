package subscription

import "errors"

var (
	ErrPlanNotFound             = errors.New("subscription plan not found")
	ErrInvalidPlanConfiguration = errors.New("invalid subscription plan configuration")
	ErrFailedToLoadPlans        = errors.New("failed to load subscription plans")

	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUsageNotFound        = errors.New("usage record not found")
	ErrStaleEvent           = errors.New("event is older than the stored state")
	ErrInvalidPeriod        = errors.New("period end is before period start")

	ErrQuotaExceeded = errors.New("analysis quota exceeded")
)
