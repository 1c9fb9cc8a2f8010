package checkout

import "errors"

var (
	ErrNotConfigured     = errors.New("checkout: stripe secret key is not configured")
	ErrMissingUser       = errors.New("checkout: user id is required")
	ErrUnknownPlan       = errors.New("checkout: unknown plan")
	ErrPlanNotForSale    = errors.New("checkout: plan has no price")
	ErrProvider          = errors.New("checkout: billing provider request failed")
	ErrMissingSessionURL = errors.New("checkout: provider returned no session url")
)
