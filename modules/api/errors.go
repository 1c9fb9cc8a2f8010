package api

import (
	"errors"

	"github.com/thefiredev-cloud/vortis/handler"
	"github.com/thefiredev-cloud/vortis/pkg/webhook"
	"github.com/thefiredev-cloud/vortis/svc/analysis"
	"github.com/thefiredev-cloud/vortis/svc/checkout"
	"github.com/thefiredev-cloud/vortis/svc/events"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

var (
	// Clerk deliveries answer 503 until a secret is configured; the other
	// two are operator errors and answer 500.
	errClerkNotConfigured    = errors.New("clerk webhook secret is not configured")
	errStripeNotConfigured   = errors.New("stripe webhook secret is not configured")
	errCheckoutNotConfigured = errors.New("checkout is not configured")
)

var (
	errInvalidTicker    = handler.ErrBadRequest.WithMessage("Invalid ticker symbol")
	errInvalidPlan      = handler.ErrBadRequest.WithMessage("Invalid plan")
	errMissingSignature = handler.ErrBadRequest.WithMessage("Missing webhook signature")
	errInvalidSignature = handler.ErrBadRequest.WithMessage("Invalid webhook signature")
	errMalformedEvent   = handler.ErrBadRequest.WithMessage("Malformed webhook event")
	errQuotaExceeded    = handler.ErrTooManyRequests.WithMessage("Analysis quota exceeded for current plan")
	errWebhookDisabled  = handler.ErrServiceUnavailable.WithMessage("Webhook secret not configured")
	errNoSubscription   = handler.ErrNotFound.WithMessage("No subscription found")
)

// classify maps domain errors raised behind the endpoints to client errors.
// Anything unrecognised falls through to the handler defaults.
func classify(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, analysis.ErrInvalidTicker):
		return errInvalidTicker, true
	case errors.Is(err, checkout.ErrUnknownPlan), errors.Is(err, checkout.ErrPlanNotForSale):
		return errInvalidPlan, true
	case errors.Is(err, checkout.ErrMissingUser):
		return handler.ErrUnauthorized, true
	case errors.Is(err, webhook.ErrMissingHeaders):
		return errMissingSignature, true
	case errors.Is(err, webhook.ErrSignatureInvalid), errors.Is(err, webhook.ErrTimestampOutOfRange):
		return errInvalidSignature, true
	case errors.Is(err, events.ErrMalformedEvent):
		return errMalformedEvent, true
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		return errNoSubscription, true
	case errors.Is(err, errClerkNotConfigured):
		return errWebhookDisabled, true
	}
	return handler.HTTPError{}, false
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrMissingHeaders) ||
		errors.Is(err, webhook.ErrSignatureInvalid) ||
		errors.Is(err, webhook.ErrTimestampOutOfRange)
}
