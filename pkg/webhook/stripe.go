package webhook

import (
	"errors"
	"time"

	"github.com/stripe/stripe-go/v79"
	stripewebhook "github.com/stripe/stripe-go/v79/webhook"
)

// StripeSignatureHeader carries Stripe's "t=...,v1=..." signature.
const StripeSignatureHeader = "Stripe-Signature"

// VerifyStripe checks a Stripe delivery and decodes its event. An absent
// signature header returns ErrMissingHeaders; every other verification
// failure wraps ErrSignatureInvalid. Only WithTolerance applies; Stripe's
// library reads the system clock.
func VerifyStripe(secret string, body []byte, sigHeader string, opts ...Option) (stripe.Event, error) {
	if sigHeader == "" {
		return stripe.Event{}, ErrMissingHeaders
	}
	if secret == "" {
		return stripe.Event{}, errors.Join(ErrSignatureInvalid, ErrSecretRequired)
	}

	o := verifyOptions{tolerance: DefaultTolerance, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	event, err := stripewebhook.ConstructEventWithOptions(body, sigHeader, secret, stripewebhook.ConstructEventOptions{
		Tolerance:                o.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		switch {
		case errors.Is(err, stripewebhook.ErrNotSigned):
			return stripe.Event{}, ErrMissingHeaders
		case errors.Is(err, stripewebhook.ErrTooOld):
			return stripe.Event{}, errors.Join(ErrSignatureInvalid, ErrTimestampOutOfRange)
		default:
			return stripe.Event{}, errors.Join(ErrSignatureInvalid, err)
		}
	}
	return event, nil
}
