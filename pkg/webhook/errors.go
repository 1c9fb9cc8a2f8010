package webhook

import "errors"

var (
	ErrMissingHeaders      = errors.New("missing webhook signature headers")
	ErrSignatureInvalid    = errors.New("invalid webhook signature")
	ErrTimestampOutOfRange = errors.New("webhook timestamp outside tolerance")
	ErrSecretRequired      = errors.New("webhook secret is required")
)
