// Package webhook verifies signed webhook deliveries from identity and
// billing providers.
//
// Identity provider deliveries follow the Svix scheme: three headers carry a
// message id, a unix timestamp and a space separated list of signatures. The
// signed content is
//
//	<id>.<timestamp>.<raw body>
//
// hashed with HMAC-SHA256 and base64 encoded. Every entry of the signature
// header looks like "v1,<base64>"; a request is authentic when any v1 entry
// matches.
//
//	h, err := webhook.HeadersFromRequest(r.Header)
//	if err != nil {
//		return err // ErrMissingHeaders
//	}
//	if err := webhook.Verify(secret, body, h); err != nil {
//		return err // ErrSignatureInvalid
//	}
//
// Billing deliveries use Stripe's own "t=...,v1=..." scheme and are checked
// by VerifyStripe, which reports failures with the same error values.
//
// The body must be the exact bytes received. Re-encoding parsed JSON changes
// the signed content.
package webhook
