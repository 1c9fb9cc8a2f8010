package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/thefiredev-cloud/vortis/handler"
	"github.com/thefiredev-cloud/vortis/pkg/binder"
	"github.com/thefiredev-cloud/vortis/pkg/logger"
	"github.com/thefiredev-cloud/vortis/pkg/metrics"
	"github.com/thefiredev-cloud/vortis/pkg/requestid"
	"github.com/thefiredev-cloud/vortis/pkg/webhook"
	"github.com/thefiredev-cloud/vortis/svc/events"
	"github.com/thefiredev-cloud/vortis/svc/subscription"
)

// stripeWebhook verifies a Stripe delivery and applies it. Store failures
// answer 500 so Stripe redelivers.
func (a *api) stripeWebhook(ctx handler.Context, _ struct{}) handler.Response {
	r := ctx.Request()
	provider := string(events.ProviderStripe)

	if a.cfg.StripeWebhookSecret == "" {
		a.observe(provider, "", metrics.WebhookError)
		return handler.Error(errStripeNotConfigured)
	}

	body, err := a.readBody(ctx)
	if err != nil {
		a.observe(provider, "", metrics.WebhookRejected)
		return handler.Error(err)
	}

	raw, err := webhook.VerifyStripe(a.cfg.StripeWebhookSecret, body,
		r.Header.Get(webhook.StripeSignatureHeader), a.verifyOptions()...)
	if err != nil {
		return a.reject(r.Context(), provider, err)
	}

	ev, err := events.FromStripe(raw)
	if err != nil {
		a.observe(provider, string(raw.Type), metrics.WebhookRejected)
		return handler.Error(err)
	}
	if err := a.apply(r.Context(), ev); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(map[string]bool{"received": true})
}

// clerkWebhook verifies a Svix-signed Clerk delivery and applies it.
func (a *api) clerkWebhook(ctx handler.Context, _ struct{}) handler.Response {
	r := ctx.Request()
	provider := string(events.ProviderClerk)

	if a.cfg.ClerkWebhookSecret == "" {
		a.observe(provider, "", metrics.WebhookError)
		return handler.Error(errClerkNotConfigured)
	}

	headers, err := webhook.HeadersFromRequest(r.Header)
	if err != nil {
		return a.reject(r.Context(), provider, err)
	}

	body, err := a.readBody(ctx)
	if err != nil {
		a.observe(provider, "", metrics.WebhookRejected)
		return handler.Error(err)
	}

	if err := webhook.Verify(a.cfg.ClerkWebhookSecret, body, headers, a.verifyOptions()...); err != nil {
		return a.reject(r.Context(), provider, err)
	}

	ev, err := events.FromClerk(body,
		events.WithDeliveryID(headers.ID),
		events.WithDeliveredAt(a.deliveredAt(headers.Timestamp)),
	)
	if err != nil {
		a.observe(provider, "", metrics.WebhookRejected)
		return handler.Error(err)
	}
	if err := a.apply(r.Context(), ev); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(map[string]bool{"success": true})
}

// apply hands ev to the synchronizer and records the outcome.
func (a *api) apply(ctx context.Context, ev events.Event) error {
	meta := ev.Metadata()
	res, err := a.events.Apply(ctx, ev)
	if err != nil {
		a.observe(string(meta.Provider), meta.Type, metrics.WebhookError)
		return err
	}

	outcome := metrics.WebhookOK
	if _, skipped := res.(subscription.Skip); skipped {
		outcome = metrics.WebhookSkip
	}
	a.observe(string(meta.Provider), meta.Type, outcome)
	return nil
}

// reject logs a failed signature check as a security event.
func (a *api) reject(ctx context.Context, provider string, err error) handler.Response {
	if isSignatureError(err) {
		a.log.WarnContext(ctx, "webhook signature rejected",
			logger.Event("webhook_signature_rejected"),
			logger.Provider(provider),
			logger.RequestID(requestid.FromContext(ctx)),
			logger.Error(err),
		)
	}
	a.observe(provider, "", metrics.WebhookRejected)
	return handler.Error(err)
}

func (a *api) observe(provider, eventType, outcome string) {
	if a.metrics != nil {
		a.metrics.ObserveWebhook(provider, eventType, outcome)
	}
}

// readBody reads the raw payload; signatures cover the exact bytes.
func (a *api) readBody(ctx handler.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(ctx.ResponseWriter(), ctx.Request().Body, a.cfg.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", binder.ErrRequestTooLarge, a.cfg.MaxBodySize)
		}
		return nil, handler.ErrBadRequest.WithMessage("Unable to read request body")
	}
	return body, nil
}

// deliveredAt parses the Svix timestamp, which has already passed the
// tolerance check.
func (a *api) deliveredAt(ts string) time.Time {
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return a.now()
	}
	return time.Unix(sec, 0).UTC()
}
