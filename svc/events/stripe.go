package events

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
)

// Stripe event types.
const (
	StripeCheckoutSessionCompleted = "checkout.session.completed"
	StripeSubscriptionUpdated      = "customer.subscription.updated"
	StripeSubscriptionDeleted      = "customer.subscription.deleted"
	StripeInvoicePaymentSucceeded  = "invoice.payment_succeeded"
	StripeInvoicePaymentFailed     = "invoice.payment_failed"
)

// Checkout session metadata keys written by the checkout service.
const (
	MetadataUserID   = "user_id"
	MetadataPlanName = "plan_name"
)

// FromStripe maps a verified Stripe event to an Event.
func FromStripe(e stripe.Event) (Event, error) {
	meta := Meta{
		EventID:    e.ID,
		Provider:   ProviderStripe,
		Type:       string(e.Type),
		OccurredAt: unixTime(e.Created),
	}

	var raw json.RawMessage
	if e.Data != nil {
		raw = e.Data.Raw
	}

	switch meta.Type {
	case StripeCheckoutSessionCompleted:
		var s stripe.CheckoutSession
		if err := decodeData(raw, &s); err != nil {
			return nil, err
		}
		ev := CheckoutCompleted{
			Meta:      meta,
			SessionID: s.ID,
			UserID:    s.Metadata[MetadataUserID],
			PlanName:  s.Metadata[MetadataPlanName],
		}
		if ev.UserID == "" {
			ev.UserID = s.ClientReferenceID
		}
		if s.Customer != nil {
			ev.CustomerID = s.Customer.ID
		}
		if s.Subscription != nil {
			ev.SubscriptionID = s.Subscription.ID
			ev.PriceID = subscriptionPriceID(s.Subscription)
		}
		if ev.PriceID == "" && s.LineItems != nil {
			for _, li := range s.LineItems.Data {
				if li != nil && li.Price != nil {
					ev.PriceID = li.Price.ID
					break
				}
			}
		}
		return ev, nil

	case StripeSubscriptionUpdated, StripeSubscriptionDeleted:
		var s stripe.Subscription
		if err := decodeData(raw, &s); err != nil {
			return nil, err
		}
		if s.ID == "" {
			return nil, fmt.Errorf("%w: %s without subscription id", ErrMalformedEvent, meta.Type)
		}
		var customerID string
		if s.Customer != nil {
			customerID = s.Customer.ID
		}
		if meta.Type == StripeSubscriptionDeleted {
			return SubscriptionDeleted{Meta: meta, SubscriptionID: s.ID, CustomerID: customerID}, nil
		}
		return SubscriptionUpdated{
			Meta:              meta,
			SubscriptionID:    s.ID,
			CustomerID:        customerID,
			Status:            string(s.Status),
			PriceID:           subscriptionPriceID(&s),
			PeriodStart:       unixTime(s.CurrentPeriodStart),
			PeriodEnd:         unixTime(s.CurrentPeriodEnd),
			CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		}, nil

	case StripeInvoicePaymentSucceeded, StripeInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := decodeData(raw, &inv); err != nil {
			return nil, err
		}
		var subID, customerID string
		if inv.Subscription != nil {
			subID = inv.Subscription.ID
		}
		if inv.Customer != nil {
			customerID = inv.Customer.ID
		}
		if meta.Type == StripeInvoicePaymentFailed {
			return InvoicePaymentFailed{Meta: meta, InvoiceID: inv.ID, SubscriptionID: subID, CustomerID: customerID}, nil
		}
		ev := InvoicePaymentSucceeded{
			Meta:           meta,
			InvoiceID:      inv.ID,
			SubscriptionID: subID,
			CustomerID:     customerID,
			PeriodStart:    unixTime(inv.PeriodStart),
			PeriodEnd:      unixTime(inv.PeriodEnd),
		}
		// Subscription invoices bill the upcoming period on their line items.
		if inv.Lines != nil {
			for _, line := range inv.Lines.Data {
				if line != nil && line.Period != nil && line.Period.End > line.Period.Start {
					ev.PeriodStart = unixTime(line.Period.Start)
					ev.PeriodEnd = unixTime(line.Period.End)
					break
				}
			}
		}
		return ev, nil
	}

	return Unhandled{Meta: meta}, nil
}

func subscriptionPriceID(s *stripe.Subscription) string {
	if s == nil || s.Items == nil {
		return ""
	}
	for _, item := range s.Items.Data {
		if item != nil && item.Price != nil {
			return item.Price.ID
		}
	}
	return ""
}
