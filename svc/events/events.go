package events

import "time"

// Provider names the system that delivered an event.
type Provider string

const (
	ProviderClerk  Provider = "clerk"
	ProviderStripe Provider = "stripe"
)

// Meta is shared by every variant.
type Meta struct {
	EventID    string
	Provider   Provider
	Type       string
	OccurredAt time.Time
}

// Metadata returns the envelope data of the event.
func (m Meta) Metadata() Meta { return m }

// Event is implemented only by the variants declared in this package.
type Event interface {
	Metadata() Meta
	event()
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
}

type (
	UserCreated struct {
		Meta
		Profile Profile
	}

	UserUpdated struct {
		Meta
		Profile Profile
	}

	UserDeleted struct {
		Meta
		UserID string
	}
)

// CheckoutCompleted carries the correlation data written at checkout.
// UserID and PlanName come from session metadata and may be empty.
type CheckoutCompleted struct {
	Meta
	SessionID      string
	UserID         string
	PlanName       string
	CustomerID     string
	SubscriptionID string
	PriceID        string
}

// SubscriptionUpdated reports the provider's view of a subscription.
// Status is the raw provider status string.
type SubscriptionUpdated struct {
	Meta
	SubscriptionID    string
	CustomerID        string
	Status            string
	PriceID           string
	PeriodStart       time.Time
	PeriodEnd         time.Time
	CancelAtPeriodEnd bool
}

type SubscriptionDeleted struct {
	Meta
	SubscriptionID string
	CustomerID     string
}

// InvoicePaymentSucceeded carries the billing period the invoice pays for.
type InvoicePaymentSucceeded struct {
	Meta
	InvoiceID      string
	SubscriptionID string
	CustomerID     string
	PeriodStart    time.Time
	PeriodEnd      time.Time
}

type InvoicePaymentFailed struct {
	Meta
	InvoiceID      string
	SubscriptionID string
	CustomerID     string
}

// Unhandled is an event type the service does not act on. Provider and Type
// are available through Meta.
type Unhandled struct {
	Meta
}

func (UserCreated) event()             {}
func (UserUpdated) event()             {}
func (UserDeleted) event()             {}
func (CheckoutCompleted) event()       {}
func (SubscriptionUpdated) event()     {}
func (SubscriptionDeleted) event()     {}
func (InvoicePaymentSucceeded) event() {}
func (InvoicePaymentFailed) event()    {}
func (Unhandled) event()               {}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
