package subscription

// Result is the outcome of applying an event: Ok or Skip.
type Result interface {
	result()
}

// Ok reports that the event changed stored state.
type Ok struct {
	Action string
}

// Skip reports that the event was acknowledged without changes.
type Skip struct {
	Reason string
}

func (Ok) result()   {}
func (Skip) result() {}

// Actions reported in Ok.
const (
	ActionSubscriptionCreated  = "subscription_created"
	ActionSubscriptionUpdated  = "subscription_updated"
	ActionSubscriptionCanceled = "subscription_canceled"
	ActionPaymentRecorded      = "payment_recorded"
	ActionPaymentFailed        = "payment_failed"
	ActionProfileUpserted      = "profile_upserted"
	ActionUserDeleted          = "user_deleted"
)

// Reasons reported in Skip.
const (
	ReasonMissingCorrelation   = "missing correlation data"
	ReasonUnknownPlan          = "unknown plan"
	ReasonUnknownStatus        = "unknown provider status"
	ReasonUnknownSubscription  = "unknown subscription"
	ReasonInvalidPeriod        = "invalid billing period"
	ReasonStaleEvent           = "stale event"
	ReasonTransitionNotAllowed = "transition not allowed"
	ReasonUnhandledEvent       = "unhandled event type"
)

// dataQuality lists skip reasons caused by bad provider payloads. They are
// logged at warn level.
var dataQuality = map[string]bool{
	ReasonMissingCorrelation: true,
	ReasonUnknownPlan:        true,
	ReasonUnknownStatus:      true,
	ReasonInvalidPeriod:      true,
}
