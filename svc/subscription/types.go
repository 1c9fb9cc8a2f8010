package subscription

import "time"

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive     Status = "active"
	StatusTrialing   Status = "trialing"
	StatusPastDue    Status = "past_due"
	StatusCanceled   Status = "canceled"
	StatusIncomplete Status = "incomplete"
)

// ParseProviderStatus maps a billing provider status onto Status. Provider
// states without a local counterpart fold into the closest one.
func ParseProviderStatus(s string) (Status, bool) {
	switch s {
	case "active":
		return StatusActive, true
	case "trialing":
		return StatusTrialing, true
	case "past_due", "unpaid", "paused":
		return StatusPastDue, true
	case "canceled", "incomplete_expired":
		return StatusCanceled, true
	case "incomplete":
		return StatusIncomplete, true
	}
	return "", false
}

// Resource is a metered plan resource.
type Resource string

const ResourceAnalyses Resource = "analyses"

// Unlimited marks a limit that is never enforced (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// UsagePeriod is the length of one usage window.
const UsagePeriod = 30 * 24 * time.Hour
