package logger

import "log/slog"

const errorKey = "error"

// Error records err under "error". A nil error yields an empty attribute,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(errorKey, err)
}

// RequestID records the request correlation id.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// UserID records the identity provider user id.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

func Component(name string) slog.Attr { return slog.String("component", name) }

func Event(name string) slog.Attr { return slog.String("event", name) }

// EventType records a provider event type such as "invoice.payment_failed".
func EventType(t string) slog.Attr { return slog.String("event_type", t) }

// EventID records the provider's delivery or event id.
func EventID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("event_id", id)
}

func Provider(name string) slog.Attr { return slog.String("provider", name) }

// SubscriptionID records the billing provider subscription id.
func SubscriptionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("subscription_id", id)
}

// Identifier records a rate limit identifier such as "ip:10.0.0.1".
func Identifier(key string) slog.Attr { return slog.String("identifier", key) }

func Reason(reason string) slog.Attr { return slog.String("reason", reason) }

func StatusCode(code int) slog.Attr { return slog.Int("status_code", code) }
