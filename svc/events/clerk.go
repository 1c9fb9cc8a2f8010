package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Clerk event types.
const (
	ClerkUserCreated = "user.created"
	ClerkUserUpdated = "user.updated"
	ClerkUserDeleted = "user.deleted"
)

type clerkEnvelope struct {
	Type      string          `json:"type"`
	Object    string          `json:"object"`
	Timestamp int64           `json:"timestamp"` // milliseconds
	Data      json.RawMessage `json:"data"`
}

type clerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type clerkUser struct {
	ID                    string              `json:"id"`
	EmailAddresses        []clerkEmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	FirstName             *string             `json:"first_name"`
	LastName              *string             `json:"last_name"`
	ImageURL              string              `json:"image_url"`
	Username              *string             `json:"username"`
	ExternalID            *string             `json:"external_id"`
}

func (u clerkUser) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (u clerkUser) profile() Profile {
	return Profile{
		ID:         u.ID,
		Email:      u.primaryEmail(),
		FirstName:  deref(u.FirstName),
		LastName:   deref(u.LastName),
		AvatarURL:  u.ImageURL,
		Username:   deref(u.Username),
		ExternalID: deref(u.ExternalID),
	}
}

// ClerkOption fills envelope data Clerk carries in delivery headers rather
// than in the body.
type ClerkOption func(*Meta)

// WithDeliveryID sets the event id, usually the svix-id header.
func WithDeliveryID(id string) ClerkOption {
	return func(m *Meta) { m.EventID = id }
}

// WithDeliveredAt sets the event time when the envelope has no timestamp.
func WithDeliveredAt(t time.Time) ClerkOption {
	return func(m *Meta) {
		if m.OccurredAt.IsZero() {
			m.OccurredAt = t.UTC()
		}
	}
}

// FromClerk maps a verified Clerk webhook body to an Event.
func FromClerk(envelope []byte, opts ...ClerkOption) (Event, error) {
	var env clerkEnvelope
	if err := json.Unmarshal(envelope, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedEvent)
	}

	meta := Meta{Provider: ProviderClerk, Type: env.Type}
	if env.Timestamp > 0 {
		meta.OccurredAt = time.UnixMilli(env.Timestamp).UTC()
	}
	for _, opt := range opts {
		opt(&meta)
	}

	switch env.Type {
	case ClerkUserCreated, ClerkUserUpdated:
		var u clerkUser
		if err := decodeData(env.Data, &u); err != nil {
			return nil, err
		}
		if u.ID == "" {
			return nil, fmt.Errorf("%w: %s without user id", ErrMalformedEvent, env.Type)
		}
		if env.Type == ClerkUserCreated {
			return UserCreated{Meta: meta, Profile: u.profile()}, nil
		}
		return UserUpdated{Meta: meta, Profile: u.profile()}, nil

	case ClerkUserDeleted:
		var u struct {
			ID string `json:"id"`
		}
		if err := decodeData(env.Data, &u); err != nil {
			return nil, err
		}
		if u.ID == "" {
			return nil, fmt.Errorf("%w: %s without user id", ErrMalformedEvent, env.Type)
		}
		return UserDeleted{Meta: meta, UserID: u.ID}, nil
	}

	return Unhandled{Meta: meta}, nil
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
