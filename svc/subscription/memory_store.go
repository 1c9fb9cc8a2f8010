package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store for tests and runs without Postgres.
type MemoryStore struct {
	mu       sync.Mutex
	subs     map[string]Subscription // by provider subscription id
	usage    map[string]Usage
	profiles map[string]Profile
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs:     make(map[string]Subscription),
		usage:    make(map[string]Usage),
		profiles: make(map[string]Profile),
		now:      time.Now,
	}
}

func (s *MemoryStore) GetSubscription(_ context.Context, subscriptionID string) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[subscriptionID]
	if !ok {
		return Subscription{}, ErrSubscriptionNotFound
	}
	return sub, nil
}

func (s *MemoryStore) GetSubscriptionByUser(_ context.Context, userID string) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		found  Subscription
		exists bool
	)
	for _, sub := range s.subs {
		if sub.UserID != userID {
			continue
		}
		if !exists || sub.UpdatedAt.After(found.UpdatedAt) {
			found, exists = sub, true
		}
	}
	if !exists {
		return Subscription{}, ErrSubscriptionNotFound
	}
	return found, nil
}

func (s *MemoryStore) UpsertSubscription(_ context.Context, sub Subscription) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if cur, ok := s.subs[sub.SubscriptionID]; ok {
		if !newerOrEqual(sub.LastEventAt, cur.LastEventAt) {
			return Subscription{}, ErrStaleEvent
		}
		sub.ID = cur.ID
		sub.CreatedAt = cur.CreatedAt
	} else {
		sub.ID = uuid.New()
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	s.subs[sub.SubscriptionID] = sub
	return sub, nil
}

func (s *MemoryStore) UpdateSubscription(_ context.Context, sub Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.subs[sub.SubscriptionID]
	if !ok {
		return ErrSubscriptionNotFound
	}
	if !newerOrEqual(sub.LastEventAt, cur.LastEventAt) {
		return ErrStaleEvent
	}
	sub.ID = cur.ID
	sub.CreatedAt = cur.CreatedAt
	sub.UpdatedAt = s.now().UTC()
	s.subs[sub.SubscriptionID] = sub
	return nil
}

func (s *MemoryStore) GetUsage(_ context.Context, userID string) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usage[userID]
	if !ok {
		return Usage{}, ErrUsageNotFound
	}
	return u, nil
}

func (s *MemoryStore) UpsertUsage(_ context.Context, usage Usage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage.UpdatedAt = s.now().UTC()
	s.usage[usage.UserID] = usage
	return nil
}

func (s *MemoryStore) ConsumeAnalysis(_ context.Context, userID string, now time.Time) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usage[userID]
	if !ok {
		return Usage{}, ErrUsageNotFound
	}
	u.rollover(now)
	if u.Exhausted() {
		s.usage[userID] = u
		return u, ErrQuotaExceeded
	}
	u.AnalysesUsed++
	u.UpdatedAt = now
	s.usage[userID] = u
	return u, nil
}

func (s *MemoryStore) UpsertProfile(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if cur, ok := s.profiles[p.ID]; ok {
		p.CreatedAt = cur.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.profiles[p.ID] = p
	return nil
}

// GetProfile returns the stored profile, if any.
func (s *MemoryStore) GetProfile(userID string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	return p, ok
}

func (s *MemoryStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, userID)
	delete(s.usage, userID)
	for id, sub := range s.subs {
		if sub.UserID == userID {
			delete(s.subs, id)
		}
	}
	return nil
}

// newerOrEqual reports whether next may overwrite a row last touched at cur.
func newerOrEqual(next, cur *time.Time) bool {
	if cur == nil || next == nil {
		return true
	}
	return !next.Before(*cur)
}

var _ Store = (*MemoryStore)(nil)
