package subscription

import (
	"context"
	"sync"
)

type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns an in-memory source with a deep copy of the given plans.
// Panics if no plans are provided.
func NewInMemSource(plans ...Plan) PlansListSource {
	if len(plans) < 1 {
		panic("at least one plan is required")
	}
	plansCopy := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		plansCopy[plan.ID] = plan.clone()
	}
	return &inMemSource{plans: plansCopy}
}

// Load returns a copy of all plans.
func (s *inMemSource) Load(ctx context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plansCopy := make(map[string]Plan, len(s.plans))
	for id, plan := range s.plans {
		plansCopy[id] = plan.clone()
	}
	return plansCopy, nil
}
