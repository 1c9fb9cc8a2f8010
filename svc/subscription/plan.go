package subscription

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Plan names.
const (
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Plan describes a subscription plan and its metered limits.
type Plan struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	PriceID     string             `yaml:"price_id"` // billing provider price
	Limits      map[Resource]int64 `yaml:"limits"`   // -1 represents unlimited
}

// Limit returns the plan limit for a resource, or 0 when the plan does not
// grant it.
func (p Plan) Limit(r Resource) int64 {
	return p.Limits[r]
}

func (p Plan) clone() Plan {
	p.Limits = maps.Clone(p.Limits)
	return p
}

// DefaultPlans is the built-in catalog without provider price ids.
func DefaultPlans() []Plan {
	return []Plan{
		{ID: PlanStarter, Name: "Starter", Limits: map[Resource]int64{ResourceAnalyses: 100}},
		{ID: PlanPro, Name: "Pro", Limits: map[Resource]int64{ResourceAnalyses: 1000}},
		{ID: PlanEnterprise, Name: "Enterprise", Limits: map[Resource]int64{ResourceAnalyses: Unlimited}},
	}
}

// PlansListSource provides the plan catalog.
type PlansListSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog is a validated, read-only plan list.
type Catalog struct {
	plans   map[string]Plan
	byPrice map[string]string
}

// NewCatalog loads and validates plans from src.
func NewCatalog(ctx context.Context, src PlansListSource) (*Catalog, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	c := &Catalog{
		plans:   make(map[string]Plan, len(plans)),
		byPrice: make(map[string]string, len(plans)),
	}
	for id, p := range plans {
		c.plans[id] = p.clone()
		if p.PriceID != "" {
			c.byPrice[p.PriceID] = id
		}
	}
	return c, nil
}

// Plan returns the plan with the given id.
func (c *Catalog) Plan(id string) (Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, id)
	}
	return p.clone(), nil
}

// PlanByPriceID resolves the plan billed with the given provider price.
func (c *Catalog) PlanByPriceID(priceID string) (Plan, bool) {
	id, ok := c.byPrice[priceID]
	if !ok {
		return Plan{}, false
	}
	return c.plans[id].clone(), true
}

// Plans returns all plans ordered by id.
func (c *Catalog) Plans() []Plan {
	ids := slices.Sorted(maps.Keys(c.plans))
	out := make([]Plan, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.plans[id].clone())
	}
	return out
}

// validatePlans ensures plan configurations are internally consistent.
func validatePlans(plans map[string]Plan) error {
	if len(plans) == 0 {
		return errors.Join(ErrInvalidPlanConfiguration, errors.New("no plans configured"))
	}

	prices := make(map[string]string, len(plans))
	for planID, plan := range plans {
		if plan.ID != planID {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", planID, plan.ID))
		}
		for res, limit := range plan.Limits {
			if limit < Unlimited {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s has invalid %s limit: %d", planID, res, limit))
			}
		}
		if plan.PriceID == "" {
			continue
		}
		if other, dup := prices[plan.PriceID]; dup {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plans %s and %s share price %s", other, planID, plan.PriceID))
		}
		prices[plan.PriceID] = planID
	}
	return nil
}
