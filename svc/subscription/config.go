package subscription

import "context"

// Config selects the plan catalog and the provider price of each built-in plan.
type Config struct {
	PlansFile         string `env:"PLANS_FILE"`
	StarterPriceID    string `env:"STRIPE_PRICE_STARTER"`
	ProPriceID        string `env:"STRIPE_PRICE_PRO"`
	EnterprisePriceID string `env:"STRIPE_PRICE_ENTERPRISE"`
}

func (c Config) priceIDs() map[string]string {
	return map[string]string{
		PlanStarter:    c.StarterPriceID,
		PlanPro:        c.ProPriceID,
		PlanEnterprise: c.EnterprisePriceID,
	}
}

// LoadCatalog builds the catalog from PLANS_FILE when set, otherwise from
// DefaultPlans. Plans without a price id take the one configured for their id.
func LoadCatalog(ctx context.Context, cfg Config) (*Catalog, error) {
	var src PlansListSource
	if cfg.PlansFile != "" {
		src = NewFileSource(cfg.PlansFile)
	} else {
		src = NewInMemSource(DefaultPlans()...)
	}
	return NewCatalog(ctx, withPriceIDs{src: src, prices: cfg.priceIDs()})
}

type withPriceIDs struct {
	src    PlansListSource
	prices map[string]string
}

func (w withPriceIDs) Load(ctx context.Context) (map[string]Plan, error) {
	plans, err := w.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	for id, p := range plans {
		if p.PriceID == "" {
			p.PriceID = w.prices[id]
			plans[id] = p
		}
	}
	return plans, nil
}
