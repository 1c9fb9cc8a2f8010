package subscription

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileSource struct {
	path string
}

// NewFileSource reads plans from a YAML file on every Load:
//
//	plans:
//	  - id: starter
//	    name: Starter
//	    price_id: price_123
//	    limits:
//	      analyses: 100
func NewFileSource(path string) PlansListSource {
	return &fileSource{path: path}
}

func (s *fileSource) Load(ctx context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read plans file: %w", err)
	}
	return ParsePlans(data)
}

// ParsePlans decodes the YAML plan list format used by NewFileSource.
func ParsePlans(data []byte) (map[string]Plan, error) {
	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}

	plans := make(map[string]Plan, len(doc.Plans))
	for _, p := range doc.Plans {
		if _, dup := plans[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan %q", ErrInvalidPlanConfiguration, p.ID)
		}
		plans[p.ID] = p
	}
	return plans, nil
}
