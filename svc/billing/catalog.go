package billing

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// StaticSource serves a fixed plan list. It backs offline tools and tests
// that need a catalog without a live backend.
type StaticSource struct {
	plans []Plan
}

// NewStaticSource creates a Source over the given plans.
func NewStaticSource(plans ...Plan) *StaticSource {
	return &StaticSource{plans: plans}
}

// Plans returns a copy of the catalog.
func (s *StaticSource) Plans(_ context.Context) ([]Plan, error) {
	out := make([]Plan, len(s.plans))
	copy(out, s.plans)
	return out, nil
}

type catalogDocument struct {
	Plans []Plan `yaml:"plans"`
}

// LoadCatalog reads a YAML plan catalog:
//
//	plans:
//	  - id: 1
//	    name: Starter
//	    price: {amount: 9.99, currency: USD}
//	    interval: month
//	    features: [cloud saves]
func LoadCatalog(r io.Reader) ([]Plan, error) {
	var doc catalogDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Plans) == 0 {
		return nil, ErrEmptyCatalog
	}
	return doc.Plans, nil
}
