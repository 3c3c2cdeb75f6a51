package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

//go:embed seed/products.json
var seedJSON []byte

func SeedProducts() ([]Product, error) {
	var ps []Product
	if err := json.Unmarshal(seedJSON, &ps); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return ps, nil
}

// Seed fills an empty product collection with the demo catalog and reports
// how many products it inserted. A non-empty collection is left alone.
func (s *Service) Seed(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fault.Unavailable("count products", err)
	}
	if n > 0 {
		return 0, nil
	}
	ps, err := SeedProducts()
	if err != nil {
		return 0, err
	}
	base := s.now()
	for i := range ps {
		p := ps[i]
		if err := p.Validate(); err != nil {
			return i, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		p.ID = uuid.NewString()
		// distinct timestamps keep featured order equal to file order
		p.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		p.UpdatedAt = p.CreatedAt
		if err := s.repo.Insert(ctx, &p); err != nil {
			return i, fault.Unavailable("seed insert", err)
		}
	}
	return len(ps), nil
}
