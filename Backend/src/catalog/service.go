package catalog

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/smartkart/Backend/src/platform/auth"
	"github.com/ahinestrog/smartkart/Backend/src/platform/events"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type Service struct {
	repo   Repository
	events Events
	now    func() time.Time
}

func NewService(repo Repository, ev Events) *Service {
	return &Service{repo: repo, events: ev, now: func() time.Time { return time.Now().UTC() }}
}

// List validates f and returns the matching page as a lazy sequence. The
// store is queried when the sequence is ranged over, once per range.
func (s *Service) List(ctx context.Context, f Filter) (iter.Seq2[Product, error], error) {
	q, err := f.Query()
	if err != nil {
		return nil, err
	}
	return func(yield func(Product, error) bool) {
		ps, err := s.repo.Find(ctx, q)
		if err != nil {
			yield(Product{}, fault.Unavailable("find products", err))
			return
		}
		for _, p := range ps {
			if !yield(p, nil) {
				return
			}
		}
	}, nil
}

func (s *Service) Page(ctx context.Context, f Filter) ([]Product, error) {
	seq, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := []Product{}
	for p, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fault.InvalidArgument("product id is required")
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fault.Unavailable("get product", err)
	}
	return p, nil
}

// Create is the administrative creation call.
func (s *Service) Create(ctx context.Context, p Product) (*Product, error) {
	who, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return nil, fault.Unauthenticated("authentication required")
	}
	if !who.Admin {
		return nil, fault.PermissionDenied("only administrators can create products")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now

	if err := s.repo.Insert(ctx, &p); err != nil {
		return nil, fault.Unavailable("insert product", err)
	}
	s.publish(ctx, events.RKProductCreated, map[string]any{"id": p.ID, "name": p.Name, "category": p.Category})
	return &p, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	cs, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fault.Unavailable("list categories", err)
	}
	if cs == nil {
		cs = []string{}
	}
	return cs, nil
}

func (s *Service) publish(ctx context.Context, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("event publish failed")
	}
}
