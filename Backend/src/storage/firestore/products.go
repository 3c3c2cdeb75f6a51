package firestore

import (
	"context"
	"errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

// Firestore has no decimal type: price is kept as a float for range
// queries and as an exact string that is the source of truth.
type productDoc struct {
	Name         string    `firestore:"name"`
	Description  string    `firestore:"description"`
	Price        float64   `firestore:"price"`
	PriceExact   string    `firestore:"priceExact"`
	Category     string    `firestore:"category"`
	Image        string    `firestore:"image,omitempty"`
	CountInStock int       `firestore:"countInStock"`
	Rating       *float64  `firestore:"rating"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

func productDocFrom(p *catalog.Product) productDoc {
	return productDoc{
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.InexactFloat64(),
		PriceExact:   p.Price.String(),
		Category:     p.Category,
		Image:        p.Image,
		CountInStock: p.CountInStock,
		Rating:       p.Rating,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d productDoc) toDomain(id string) (catalog.Product, error) {
	price := decimal.NewFromFloat(d.Price)
	if d.PriceExact != "" {
		var err error
		if price, err = decimal.NewFromString(d.PriceExact); err != nil {
			return catalog.Product{}, err
		}
	}
	return catalog.Product{
		ID:           id,
		Name:         d.Name,
		Description:  d.Description,
		Price:        price,
		Category:     d.Category,
		Image:        d.Image,
		CountInStock: d.CountInStock,
		Rating:       d.Rating,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

// Products filters by category in Firestore and does search, ordering and
// paging in process, since Firestore has no substring match.
type Products struct{ client *firestore.Client }

var _ catalog.Repository = (*Products)(nil)

func (r *Products) col() *firestore.CollectionRef {
	return r.client.Collection(productsCollection)
}

func (r *Products) Insert(ctx context.Context, p *catalog.Product) error {
	_, err := r.col().Doc(p.ID).Create(ctx, productDocFrom(p))
	return err
}

func (r *Products) Get(ctx context.Context, id string) (*catalog.Product, error) {
	if !validID(id) {
		return nil, fault.NotFound("product not found")
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fault.NotFound("product not found")
		}
		return nil, err
	}
	var doc productDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	p, err := doc.toDomain(snap.Ref.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Products) all(ctx context.Context, q firestore.Query) ([]catalog.Product, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	var out []catalog.Product
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var doc productDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		p, err := doc.toDomain(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Products) Find(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	fq := r.col().Query
	if q.Category != "" {
		fq = fq.Where("category", "==", q.Category)
	}
	ps, err := r.all(ctx, fq)
	if err != nil {
		return nil, err
	}
	return q.Apply(ps), nil
}

func (r *Products) Categories(ctx context.Context) ([]string, error) {
	it := r.col().Select("category").Documents(ctx)
	defer it.Stop()

	seen := map[string]bool{}
	out := []string{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		c, _ := snap.Data()["category"].(string)
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *Products) Count(ctx context.Context) (int64, error) {
	res, err := r.col().NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, errors.New("firestore: unexpected count result")
	}
	return v.GetIntegerValue(), nil
}
