package catalog

import "context"

// Repository is the Product Store. Implementations report unknown ids with a
// fault.NotFound error and driver failures with fault.Unavailable.
type Repository interface {
	Insert(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	Find(ctx context.Context, q Query) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type Events interface {
	Publish(ctx context.Context, key string, payload any) error
}
