package cart

import (
	"context"

	"github.com/ahinestrog/smartkart/Backend/src/catalog"
)

// MutateFunc edits c in place and reports whether anything changed. Returning
// false or an error leaves the stored document untouched.
type MutateFunc func(c *Cart) (bool, error)

// Repository is the Cart Store: one document per user, keyed by user id.
type Repository interface {
	// Get returns an empty cart when the user has none.
	Get(ctx context.Context, userID string) (*Cart, error)
	// Mutate runs fn as one atomic read-modify-write of the user's document,
	// creating it on first write. It returns the cart as it is after fn.
	Mutate(ctx context.Context, userID string, fn MutateFunc) (*Cart, error)
}

type ProductLookup interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type Events interface {
	Publish(ctx context.Context, key string, payload any) error
}
