package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ahinestrog/smartkart/Backend/src/cart"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type lineDoc struct {
	ProductID string `firestore:"productId"`
	Name      string `firestore:"name"`
	Price     string `firestore:"price"`
	Image     string `firestore:"image,omitempty"`
	Quantity  int    `firestore:"quantity"`
}

type cartDoc struct {
	Items     []lineDoc `firestore:"items"`
	Version   int64     `firestore:"version"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func cartDocFrom(c *cart.Cart) cartDoc {
	d := cartDoc{
		Items:     make([]lineDoc, 0, len(c.Items)),
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, it := range c.Items {
		d.Items = append(d.Items, lineDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.String(),
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	return d
}

func (d cartDoc) toDomain(userID string) (*cart.Cart, error) {
	c := &cart.Cart{
		UserID:    userID,
		Items:     make([]cart.LineItem, 0, len(d.Items)),
		Version:   d.Version,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	for _, it := range d.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, err
		}
		c.Items = append(c.Items, cart.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	return c, nil
}

type Carts struct{ client *firestore.Client }

var _ cart.Repository = (*Carts)(nil)

func (r *Carts) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(cartsCollection).Doc(userID)
}

func decodeCart(snap *firestore.DocumentSnapshot, err error, userID string) (*cart.Cart, error) {
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return cart.New(userID), nil
		}
		return nil, err
	}
	var d cartDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return d.toDomain(userID)
}

func (r *Carts) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	if !validID(userID) {
		return nil, fault.InvalidArgument("user id %q cannot key a cart", userID)
	}
	snap, err := r.doc(userID).Get(ctx)
	return decodeCart(snap, err, userID)
}

// Mutate runs fn inside a Firestore transaction. Firestore may run the
// transaction function more than once, each time on a fresh read.
func (r *Carts) Mutate(ctx context.Context, userID string, fn cart.MutateFunc) (*cart.Cart, error) {
	if !validID(userID) {
		return nil, fault.InvalidArgument("user id %q cannot key a cart", userID)
	}
	ref := r.doc(userID)
	var out *cart.Cart
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		c, err := decodeCart(snap, err, userID)
		if err != nil {
			return err
		}
		changed, err := fn(c)
		if err != nil {
			return err
		}
		out = c
		if !changed {
			return nil
		}
		c.Version++
		if c.CreatedAt.IsZero() {
			c.CreatedAt = c.UpdatedAt
		}
		return tx.Set(ref, cartDocFrom(c))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
