package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ahinestrog/smartkart/Backend/src/cart"
)

const defaultCASAttempts = 16

var errConflict = errors.New("cart changed concurrently")

type lineDoc struct {
	ProductID string               `bson:"productId"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Image     string               `bson:"image,omitempty"`
	Quantity  int                  `bson:"quantity"`
}

type cartDoc struct {
	UserID    string    `bson:"_id"`
	Items     []lineDoc `bson:"items"`
	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toCartDoc(c *cart.Cart) (cartDoc, error) {
	d := cartDoc{
		UserID:    c.UserID,
		Items:     make([]lineDoc, 0, len(c.Items)),
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, it := range c.Items {
		price, err := primitive.ParseDecimal128(it.Price.String())
		if err != nil {
			return cartDoc{}, err
		}
		d.Items = append(d.Items, lineDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	return d, nil
}

func (d cartDoc) cart() (*cart.Cart, error) {
	c := &cart.Cart{
		UserID:    d.UserID,
		Items:     make([]cart.LineItem, 0, len(d.Items)),
		Version:   d.Version,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	for _, it := range d.Items {
		price, err := decimal.NewFromString(it.Price.String())
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

// Carts writes with optimistic concurrency: an update only matches the
// version it was computed from, and a lost race re-reads and retries.
type Carts struct {
	coll     *mongo.Collection
	attempts int
}

var _ cart.Repository = (*Carts)(nil)

func (r *Carts) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	var doc cartDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return cart.New(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return doc.cart()
}

func (r *Carts) Mutate(ctx context.Context, userID string, fn cart.MutateFunc) (*cart.Cart, error) {
	for i := 0; i < r.attempts; i++ {
		c, err := r.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		changed, err := fn(c)
		if err != nil {
			return nil, err
		}
		if !changed {
			return c, nil
		}
		err = r.swap(ctx, c)
		if errors.Is(err, errConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("mutate cart %s: %w after %d attempts", userID, errConflict, r.attempts)
}

// swap stores c if the stored version still equals c.Version and bumps it.
func (r *Carts) swap(ctx context.Context, c *cart.Cart) error {
	prev := c.Version
	c.Version++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}
	doc, err := toCartDoc(c)
	if err != nil {
		return err
	}

	if prev == 0 {
		_, err := r.coll.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return errConflict
		}
		return err
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.UserID, "version": prev}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errConflict
	}
	return nil
}
