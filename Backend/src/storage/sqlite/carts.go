package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/ahinestrog/smartkart/Backend/src/cart"
)

type Carts struct{ db *sql.DB }

var _ cart.Repository = (*Carts)(nil)

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadCart(ctx context.Context, q rowQuerier, userID string) (*cart.Cart, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT doc FROM carts WHERE user_id=?`, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return cart.New(userID), nil
	}
	if err != nil {
		return nil, err
	}
	var c cart.Cart
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []cart.LineItem{}
	}
	return &c, nil
}

func (r *Carts) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	return loadCart(ctx, r.db, userID)
}

func (r *Carts) Mutate(ctx context.Context, userID string, fn cart.MutateFunc) (*cart.Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	c, err := loadCart(ctx, tx, userID)
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
	c.Version++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO carts(user_id, version, updated_unix, doc)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id)
		DO UPDATE SET version = excluded.version, updated_unix = excluded.updated_unix, doc = excluded.doc
	`, userID, c.Version, c.UpdatedAt.UnixNano(), string(doc))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}
