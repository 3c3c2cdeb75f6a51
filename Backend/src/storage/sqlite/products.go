package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type Products struct{ db *sql.DB }

var _ catalog.Repository = (*Products)(nil)

var orderBy = map[catalog.Sort]string{
	catalog.SortFeatured:   "created_unix ASC, id ASC",
	catalog.SortPriceAsc:   "price ASC, created_unix ASC, id ASC",
	catalog.SortPriceDesc:  "price DESC, created_unix ASC, id ASC",
	catalog.SortRatingDesc: "rating IS NULL, rating DESC, created_unix ASC, id ASC",
	catalog.SortNewest:     "created_unix DESC, id DESC",
}

func (r *Products) Insert(ctx context.Context, p *catalog.Product) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products(id, name, category, price, rating, created_unix, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Category, p.Price.InexactFloat64(), p.Rating, p.CreatedAt.UnixNano(), string(doc))
	return err
}

func (r *Products) Get(ctx context.Context, id string) (*catalog.Product, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM products WHERE id=?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	var p catalog.Product
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Products) Find(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	var (
		where []string
		args  []any
	)
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.Search != "" {
		where = append(where, "instr(casefold(name), ?) > 0")
		args = append(args, catalog.Fold(q.Search))
	}
	stmt := "SELECT doc FROM products"
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY " + orderBy[q.Sort] + " LIMIT ? OFFSET ?"
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []catalog.Product{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p catalog.Product
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Products) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Products) Count(ctx context.Context) (int64, error) {
	var c int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM products`).Scan(&c)
	return c, err
}
