package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Stores that cannot filter or order natively run the query in process with
// the helpers below. Their results must match the SQL and Mongo stores.

// Fold is the case folding search uses in every store.
func Fold(s string) string { return cases.Fold().String(s) }

func (q Query) Matches(p Product) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Search != "" && !strings.Contains(Fold(p.Name), Fold(q.Search)) {
		return false
	}
	return true
}

// SortProducts orders ps in place. Featured keeps creation order.
func SortProducts(ps []Product, s Sort) {
	byCreated := func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.Before(ps[j].CreatedAt)
		}
		return ps[i].ID < ps[j].ID
	}
	var less func(i, j int) bool
	switch s {
	case SortPriceAsc:
		less = func(i, j int) bool {
			if c := ps[i].Price.Cmp(ps[j].Price); c != 0 {
				return c < 0
			}
			return byCreated(i, j)
		}
	case SortPriceDesc:
		less = func(i, j int) bool {
			if c := ps[i].Price.Cmp(ps[j].Price); c != 0 {
				return c > 0
			}
			return byCreated(i, j)
		}
	case SortRatingDesc:
		less = func(i, j int) bool {
			ri, rj := ps[i].Rating, ps[j].Rating
			switch {
			case ri == nil && rj == nil:
				return byCreated(i, j)
			case ri == nil:
				return false
			case rj == nil:
				return true
			case *ri != *rj:
				return *ri > *rj
			}
			return byCreated(i, j)
		}
	case SortNewest:
		less = func(i, j int) bool { return byCreated(j, i) }
	default:
		less = byCreated
	}
	sort.SliceStable(ps, less)
}

// Apply filters, orders and pages ps according to q.
func (q Query) Apply(ps []Product) []Product {
	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	SortProducts(out, q.Sort)
	if q.Offset < 0 || q.Offset >= len(out) {
		return []Product{}
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
