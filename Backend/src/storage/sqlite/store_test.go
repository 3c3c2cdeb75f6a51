package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"

	"github.com/ahinestrog/smartkart/Backend/src/cart"
	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rating(f float64) *float64 { return &f }

func insertFixtures(t *testing.T, r *Products) {
	t.Helper()
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	fixtures := []catalog.Product{
		{ID: "a", Name: "Premium Wireless Headphones", Category: "electronics", Price: decimal.RequireFromString("199.99"), Rating: rating(4.5)},
		{ID: "b", Name: "Wireless Charging Pad", Category: "electronics", Price: decimal.RequireFromString("49.99"), Rating: rating(4.6)},
		{ID: "c", Name: "Smart Fitness Watch", Category: "electronics", Price: decimal.RequireFromString("299.99")},
		{ID: "d", Name: "100%_Cotton Tee", Category: "fashion", Price: decimal.RequireFromString("19.00"), Rating: rating(3.9)},
	}
	for i := range fixtures {
		fixtures[i].CreatedAt = t0.Add(time.Duration(i) * time.Minute)
		fixtures[i].UpdatedAt = fixtures[i].CreatedAt
		if err := r.Insert(context.Background(), &fixtures[i]); err != nil {
			t.Fatal(err)
		}
	}
}

func TestProductsFind(t *testing.T) {
	r := openTest(t).Products()
	insertFixtures(t, r)

	tests := []struct {
		name string
		q    catalog.Query
		want string
	}{
		{"featured", catalog.Query{}, "[a b c d]"},
		{"electronics by price", catalog.Query{Category: "electronics", Sort: catalog.SortPriceAsc}, "[b a c]"},
		{"price desc", catalog.Query{Sort: catalog.SortPriceDesc}, "[c a b d]"},
		{"rating unrated last", catalog.Query{Sort: catalog.SortRatingDesc}, "[b a d c]"},
		{"newest", catalog.Query{Sort: catalog.SortNewest}, "[d c b a]"},
		{"search ignores case", catalog.Query{Search: "wIrElEsS"}, "[a b]"},
		{"search escapes wildcards", catalog.Query{Search: "%_c"}, "[d]"},
		{"page", catalog.Query{Offset: 2, Limit: 2}, "[c d]"},
		{"past the end", catalog.Query{Offset: 12, Limit: 12}, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := r.Find(context.Background(), tt.q)
			if err != nil {
				t.Fatal(err)
			}
			got := make([]string, len(ps))
			for i, p := range ps {
				got[i] = p.ID
			}
			if fmt.Sprint(got) != tt.want {
				t.Errorf("got %v, want %s", got, tt.want)
			}
		})
	}
}

// Name search folds case beyond ASCII, the same way Query.Matches does.
func TestProductsFindFoldsUnicode(t *testing.T) {
	r := openTest(t).Products()
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	all := []catalog.Product{
		{ID: "torch", Name: "Crème Brûlée Torch", Category: "kitchen", Price: decimal.RequireFromString("24.50")},
		{ID: "tee", Name: "ÉCOLE Tee", Category: "fashion", Price: decimal.RequireFromString("15.00")},
		{ID: "mug", Name: "Straße Mug", Category: "kitchen", Price: decimal.RequireFromString("9.00")},
		{ID: "poster", Name: "ΣΊΣΥΦΟΣ Poster", Category: "art", Price: decimal.RequireFromString("12.00")},
	}
	for i := range all {
		all[i].CreatedAt = t0.Add(time.Duration(i) * time.Minute)
		if err := r.Insert(context.Background(), &all[i]); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		search string
		want   string
	}{
		{"CRÈME", "[torch]"},
		{"brûlée", "[torch]"},
		{"école", "[tee]"},
		{"STRASSE", "[mug]"},
		{"σίσυφος", "[poster]"},
		{"e", "[torch tee mug poster]"},
		{"crème brulee", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			q := catalog.Query{Search: tt.search}
			ps, err := r.Find(context.Background(), q)
			if err != nil {
				t.Fatal(err)
			}
			got := make([]string, len(ps))
			for i, p := range ps {
				got[i] = p.ID
			}
			if fmt.Sprint(got) != tt.want {
				t.Errorf("got %v, want %s", got, tt.want)
			}
			matched := []string{}
			for _, p := range all {
				if q.Matches(p) {
					matched = append(matched, p.ID)
				}
			}
			if fmt.Sprint(matched) != tt.want {
				t.Errorf("in-process match %v, want %s", matched, tt.want)
			}
		})
	}
}

func TestProductsGetAndCategories(t *testing.T) {
	r := openTest(t).Products()
	insertFixtures(t, r)
	ctx := context.Background()

	p, err := r.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Price.Equal(decimal.RequireFromString("199.99")) || p.Rating == nil || *p.Rating != 4.5 {
		t.Errorf("round trip lost data: %+v", p)
	}
	if _, err := r.Get(ctx, "zzz"); !fault.Is(err, codes.NotFound) {
		t.Errorf("want NotFound, got %v", err)
	}

	cs, err := r.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(cs) != "[electronics fashion]" {
		t.Errorf("categories = %v", cs)
	}
	if n, _ := r.Count(ctx); n != 4 {
		t.Errorf("count = %d", n)
	}
}

func TestSeedThroughService(t *testing.T) {
	s := catalog.NewService(openTest(t).Products(), nil)
	n, err := s.Seed(context.Background())
	if err != nil || n == 0 {
		t.Fatalf("seed = %d, %v", n, err)
	}
	ps, err := s.Page(context.Background(), catalog.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	seed, _ := catalog.SeedProducts()
	for i, p := range ps {
		if p.Name != seed[i].Name {
			t.Fatalf("featured order differs from seed at %d: %s", i, p.Name)
		}
	}
}

func TestCartsMutate(t *testing.T) {
	r := openTest(t).Carts()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	c, err := r.Get(ctx, "u1")
	if err != nil || len(c.Items) != 0 || c.Version != 0 {
		t.Fatalf("missing cart should read empty: %+v, %v", c, err)
	}

	add := func(c *cart.Cart) (bool, error) {
		c.Add(cart.LineItem{ProductID: "p1", Name: "Pad", Price: decimal.RequireFromString("49.99"), Quantity: 2})
		c.UpdatedAt = now
		return true, nil
	}
	if _, err := r.Mutate(ctx, "u1", add); err != nil {
		t.Fatal(err)
	}
	c, err = r.Mutate(ctx, "u1", add)
	if err != nil {
		t.Fatal(err)
	}
	if c.Version != 2 || c.Items[0].Quantity != 4 || c.CreatedAt.IsZero() {
		t.Errorf("after two adds: %+v", c)
	}

	unchanged := func(c *cart.Cart) (bool, error) { return c.Remove("absent"), nil }
	c, err = r.Mutate(ctx, "u1", unchanged)
	if err != nil || c.Version != 2 {
		t.Errorf("no-op mutate bumped version: %+v, %v", c, err)
	}

	failing := func(c *cart.Cart) (bool, error) {
		c.Clear()
		return true, fault.NotFound("nope")
	}
	if _, err := r.Mutate(ctx, "u1", failing); !fault.Is(err, codes.NotFound) {
		t.Errorf("fn error not returned: %v", err)
	}
	c, _ = r.Get(ctx, "u1")
	if len(c.Items) != 1 || !c.TotalPrice().Equal(decimal.RequireFromString("199.96")) {
		t.Errorf("failed mutate leaked a write: %+v", c)
	}
}

func TestConcurrentCartAdds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carts.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	r := s.Carts()

	const n = 40
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := r.Mutate(ctx, "u1", func(c *cart.Cart) (bool, error) {
				c.Add(cart.LineItem{ProductID: "p1", Price: decimal.NewFromInt(1), Quantity: 1})
				c.UpdatedAt = time.Now()
				return true, nil
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	c, err := r.Get(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if c.TotalItems() != n || c.Version != n {
		t.Errorf("items=%d version=%d, want %d", c.TotalItems(), c.Version, n)
	}
}
