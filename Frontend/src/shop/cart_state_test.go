package shop

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"

	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

func newProduct(t *testing.T, st *stack, name, price string) string {
	t.Helper()
	p, err := st.catalog.Create(st.adminCtx(), catalog.Product{
		Name:     name,
		Category: "electronics",
		Price:    decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p.ID
}

func TestCartStateScenario(t *testing.T) {
	st := newStack(t)
	p1 := newProduct(t, st, "Premium Wireless Headphones", "199.99")
	ctx := context.Background()

	cs := NewCartState(st.client(), zerolog.Nop())
	if err := cs.SetSession(ctx, st.session(t, "u1")); err != nil {
		t.Fatal(err)
	}
	if cs.TotalItems() != 0 {
		t.Fatalf("fresh cart has %d items", cs.TotalItems())
	}

	steps := []struct {
		name  string
		do    func() error
		items int
		total string
	}{
		{"add 2", func() error { return cs.Add(ctx, p1, 2) }, 2, "399.98"},
		{"add 3", func() error { return cs.Add(ctx, p1, 3) }, 5, "999.95"},
		{"update 1", func() error { return cs.Update(ctx, p1, 1) }, 1, "199.99"},
		{"remove", func() error { return cs.Remove(ctx, p1) }, 0, "0"},
	}
	for _, s := range steps {
		if err := s.do(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if cs.TotalItems() != s.items || cs.TotalPrice().String() != s.total {
			t.Fatalf("%s: items=%d total=%s", s.name, cs.TotalItems(), cs.TotalPrice())
		}
		if cs.Busy() {
			t.Fatalf("%s: still busy", s.name)
		}
	}
	if len(cs.Items()) != 0 {
		t.Errorf("items left: %+v", cs.Items())
	}
}

func TestCartStateSessionChanges(t *testing.T) {
	st := newStack(t)
	p1 := newProduct(t, st, "Smart Fitness Watch", "299.99")
	ctx := context.Background()
	cs := NewCartState(st.client(), zerolog.Nop())

	if err := cs.SetSession(ctx, st.session(t, "alice")); err != nil {
		t.Fatal(err)
	}
	if err := cs.Add(ctx, p1, 1); err != nil {
		t.Fatal(err)
	}

	if err := cs.SetSession(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if cs.TotalItems() != 0 || cs.Session() != nil {
		t.Errorf("logout kept state: %d items", cs.TotalItems())
	}
	err := cs.Add(ctx, p1, 1)
	if !errors.Is(err, ErrAuthRequired) || !fault.Is(err, codes.Unauthenticated) {
		t.Errorf("add without session: %v", err)
	}

	if err := cs.SetSession(ctx, st.session(t, "bob")); err != nil {
		t.Fatal(err)
	}
	if cs.TotalItems() != 0 {
		t.Errorf("bob sees alice's cart")
	}
	if err := cs.SetSession(ctx, st.session(t, "alice")); err != nil {
		t.Fatal(err)
	}
	if cs.TotalItems() != 1 {
		t.Errorf("alice's cart not refetched: %d", cs.TotalItems())
	}
}

func TestCartStateErrorsPropagate(t *testing.T) {
	st := newStack(t)
	p1 := newProduct(t, st, "Wireless Charging Pad", "49.99")
	ctx := context.Background()
	cs := NewCartState(st.client(), zerolog.Nop())
	if err := cs.SetSession(ctx, st.session(t, "u1")); err != nil {
		t.Fatal(err)
	}
	if err := cs.Add(ctx, p1, 1); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{"zero quantity", func() error { return cs.Add(ctx, p1, 0) }, codes.InvalidArgument},
		{"unknown product", func() error { return cs.Add(ctx, "missing", 1) }, codes.NotFound},
		{"update absent line", func() error { return cs.Update(ctx, "missing", 2) }, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fault.Code(tt.call()); got != tt.want {
				t.Errorf("code = %v, want %v", got, tt.want)
			}
			if cs.Busy() {
				t.Error("busy not reset")
			}
			if cs.TotalItems() != 1 {
				t.Errorf("snapshot changed: %d", cs.TotalItems())
			}
		})
	}

	if err := cs.Remove(ctx, "never-added"); err != nil {
		t.Errorf("remove absent: %v", err)
	}
	if err := cs.Clear(ctx); err != nil || cs.TotalItems() != 0 || !cs.TotalPrice().IsZero() {
		t.Errorf("clear: %v, %d items", err, cs.TotalItems())
	}
}

func TestCartStateUnauthorized(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()
	cs := NewCartState(st.client(), zerolog.Nop())
	var hooked atomic.Int32
	cs.OnAuthRequired = func(error) { hooked.Add(1) }

	err := cs.SetSession(ctx, &Session{UserID: "u1", Token: "expired"})
	if !errors.Is(err, ErrAuthRequired) || !fault.Is(err, codes.Unauthenticated) {
		t.Fatalf("bad token: %v", err)
	}
	if err := cs.Clear(ctx); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("clear with bad token: %v", err)
	}
	if hooked.Load() != 2 {
		t.Errorf("hook ran %d times", hooked.Load())
	}
}

func TestCartStateRefetchesAfterEveryMutation(t *testing.T) {
	var gets, posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
			_, _ = w.Write([]byte(`{"items":[{"productId":"p1","name":"Pad","price":"2.50","quantity":2}],"totalItems":2,"totalPrice":"5"}`))
		default:
			posts.Add(1)
			// a mutation response the state must not trust
			_, _ = w.Write([]byte(`{"items":[],"totalItems":0,"totalPrice":"0"}`))
		}
	}))
	defer srv.Close()

	cs := NewCartState(NewClient(srv.URL, srv.Client()), zerolog.Nop())
	ctx := context.Background()
	if err := cs.SetSession(ctx, &Session{UserID: "u1", Token: "t"}); err != nil {
		t.Fatal(err)
	}
	for _, call := range []func() error{
		func() error { return cs.Add(ctx, "p1", 1) },
		func() error { return cs.Update(ctx, "p1", 2) },
		func() error { return cs.Remove(ctx, "p1") },
		func() error { return cs.Clear(ctx) },
	} {
		if err := call(); err != nil {
			t.Fatal(err)
		}
		if cs.TotalItems() != 2 || cs.TotalPrice().String() != "5" {
			t.Fatalf("snapshot not taken from refetch: %d %s", cs.TotalItems(), cs.TotalPrice())
		}
	}
	if gets.Load() != 5 || posts.Load() != 4 {
		t.Errorf("gets=%d mutations=%d", gets.Load(), posts.Load())
	}
}

func TestCartStateConcurrentAdds(t *testing.T) {
	st := newStack(t)
	p1 := newProduct(t, st, "Bluetooth Speaker Portable", "129.99")
	ctx := context.Background()
	cs := NewCartState(st.client(), zerolog.Nop())
	if err := cs.SetSession(ctx, st.session(t, "u1")); err != nil {
		t.Fatal(err)
	}

	const n = 12
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error { return cs.Add(ctx, p1, 1) })
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if cs.Busy() {
		t.Error("busy after all calls returned")
	}
	if err := cs.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if cs.TotalItems() != n {
		t.Errorf("items = %d, want %d", cs.TotalItems(), n)
	}
}
