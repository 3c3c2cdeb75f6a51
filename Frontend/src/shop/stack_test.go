package shop

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahinestrog/smartkart/Backend/src/api"
	"github.com/ahinestrog/smartkart/Backend/src/cart"
	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/auth"
	"github.com/ahinestrog/smartkart/Backend/src/storage/sqlite"
)

const testSecret = "shop-test-secret"

// stack is a full backend on an in-memory database.
type stack struct {
	srv     *httptest.Server
	store   *sqlite.Store
	catalog *catalog.Service
}

func newStack(t testing.TB) *stack {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	products := store.Products()
	cat := catalog.NewService(products, nil)
	v, err := auth.NewJWTVerifier(testSecret, 64)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(api.NewRouter(api.Options{
		Catalog:  cat,
		Cart:     cart.NewService(store.Carts(), products, nil),
		Verifier: v,
	}))
	t.Cleanup(func() {
		srv.Close()
		_ = store.Close()
	})
	return &stack{srv: srv, store: store, catalog: cat}
}

func (s *stack) client() *Client { return NewClient(s.srv.URL+"/api", s.srv.Client()) }

func (s *stack) session(t testing.TB, user string) *Session {
	t.Helper()
	tok, err := auth.Issue(testSecret, user, false, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return &Session{UserID: user, Token: tok}
}

func (s *stack) adminCtx() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: "admin", Admin: true})
}
