// Package api exposes the catalog and cart services over REST under /api.
package api

import (
	"context"
	"iter"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/ahinestrog/smartkart/Backend/src/cart"
	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/auth"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type CatalogService interface {
	List(ctx context.Context, f catalog.Filter) (iter.Seq2[catalog.Product, error], error)
	Get(ctx context.Context, id string) (*catalog.Product, error)
	Create(ctx context.Context, p catalog.Product) (*catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type CartService interface {
	Get(ctx context.Context) (cart.View, error)
	Add(ctx context.Context, productID string, qty int) (cart.View, error)
	Update(ctx context.Context, productID string, qty int) (cart.View, error)
	Remove(ctx context.Context, productID string) (cart.View, error)
	Clear(ctx context.Context) (cart.View, error)
}

type Options struct {
	Catalog  CatalogService
	Cart     CartService
	Verifier auth.Verifier
	// Health reports store reachability for /healthz. Nil means always up.
	Health         func(ctx context.Context) error
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(withLog)
	r.Use(middleware.Recoverer)
	if o.RequestTimeout > 0 {
		r.Use(middleware.Timeout(o.RequestTimeout))
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   o.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, fault.NotFound("route %s not found", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed on " + r.URL.Path})
	})

	r.Get("/healthz", healthHandler(o.Health))

	requireAuth := auth.Require(o.Verifier, writeError)
	ch := &catalogHandlers{svc: o.Catalog}
	kh := &cartHandlers{svc: o.Cart}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", ch.list)
		r.Get("/products/featured", ch.featured)
		r.Get("/products/{id}", ch.get)
		r.With(requireAuth).Post("/products", ch.create)
		r.Get("/categories", ch.categories)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/cart", kh.get)
			r.Post("/cart/add", kh.add)
			r.Put("/cart/update", kh.update)
			r.Delete("/cart/remove/{productId}", kh.remove)
			r.Delete("/cart/clear", kh.clear)
		})
	})
	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				writeError(w, r, fault.Unavailable("store", err))
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
