package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ahinestrog/smartkart/Backend/src/catalog"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type catalogHandlers struct{ svc CatalogService }

type productPage struct {
	Products []catalog.Product `json:"products"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

func (h *catalogHandlers) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, fault.InvalidArgument("page must be an integer"))
			return
		}
		f.Page = n
	}
	h.page(w, r, f)
}

// featured is the first page in featured order.
func (h *catalogHandlers) featured(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, catalog.Filter{Sort: "featured", Page: 1})
}

func (h *catalogHandlers) page(w http.ResponseWriter, r *http.Request, f catalog.Filter) {
	seq, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := productPage{Products: []catalog.Product{}, Page: max(f.Page, 1), PageSize: catalog.PageSize}
	for p, err := range seq {
		if err != nil {
			writeError(w, r, err)
			return
		}
		out.Products = append(out.Products, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *catalogHandlers) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *catalogHandlers) create(w http.ResponseWriter, r *http.Request) {
	var in catalog.Product
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *catalogHandlers) categories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": cs})
}
