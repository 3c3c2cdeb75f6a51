package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ahinestrog/smartkart/Backend/src/cart"
	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type cartHandlers struct{ svc CartService }

type itemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (h *cartHandlers) reply(w http.ResponseWriter, r *http.Request, v cart.View, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *cartHandlers) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context())
	h.reply(w, r, v, err)
}

func (h *cartHandlers) add(w http.ResponseWriter, r *http.Request) {
	var in itemRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	v, err := h.svc.Add(r.Context(), in.ProductID, qty)
	h.reply(w, r, v, err)
}

func (h *cartHandlers) update(w http.ResponseWriter, r *http.Request) {
	var in itemRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Quantity == nil {
		writeError(w, r, fault.InvalidArgument("quantity is required"))
		return
	}
	v, err := h.svc.Update(r.Context(), in.ProductID, *in.Quantity)
	h.reply(w, r, v, err)
}

func (h *cartHandlers) remove(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Remove(r.Context(), chi.URLParam(r, "productId"))
	h.reply(w, r, v, err)
}

func (h *cartHandlers) clear(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Clear(r.Context())
	h.reply(w, r, v, err)
}
