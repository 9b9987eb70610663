package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/orderdesk/orderdesk/internal/domain/product"
	"github.com/orderdesk/orderdesk/internal/storeapi"
)

// ListProducts returns the full catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]storeapi.ProductDTO, len(products))
	for i, p := range products {
		out[i] = storeapi.FromProduct(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateProduct adds a catalog item.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in storeapi.ProductInput
	if !decode(w, r, &in) {
		return
	}

	p := product.Product{Name: strings.TrimSpace(in.Name), UnitPrice: in.UnitPrice}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.products.Create(r.Context(), &p); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, storeapi.FromProduct(p))
}

// UpdateProduct replaces a catalog item's name and price.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in storeapi.ProductInput
	if !decode(w, r, &in) {
		return
	}

	p := product.Product{ID: id, Name: strings.TrimSpace(in.Name), UnitPrice: in.UnitPrice}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	switch err := h.products.Update(r.Context(), &p); {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case err != nil:
		internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, storeapi.FromProduct(p))
	}
}

// DeleteProduct removes a catalog item. The seed products are refused.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	switch err := h.products.Delete(r.Context(), id); {
	case errors.Is(err, product.ErrProtected):
		writeError(w, http.StatusUnprocessableEntity, "seed products cannot be deleted")
	case errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case err != nil:
		internalError(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
