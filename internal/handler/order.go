package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/orderdesk/orderdesk/internal/domain/order"
	"github.com/orderdesk/orderdesk/internal/storeapi"
)

// ListOrders returns summaries for every order.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.orders.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]storeapi.OrderSummaryDTO, len(summaries))
	for i, s := range summaries {
		out[i] = storeapi.OrderSummaryDTO{
			ID:          s.ID,
			OrderNumber: s.OrderNumber,
			Date:        s.Date.Format("2006-01-02"),
			Products:    s.ProductCount,
			FinalPrice:  s.FinalPrice,
			Status:      string(s.Status),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetOrder returns one order with its flattened lines.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
		return
	case err != nil:
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, storeapi.OrderDTO{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		Date:        o.Date.Format("2006-01-02"),
		Products:    storeapi.FromLines(o.Lines),
	})
}

// orderFromInput validates the shared create/update payload rules. It writes
// the error response itself and returns nil on failure.
func orderFromInput(w http.ResponseWriter, in storeapi.OrderDTO) *order.Order {
	number := strings.TrimSpace(in.OrderNumber)
	if number == "" {
		writeError(w, http.StatusUnprocessableEntity, "order number is required")
		return nil
	}
	if len(in.Products) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "order needs at least one line item")
		return nil
	}
	for _, l := range in.Products {
		if l.Qty < 1 {
			writeError(w, http.StatusUnprocessableEntity, "line quantity must be at least 1")
			return nil
		}
	}
	return &order.Order{
		OrderNumber: number,
		Lines:       storeapi.ToLines(in.Products),
	}
}

// CreateOrder persists a new order. New orders always start PENDING,
// whatever status the client sent.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in storeapi.OrderDTO
	if !decode(w, r, &in) {
		return
	}
	o := orderFromInput(w, in)
	if o == nil {
		return
	}
	o.Status = order.StatusPending

	id, err := h.orders.Create(r.Context(), o)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, storeapi.CreatedDTO{ID: id})
}

// UpdateOrder replaces an order's number, status and lines. Completed orders
// are immutable.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in storeapi.OrderDTO
	if !decode(w, r, &in) {
		return
	}

	existing, err := h.orders.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
		return
	case err != nil:
		internalError(w, r, err)
		return
	}
	if existing.Status.Terminal() {
		writeError(w, http.StatusConflict, "cannot modify a completed order")
		return
	}

	o := orderFromInput(w, in)
	if o == nil {
		return
	}
	st, err := order.ParseStatus(in.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid order status")
		return
	}
	o.ID = id
	o.Status = st

	if err := h.orders.Update(r.Context(), o); err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetOrderStatus is the out-of-band status change. Transitions only move
// forward and COMPLETED is terminal.
func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in storeapi.StatusInput
	if !decode(w, r, &in) {
		return
	}
	st, err := order.ParseStatus(in.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid order status")
		return
	}

	existing, err := h.orders.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
		return
	case err != nil:
		internalError(w, r, err)
		return
	}
	if !existing.Status.CanTransition(st) {
		if existing.Status.Terminal() {
			writeError(w, http.StatusConflict, "cannot modify a completed order")
		} else {
			writeError(w, http.StatusConflict, "invalid status transition")
		}
		return
	}

	if err := h.orders.SetStatus(r.Context(), id, st); err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteOrder removes an order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	switch err := h.orders.Delete(r.Context(), id); {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case err != nil:
		internalError(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
