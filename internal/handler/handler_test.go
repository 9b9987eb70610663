package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/domain/order"
	"github.com/orderdesk/orderdesk/internal/domain/product"
	"github.com/orderdesk/orderdesk/internal/storeapi"
)

// --- In-memory repositories ---

type memProductRepo struct {
	products map[int64]product.Product
	nextID   int64
}

func newMemProductRepo(products ...product.Product) *memProductRepo {
	m := &memProductRepo{products: make(map[int64]product.Product)}
	for _, p := range products {
		m.products[p.ID] = p
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func (m *memProductRepo) List(_ context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(m.products))
	for id := int64(1); id <= m.nextID; id++ {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *memProductRepo) Create(_ context.Context, p *product.Product) error {
	m.nextID++
	p.ID = m.nextID
	m.products[p.ID] = *p
	return nil
}

func (m *memProductRepo) Update(_ context.Context, p *product.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return product.ErrNotFound
	}
	m.products[p.ID] = *p
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id int64) error {
	if product.Protected(id) {
		return product.ErrProtected
	}
	if _, ok := m.products[id]; !ok {
		return product.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

type memOrderRepo struct {
	orders map[int64]order.Order
	nextID int64
}

func newMemOrderRepo(orders ...order.Order) *memOrderRepo {
	m := &memOrderRepo{orders: make(map[int64]order.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
		if o.ID > m.nextID {
			m.nextID = o.ID
		}
	}
	return m
}

func (m *memOrderRepo) List(_ context.Context) ([]order.Summary, error) {
	out := make([]order.Summary, 0, len(m.orders))
	for id := int64(1); id <= m.nextID; id++ {
		o, ok := m.orders[id]
		if !ok {
			continue
		}
		out = append(out, order.Summary{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			Date:         o.Date,
			ProductCount: len(o.Lines),
			FinalPrice:   o.FinalPrice(),
			Status:       o.Status,
		})
	}
	return out, nil
}

func (m *memOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (m *memOrderRepo) Create(_ context.Context, o *order.Order) (int64, error) {
	m.nextID++
	o.ID = m.nextID
	o.Date = time.Now()
	m.orders[o.ID] = *o
	return o.ID, nil
}

func (m *memOrderRepo) Update(_ context.Context, o *order.Order) error {
	existing, ok := m.orders[o.ID]
	if !ok {
		return order.ErrNotFound
	}
	o.Date = existing.Date
	m.orders[o.ID] = *o
	return nil
}

func (m *memOrderRepo) SetStatus(_ context.Context, id int64, status order.Status) error {
	o, ok := m.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *memOrderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.orders[id]; !ok {
		return order.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// --- Helpers ---

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestServer(t *testing.T, products *memProductRepo, orders *memOrderRepo) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	New(products, orders).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, in any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		require.NoError(t, err)
		body = bytes.NewReader(buf)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func seedProducts() *memProductRepo {
	return newMemProductRepo(
		product.Product{ID: 1, Name: "Azucar", UnitPrice: dec("2.80")},
		product.Product{ID: 2, Name: "Anchor", UnitPrice: dec("38.90")},
		product.Product{ID: 3, Name: "Harina", UnitPrice: dec("5.50")},
	)
}

// --- Product routes ---

func TestListProducts(t *testing.T) {
	srv := newTestServer(t, seedProducts(), newMemOrderRepo())

	resp, err := http.Get(srv.URL + "/api/products")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	products := decodeBody[[]storeapi.ProductDTO](t, resp)
	require.Len(t, products, 3)
	assert.Equal(t, "Azucar", products[0].Name)
}

func TestCreateProduct(t *testing.T) {
	repo := seedProducts()
	srv := newTestServer(t, repo, newMemOrderRepo())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", storeapi.ProductInput{
		Name:      "  Queso  ",
		UnitPrice: dec("12.00"),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[storeapi.ProductDTO](t, resp)
	assert.EqualValues(t, 4, created.ID)
	assert.Equal(t, "Queso", created.Name, "name stored trimmed")
}

func TestCreateProduct_Invalid(t *testing.T) {
	srv := newTestServer(t, seedProducts(), newMemOrderRepo())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/products", storeapi.ProductInput{
		Name:      "   ",
		UnitPrice: dec("12.00"),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/products", storeapi.ProductInput{
		Name:      "Queso",
		UnitPrice: decimal.Zero,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDeleteProduct_Protected(t *testing.T) {
	repo := seedProducts()
	srv := newTestServer(t, repo, newMemOrderRepo())

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/products/1", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, repo.products, 3)
}

// --- Order routes ---

func TestCreateOrder_ForcesPending(t *testing.T) {
	orders := newMemOrderRepo()
	srv := newTestServer(t, seedProducts(), orders)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", storeapi.OrderDTO{
		OrderNumber: "ORD-1",
		Status:      "COMPLETED",
		Products:    []storeapi.OrderLineDTO{{ProductID: 1, Qty: 3, UnitPrice: dec("2.80")}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[storeapi.CreatedDTO](t, resp)
	assert.Equal(t, order.StatusPending, orders.orders[created.ID].Status)
}

func TestCreateOrder_Validation(t *testing.T) {
	srv := newTestServer(t, seedProducts(), newMemOrderRepo())

	tests := []struct {
		name string
		in   storeapi.OrderDTO
	}{
		{"blank order number", storeapi.OrderDTO{
			OrderNumber: "   ",
			Products:    []storeapi.OrderLineDTO{{ProductID: 1, Qty: 1, UnitPrice: dec("2.80")}},
		}},
		{"no lines", storeapi.OrderDTO{OrderNumber: "ORD-1"}},
		{"zero qty", storeapi.OrderDTO{
			OrderNumber: "ORD-1",
			Products:    []storeapi.OrderLineDTO{{ProductID: 1, Qty: 0, UnitPrice: dec("2.80")}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", tt.in)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		})
	}
}

func TestGetOrder(t *testing.T) {
	orders := newMemOrderRepo(order.Order{
		ID:          42,
		OrderNumber: "ORD-42",
		Status:      order.StatusPending,
		Date:        time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Lines:       []order.Line{{ProductID: 1, Qty: 3, UnitPrice: dec("2.80")}},
	})
	srv := newTestServer(t, seedProducts(), orders)

	resp, err := http.Get(srv.URL + "/api/orders/42")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dto := decodeBody[storeapi.OrderDTO](t, resp)
	assert.Equal(t, "ORD-42", dto.OrderNumber)
	assert.Equal(t, "2026-08-30", dto.Date)
	require.Len(t, dto.Products, 1)

	resp, err = http.Get(srv.URL + "/api/orders/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateOrder_CompletedLocked(t *testing.T) {
	orders := newMemOrderRepo(order.Order{
		ID:          42,
		OrderNumber: "ORD-42",
		Status:      order.StatusCompleted,
		Lines:       []order.Line{{ProductID: 1, Qty: 3, UnitPrice: dec("2.80")}},
	})
	srv := newTestServer(t, seedProducts(), orders)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/orders/42", storeapi.OrderDTO{
		OrderNumber: "ORD-42b",
		Status:      "COMPLETED",
		Products:    []storeapi.OrderLineDTO{{ProductID: 1, Qty: 9, UnitPrice: dec("2.80")}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ORD-42", orders.orders[42].OrderNumber, "unchanged")
}

func TestSetOrderStatus(t *testing.T) {
	orders := newMemOrderRepo(order.Order{
		ID:          42,
		OrderNumber: "ORD-42",
		Status:      order.StatusPending,
		Lines:       []order.Line{{ProductID: 1, Qty: 3, UnitPrice: dec("2.80")}},
	})
	srv := newTestServer(t, seedProducts(), orders)

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/orders/42/status", storeapi.StatusInput{Status: "IN_PROGRESS"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, order.StatusInProgress, orders.orders[42].Status)

	// Backward transition refused.
	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/orders/42/status", storeapi.StatusInput{Status: "PENDING"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Terminal state refuses further changes.
	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/orders/42/status", storeapi.StatusInput{Status: "COMPLETED"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/orders/42/status", storeapi.StatusInput{Status: "IN_PROGRESS"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown status value.
	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/orders/42/status", storeapi.StatusInput{Status: "SHIPPED"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListOrders(t *testing.T) {
	orders := newMemOrderRepo(order.Order{
		ID:          1,
		OrderNumber: "ORD-1",
		Status:      order.StatusPending,
		Date:        time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Lines: []order.Line{
			{ProductID: 1, Qty: 5, UnitPrice: dec("2.80")},
			{ProductID: 2, Qty: 1, UnitPrice: dec("38.90")},
		},
	})
	srv := newTestServer(t, seedProducts(), orders)

	resp, err := http.Get(srv.URL + "/api/orders")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	summaries := decodeBody[[]storeapi.OrderSummaryDTO](t, resp)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].Products)
	assert.Equal(t, "52.90", summaries[0].FinalPrice.StringFixed(2))
}

func TestDeleteOrder(t *testing.T) {
	orders := newMemOrderRepo(order.Order{ID: 1, OrderNumber: "ORD-1", Status: order.StatusPending})
	srv := newTestServer(t, seedProducts(), orders)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/orders/1", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, orders.orders)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/orders/1", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
