// Package storeapi implements the client side of the order store API: the
// catalog and order collaborators the composition engine talks to, plus the
// wire types shared with the reference service.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/orderdesk/orderdesk/internal/domain/order"
	"github.com/orderdesk/orderdesk/internal/domain/product"
)

// Client talks to a store service over HTTP. It performs no caching and no
// automatic retries: after a mutation the caller refetches whatever lists it
// displays.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient returns a Client for the store at baseURL, e.g.
// "http://localhost:8080". The transport is instrumented with OpenTelemetry.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: otelhttp.NewTransport(&http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			}),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchProducts returns the full product catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]product.Product, error) {
	var dtos []ProductDTO
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &dtos); err != nil {
		return nil, err
	}
	products := make([]product.Product, len(dtos))
	for i, d := range dtos {
		products[i] = d.ToProduct()
	}
	return products, nil
}

// CreateProduct adds a catalog item and returns the stored record.
func (c *Client) CreateProduct(ctx context.Context, p product.Product) (*product.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var dto ProductDTO
	in := ProductInput{Name: strings.TrimSpace(p.Name), UnitPrice: p.UnitPrice}
	if err := c.do(ctx, http.MethodPost, "/api/products", in, &dto); err != nil {
		return nil, err
	}
	out := dto.ToProduct()
	return &out, nil
}

// UpdateProduct replaces a catalog item's name and price.
func (c *Client) UpdateProduct(ctx context.Context, p product.Product) (*product.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var dto ProductDTO
	in := ProductInput{Name: strings.TrimSpace(p.Name), UnitPrice: p.UnitPrice}
	path := fmt.Sprintf("/api/products/%d", p.ID)
	if err := c.do(ctx, http.MethodPatch, path, in, &dto); err != nil {
		return nil, err
	}
	out := dto.ToProduct()
	return &out, nil
}

// DeleteProduct removes a catalog item. Deletes of the protected seed
// products are rejected before any network call.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if product.Protected(id) {
		return product.ErrProtected
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, nil)
}

// ListOrders returns summaries for every order.
func (c *Client) ListOrders(ctx context.Context) ([]order.Summary, error) {
	var dtos []OrderSummaryDTO
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &dtos); err != nil {
		return nil, err
	}

	summaries := make([]order.Summary, len(dtos))
	for i, d := range dtos {
		st, err := order.ParseStatus(d.Status)
		if err != nil {
			return nil, errors.Wrapf(err, "order %d", d.ID)
		}
		date, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			return nil, errors.Wrapf(err, "order %d date", d.ID)
		}
		summaries[i] = order.Summary{
			ID:           d.ID,
			OrderNumber:  d.OrderNumber,
			Date:         date,
			ProductCount: d.Products,
			FinalPrice:   d.FinalPrice,
			Status:       st,
		}
	}
	return summaries, nil
}

// FetchOrder returns one persisted order with its flattened lines.
func (c *Client) FetchOrder(ctx context.Context, id int64) (*order.Order, error) {
	var dto OrderDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &dto); err != nil {
		return nil, err
	}

	st, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, errors.Wrapf(err, "order %d", id)
	}
	o := &order.Order{
		ID:          dto.ID,
		OrderNumber: dto.OrderNumber,
		Status:      st,
		Lines:       ToLines(dto.Products),
	}
	if dto.Date != "" {
		if o.Date, err = time.Parse(dateLayout, dto.Date); err != nil {
			return nil, errors.Wrapf(err, "order %d date", id)
		}
	}
	return o, nil
}

// CreateOrder submits a new order and returns its id.
func (c *Client) CreateOrder(ctx context.Context, o *order.Order) (int64, error) {
	in := OrderDTO{
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		Products:    FromLines(o.Lines),
	}
	var created CreatedDTO
	if err := c.do(ctx, http.MethodPost, "/api/orders", in, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// UpdateOrder replaces the persisted order identified by o.ID.
func (c *Client) UpdateOrder(ctx context.Context, o *order.Order) error {
	in := OrderDTO{
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		Products:    FromLines(o.Lines),
	}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/orders/%d", o.ID), in, nil)
}

// SetOrderStatus performs the out-of-band status change operation.
func (c *Client) SetOrderStatus(ctx context.Context, id int64, status order.Status) error {
	if !status.Valid() {
		return order.ErrInvalidStatus
	}
	path := fmt.Sprintf("/api/orders/%d/status", id)
	return c.do(ctx, http.MethodPatch, path, StatusInput{Status: string(status)}, nil)
}

// DeleteOrder removes a persisted order.
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/orders/%d", id), nil, nil)
}

// do runs one JSON round trip. in and out may be nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.asError(resp, method, path)
	}
	if out == nil {
		// Drain so the connection is reusable.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

// asError maps an error response onto the domain error taxonomy.
func (c *Client) asError(resp *http.Response, method, path string) error {
	var body ErrorDTO
	msg := resp.Status
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Message != "" {
		msg = body.Message
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		if strings.HasPrefix(path, "/api/products") {
			return product.ErrNotFound
		}
		return order.ErrNotFound
	case http.StatusConflict:
		if strings.Contains(msg, "transition") {
			return order.ErrInvalidTransition
		}
		return order.ErrLocked
	case http.StatusUnprocessableEntity:
		if strings.HasPrefix(path, "/api/products") && method == http.MethodDelete {
			return product.ErrProtected
		}
		return errors.Errorf("%s %s: %s", method, path, msg)
	default:
		return errors.Errorf("%s %s: %s", method, path, msg)
	}
}
