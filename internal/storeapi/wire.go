package storeapi

import (
	"github.com/shopspring/decimal"

	"github.com/orderdesk/orderdesk/internal/domain/order"
	"github.com/orderdesk/orderdesk/internal/domain/product"
)

// Wire types shared by the store client and the reference service. Prices
// travel as decimal strings so NUMERIC values survive the round trip.

// ProductDTO is a catalog item on the wire.
type ProductDTO struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ProductInput is the create/update payload for a product.
type ProductInput struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderLineDTO is one flattened order line on the wire.
type OrderLineDTO struct {
	ProductID int64           `json:"productId"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderDTO is a full order on the wire.
type OrderDTO struct {
	ID          int64          `json:"id,omitempty"`
	OrderNumber string         `json:"orderNumber"`
	Status      string         `json:"status"`
	Date        string         `json:"date,omitempty"`
	Products    []OrderLineDTO `json:"products"`
}

// OrderSummaryDTO is the listing projection of an order.
type OrderSummaryDTO struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Date        string          `json:"date"`
	Products    int             `json:"products"`
	FinalPrice  decimal.Decimal `json:"finalPrice"`
	Status      string          `json:"status"`
}

// StatusInput is the payload of the status-change operation.
type StatusInput struct {
	Status string `json:"status"`
}

// CreatedDTO carries the id of a newly created record.
type CreatedDTO struct {
	ID int64 `json:"id"`
}

// ErrorDTO is the error body for non-2xx responses.
type ErrorDTO struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// dateLayout is the wire format for order dates, as displayed by clients.
const dateLayout = "2006-01-02"

// ToProduct converts a wire product to the domain type.
func (d ProductDTO) ToProduct() product.Product {
	return product.Product{ID: d.ID, Name: d.Name, UnitPrice: d.UnitPrice}
}

// FromProduct converts a domain product to its wire form.
func FromProduct(p product.Product) ProductDTO {
	return ProductDTO{ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice}
}

// ToLines converts wire lines to domain lines.
func ToLines(dtos []OrderLineDTO) []order.Line {
	lines := make([]order.Line, len(dtos))
	for i, l := range dtos {
		lines[i] = order.Line{ProductID: l.ProductID, Qty: l.Qty, UnitPrice: l.UnitPrice}
	}
	return lines
}

// FromLines converts domain lines to their wire form.
func FromLines(lines []order.Line) []OrderLineDTO {
	dtos := make([]OrderLineDTO, len(lines))
	for i, l := range lines {
		dtos[i] = OrderLineDTO{ProductID: l.ProductID, Qty: l.Qty, UnitPrice: l.UnitPrice}
	}
	return dtos
}
