package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// ErrLocked is returned when a mutation targets a completed order.
// Completed orders are immutable.
var ErrLocked = errors.New("cannot modify a completed order")

// Order is a persisted order as stored and transferred: the line items are
// flattened to (productId, qty, unitPrice) triples without product names.
type Order struct {
	ID          int64
	OrderNumber string
	Status      Status
	Date        time.Time
	Lines       []Line
}

// Line is one flattened order line. UnitPrice is the price captured when the
// line was submitted, not the current catalog price.
type Line struct {
	ProductID int64           `json:"productId"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Summary is the listing projection of an order.
type Summary struct {
	ID           int64
	OrderNumber  string
	Date         time.Time
	ProductCount int
	FinalPrice   decimal.Decimal
	Status       Status
}

// FinalPrice sums qty x unitPrice over all lines.
func (o *Order) FinalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return total
}

// Repository defines persistence operations for orders.
type Repository interface {
	List(ctx context.Context) ([]Summary, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, o *Order) (int64, error)
	Update(ctx context.Context, o *Order) error
	SetStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
}
