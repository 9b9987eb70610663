// Package draft implements the in-memory order composition engine: a working
// order held while the user adds, edits and removes line items, reconciled
// against a persisted order and the live catalog, totalled on demand and
// validated before submission.
package draft

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/orderdesk/orderdesk/internal/domain/order"
	"github.com/orderdesk/orderdesk/internal/domain/product"
)

// LineItem is one row of a draft: a product snapshot taken when the row was
// added or edited, and a quantity of at least 1.
type LineItem struct {
	Product product.Product
	Qty     int
}

// Subtotal returns qty x unit price for this row.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.UnitPrice.Mul(decimal.NewFromInt(int64(li.Qty)))
}

// Draft is the order being composed. It is created empty for a new order or
// via Reconcile for the edit flow, and mutated only through the Editor and
// SetOrderNumber. A Draft is owned by exactly one session; its methods are
// not safe for concurrent use.
type Draft struct {
	orderNumber string
	status      order.Status
	items       []LineItem

	// remoteID is set for drafts reconciled from a persisted order.
	remoteID int64
}

// New returns an empty draft for a new order.
func New() *Draft {
	return &Draft{status: order.StatusPending}
}

// OrderNumber returns the raw order number as typed.
func (d *Draft) OrderNumber() string {
	return d.orderNumber
}

// SetOrderNumber stores the order number as typed. Trimming happens at
// validation and submission, not on input.
func (d *Draft) SetOrderNumber(n string) {
	d.orderNumber = n
}

// TrimmedOrderNumber returns the order number with surrounding whitespace
// removed, the form used for validation and submission.
func (d *Draft) TrimmedOrderNumber() string {
	return strings.TrimSpace(d.orderNumber)
}

// Status returns the draft's order status.
func (d *Draft) Status() order.Status {
	return d.status
}

// Locked reports whether the draft belongs to a completed order, which is
// immutable.
func (d *Draft) Locked() bool {
	return d.status.Terminal()
}

// RemoteID returns the persisted order id for reconciled drafts, 0 otherwise.
func (d *Draft) RemoteID() int64 {
	return d.remoteID
}

// Len returns the number of line items.
func (d *Draft) Len() int {
	return len(d.items)
}

// Items returns a copy of the line items in insertion/edit order.
func (d *Draft) Items() []LineItem {
	return append([]LineItem(nil), d.items...)
}

// ItemAt returns the line item at index i.
func (d *Draft) ItemAt(i int) (LineItem, bool) {
	if i < 0 || i >= len(d.items) {
		return LineItem{}, false
	}
	return d.items[i], true
}

// TotalPrice recomputes the draft total from the current items. It is never
// stored, so it cannot go stale.
func (d *Draft) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, li := range d.items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// indexOfProduct returns the row holding the given product id, or -1. A
// product id appears in at most one row.
func (d *Draft) indexOfProduct(id int64) int {
	for i, li := range d.items {
		if li.Product.ID == id {
			return i
		}
	}
	return -1
}

// upsert appends a new row, unless a row for the same product already
// exists, in which case that row is replaced at its original position.
func (d *Draft) upsert(li LineItem) {
	if i := d.indexOfProduct(li.Product.ID); i >= 0 {
		d.items[i] = li
		return
	}
	d.items = append(d.items, li)
}

// replaceAt overwrites the row at index i, preserving its position.
func (d *Draft) replaceAt(i int, li LineItem) {
	d.items[i] = li
}

// removeAt deletes the row at index i, shifting subsequent rows left.
func (d *Draft) removeAt(i int) {
	d.items = append(d.items[:i], d.items[i+1:]...)
}

// Lines flattens the items to (productId, qty, unitPrice) triples, the shape
// sent to the store. The denormalized product name is dropped.
func (d *Draft) Lines() []order.Line {
	lines := make([]order.Line, len(d.items))
	for i, li := range d.items {
		lines[i] = order.Line{
			ProductID: li.Product.ID,
			Qty:       li.Qty,
			UnitPrice: li.Product.UnitPrice,
		}
	}
	return lines
}
