package draft

import (
	"github.com/orderdesk/orderdesk/internal/catalog"
	"github.com/orderdesk/orderdesk/internal/domain/order"
	"github.com/orderdesk/orderdesk/internal/domain/product"
)

// unknownProductName labels lines whose product has been deleted from the
// catalog since the order was persisted.
const unknownProductName = "Unknown"

// Reconcile builds a draft from a persisted order and the catalog cache.
//
// Each persisted line keeps its stored unit price, so historical totals stay
// stable even if catalog prices changed, but takes the catalog's current
// name for display. A line whose product id is missing from the catalog gets
// a placeholder product named "Unknown" with the persisted price, keeping
// the draft fully representable and editable (quantity-only).
//
// Callers must not reconcile until both the persisted order and the catalog
// have loaded; see Session.
func Reconcile(persisted *order.Order, c *catalog.Cache) *Draft {
	d := &Draft{
		orderNumber: persisted.OrderNumber,
		status:      persisted.Status,
		remoteID:    persisted.ID,
		items:       make([]LineItem, 0, len(persisted.Lines)),
	}

	for _, line := range persisted.Lines {
		p, ok := c.Lookup(line.ProductID)
		if ok {
			// Current catalog name, persisted price.
			p.UnitPrice = line.UnitPrice
		} else {
			p = product.Product{
				ID:        line.ProductID,
				Name:      unknownProductName,
				UnitPrice: line.UnitPrice,
			}
		}
		d.items = append(d.items, LineItem{Product: p, Qty: line.Qty})
	}
	return d
}
