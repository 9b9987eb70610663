package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrProtected is returned when a delete targets one of the seed products.
var ErrProtected = errors.New("seed products cannot be deleted")

// protectedMaxID is the highest seed product id. Products 1..3 ship with
// every store and must never be removed.
const protectedMaxID = 3

// Product represents a catalog item available for ordering. Once fetched it
// is an immutable snapshot; the catalog is refreshed only by re-fetching the
// full list.
type Product struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
}

// Protected reports whether the given id belongs to a seed product whose
// deletion must be rejected before any network call.
func Protected(id int64) bool {
	return id >= 1 && id <= protectedMaxID
}

// Validate checks a product record before create or update: the name must be
// non-empty after trimming and the unit price strictly positive.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if !p.UnitPrice.IsPositive() {
		return errors.New("unit price must be greater than 0")
	}
	return nil
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
