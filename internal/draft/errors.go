package draft

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrInvalidEditorState is returned when an editor operation is invoked
// outside its valid state. This is a programmer error, fatal for that call.
var ErrInvalidEditorState = errors.New("invalid editor state")

// ErrSubmissionInProgress is returned when a submit is requested while a
// previous one for the same draft is still in flight. The second request is
// rejected, not queued.
var ErrSubmissionInProgress = errors.New("submission already in progress")

// Validation violations, reported in rule order by Validate.
var (
	ErrEmptyOrderNumber = errors.New("order number is required")
	ErrNoLineItems      = errors.New("order needs at least one line item")
)

// ProductUnavailableError indicates a staged product id could not be
// resolved through the catalog cache at commit time.
type ProductUnavailableError struct {
	ProductID int64
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %d is not available in the catalog", e.ProductID)
}

// InvalidQuantityError indicates a line item with a quantity below 1.
type InvalidQuantityError struct {
	ProductID int64
	Qty       int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d is invalid for product %d: must be at least 1", e.Qty, e.ProductID)
}
