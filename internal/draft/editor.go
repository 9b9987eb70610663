package draft

import (
	"github.com/orderdesk/orderdesk/internal/catalog"
	"github.com/orderdesk/orderdesk/internal/domain/order"
)

// editorState enumerates the editor's states.
type editorState int

const (
	stateIdle editorState = iota
	stateStaging
	stateConfirmingRemoval
)

// stagingMode distinguishes adding a new row from editing an existing one.
type stagingMode int

const (
	modeAdd stagingMode = iota
	modeEdit
)

// Editor stages one line item at a time for the draft: the explicit state
// machine behind the add/edit/confirm-removal dialogs. It is the only way
// line items enter or leave a draft.
//
// States: Idle -> Staging (OpenAdd/OpenEdit) -> Idle (Commit/Cancel), and
// Idle -> ConfirmingRemoval (RequestRemoval) -> Idle (ConfirmRemoval/Cancel).
type Editor struct {
	draft   *Draft
	catalog *catalog.Cache

	state editorState
	mode  stagingMode

	stagedProductID int64
	stagedQty       int
	// editIndex is the row being edited in modeEdit, or the row pending
	// removal in stateConfirmingRemoval.
	editIndex int
}

// NewEditor returns an idle editor bound to a draft and the catalog cache.
func NewEditor(d *Draft, c *catalog.Cache) *Editor {
	return &Editor{draft: d, catalog: c}
}

// Staging reports whether a line item is currently staged.
func (e *Editor) Staging() bool {
	return e.state == stateStaging
}

// ConfirmingRemoval reports whether a removal is awaiting confirmation.
func (e *Editor) ConfirmingRemoval() bool {
	return e.state == stateConfirmingRemoval
}

// Staged returns the staged product id and quantity while in Staging.
func (e *Editor) Staged() (productID int64, qty int, ok bool) {
	if e.state != stateStaging {
		return 0, 0, false
	}
	return e.stagedProductID, e.stagedQty, true
}

// OpenAdd moves Idle -> Staging(Add) with the first catalog product (if any)
// preselected and quantity 1. Refused with order.ErrLocked on a completed
// order's draft.
func (e *Editor) OpenAdd() error {
	if e.state != stateIdle {
		return ErrInvalidEditorState
	}
	if e.draft.Locked() {
		return order.ErrLocked
	}

	e.state = stateStaging
	e.mode = modeAdd
	e.stagedQty = 1
	e.stagedProductID = 0
	if first, ok := e.catalog.First(); ok {
		e.stagedProductID = first.ID
	}
	return nil
}

// OpenEdit moves Idle -> Staging(EditAt(index)) with the row's product and
// quantity staged. The product is fixed while editing; only the quantity may
// change. Refused with order.ErrLocked on a completed order's draft.
func (e *Editor) OpenEdit(index int) error {
	if e.state != stateIdle {
		return ErrInvalidEditorState
	}
	if e.draft.Locked() {
		return order.ErrLocked
	}
	li, ok := e.draft.ItemAt(index)
	if !ok {
		return ErrInvalidEditorState
	}

	e.state = stateStaging
	e.mode = modeEdit
	e.editIndex = index
	e.stagedProductID = li.Product.ID
	e.stagedQty = li.Qty
	return nil
}

// SetProduct changes the staged product. Valid only in Staging(Add); the
// product of a row being edited is fixed.
func (e *Editor) SetProduct(id int64) error {
	if e.state != stateStaging || e.mode != modeAdd {
		return ErrInvalidEditorState
	}
	e.stagedProductID = id
	return nil
}

// SetQty changes the staged quantity. Values below 1 are stored as typed and
// rejected at Commit rather than silently coerced.
func (e *Editor) SetQty(n int) error {
	if e.state != stateStaging {
		return ErrInvalidEditorState
	}
	e.stagedQty = n
	return nil
}

// Commit applies the staged line item to the draft and returns to Idle.
//
// In Add mode the staged product must resolve through the catalog cache; an
// unresolved id fails with ProductUnavailableError and leaves both the draft
// and the staged state untouched. The resolved item is appended, unless a
// row for the same product already exists, in which case that row is
// replaced at its original position.
//
// In Edit mode the row keeps its existing product snapshot and position and
// takes only the staged quantity. The snapshot is deliberately not
// re-resolved: edited rows keep their captured unit price, and rows holding
// a placeholder for a deleted product stay editable.
func (e *Editor) Commit() error {
	if e.state != stateStaging {
		return ErrInvalidEditorState
	}
	if e.stagedQty < 1 {
		return &InvalidQuantityError{ProductID: e.stagedProductID, Qty: e.stagedQty}
	}

	if e.mode == modeEdit {
		cur, ok := e.draft.ItemAt(e.editIndex)
		if !ok {
			return ErrInvalidEditorState
		}
		e.draft.replaceAt(e.editIndex, LineItem{Product: cur.Product, Qty: e.stagedQty})
		e.reset()
		return nil
	}

	p, ok := e.catalog.Lookup(e.stagedProductID)
	if !ok {
		return &ProductUnavailableError{ProductID: e.stagedProductID}
	}
	e.draft.upsert(LineItem{Product: p, Qty: e.stagedQty})
	e.reset()
	return nil
}

// Cancel discards any staged edit or pending removal and returns to Idle.
// Calling it while already Idle is a no-op.
func (e *Editor) Cancel() {
	e.reset()
}

// RequestRemoval moves Idle -> ConfirmingRemoval(index). Refused with
// order.ErrLocked on a completed order's draft.
func (e *Editor) RequestRemoval(index int) error {
	if e.state != stateIdle {
		return ErrInvalidEditorState
	}
	if e.draft.Locked() {
		return order.ErrLocked
	}
	if _, ok := e.draft.ItemAt(index); !ok {
		return ErrInvalidEditorState
	}

	e.state = stateConfirmingRemoval
	e.editIndex = index
	return nil
}

// ConfirmRemoval removes the pending row, shifting subsequent rows left, and
// returns to Idle. Row identity is positional.
func (e *Editor) ConfirmRemoval() error {
	if e.state != stateConfirmingRemoval {
		return ErrInvalidEditorState
	}
	e.draft.removeAt(e.editIndex)
	e.reset()
	return nil
}

func (e *Editor) reset() {
	e.state = stateIdle
	e.mode = modeAdd
	e.stagedProductID = 0
	e.stagedQty = 0
	e.editIndex = 0
}
