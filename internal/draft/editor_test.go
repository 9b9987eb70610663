package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/catalog"
	"github.com/orderdesk/orderdesk/internal/domain/order"
)

func TestEditor_OpenAddDefaults(t *testing.T) {
	e := NewEditor(New(), testCatalog())

	require.NoError(t, e.OpenAdd())
	id, qty, ok := e.Staged()
	require.True(t, ok)
	assert.EqualValues(t, 1, id, "first catalog product preselected")
	assert.Equal(t, 1, qty)
}

func TestEditor_OpenAddEmptyCatalog(t *testing.T) {
	e := NewEditor(New(), catalog.New())

	require.NoError(t, e.OpenAdd())
	id, qty, ok := e.Staged()
	require.True(t, ok)
	assert.Zero(t, id)
	assert.Equal(t, 1, qty)

	// Nothing resolvable to commit.
	err := e.Commit()
	var pu *ProductUnavailableError
	require.ErrorAs(t, err, &pu)
}

func TestEditor_OpenEditStagesRow(t *testing.T) {
	d := New()
	e := NewEditor(d, testCatalog())
	addItem(t, e, 2, 4)

	require.NoError(t, e.OpenEdit(0))
	id, qty, ok := e.Staged()
	require.True(t, ok)
	assert.EqualValues(t, 2, id)
	assert.Equal(t, 4, qty)

	// Product is fixed while editing.
	assert.ErrorIs(t, e.SetProduct(1), ErrInvalidEditorState)
}

func TestEditor_EditPreservesPositionAndNeighbours(t *testing.T) {
	d := New()
	e := NewEditor(d, testCatalog())
	addItem(t, e, 1, 3)
	addItem(t, e, 2, 1)

	require.NoError(t, e.OpenEdit(0))
	require.NoError(t, e.SetQty(7))
	require.NoError(t, e.Commit())

	require.Equal(t, 2, d.Len(), "editing never changes length")
	first, _ := d.ItemAt(0)
	second, _ := d.ItemAt(1)
	assert.EqualValues(t, 1, first.Product.ID)
	assert.Equal(t, 7, first.Qty)
	assert.EqualValues(t, 2, second.Product.ID)
	assert.Equal(t, 1, second.Qty, "other rows untouched")
}

func TestEditor_AddDuplicateReplacesInPlace(t *testing.T) {
	d := New()
	e := NewEditor(d, testCatalog())
	addItem(t, e, 1, 3)
	addItem(t, e, 2, 1)

	// Adding product 1 again replaces the existing row at position 0.
	addItem(t, e, 1, 9)

	require.Equal(t, 2, d.Len())
	first, _ := d.ItemAt(0)
	assert.EqualValues(t, 1, first.Product.ID)
	assert.Equal(t, 9, first.Qty)
}

func TestEditor_CommitRejectsQtyBelowOne(t *testing.T) {
	d := New()
	e := NewEditor(d, testCatalog())

	require.NoError(t, e.OpenAdd())
	require.NoError(t, e.SetQty(0))
	err := e.Commit()
	var iq *InvalidQuantityError
	require.ErrorAs(t, err, &iq)
	assert.Equal(t, 0, iq.Qty)
	assert.Zero(t, d.Len(), "draft untouched")
	assert.True(t, e.Staging(), "staged state kept for correction")

	require.NoError(t, e.SetQty(2))
	require.NoError(t, e.Commit())
	assert.Equal(t, 1, d.Len())
}

func TestEditor_CommitUnresolvableProduct(t *testing.T) {
	d := New()
	e := NewEditor(d, testCatalog())

	require.NoError(t, e.OpenAdd())
	require.NoError(t, e.SetProduct(404))
	err := e.Commit()
	var pu *ProductUnavailableError
	require.ErrorAs(t, err, &pu)
	assert.EqualValues(t, 404, pu.ProductID)
	assert.Zero(t, d.Len())
}

func TestEditor_CancelDiscards(t *testing.T) {
	d := New()
	e := NewEditor(d, testCatalog())
	addItem(t, e, 1, 3)

	require.NoError(t, e.OpenEdit(0))
	require.NoError(t, e.SetQty(99))
	e.Cancel()

	item, _ := d.ItemAt(0)
	assert.Equal(t, 3, item.Qty)
	assert.False(t, e.Staging())

	require.NoError(t, e.RequestRemoval(0))
	e.Cancel()
	assert.Equal(t, 1, d.Len())
}

func TestEditor_RemovalReindexes(t *testing.T) {
	d := New()
	e := NewEditor(d, testCatalog())
	addItem(t, e, 1, 3)
	addItem(t, e, 2, 1)

	require.NoError(t, e.RequestRemoval(0))
	require.NoError(t, e.ConfirmRemoval())

	require.Equal(t, 1, d.Len())
	item, _ := d.ItemAt(0)
	assert.EqualValues(t, 2, item.Product.ID, "subsequent rows shift left")
}

func TestEditor_InvalidStateCalls(t *testing.T) {
	d := New()
	e := NewEditor(d, testCatalog())

	// Idle: staging-only and removal-only operations refused.
	assert.ErrorIs(t, e.SetProduct(1), ErrInvalidEditorState)
	assert.ErrorIs(t, e.SetQty(2), ErrInvalidEditorState)
	assert.ErrorIs(t, e.Commit(), ErrInvalidEditorState)
	assert.ErrorIs(t, e.ConfirmRemoval(), ErrInvalidEditorState)

	// Staging: cannot open another dialog.
	require.NoError(t, e.OpenAdd())
	assert.ErrorIs(t, e.OpenAdd(), ErrInvalidEditorState)
	assert.ErrorIs(t, e.OpenEdit(0), ErrInvalidEditorState)
	assert.ErrorIs(t, e.RequestRemoval(0), ErrInvalidEditorState)
	e.Cancel()

	// Out-of-range indexes are programmer errors too.
	assert.ErrorIs(t, e.OpenEdit(5), ErrInvalidEditorState)
	assert.ErrorIs(t, e.RequestRemoval(-1), ErrInvalidEditorState)
}

func TestEditor_CompletedOrderLocked(t *testing.T) {
	persisted := &order.Order{
		ID:          12,
		OrderNumber: "ORD-12",
		Status:      order.StatusCompleted,
		Lines:       []order.Line{{ProductID: 1, Qty: 2, UnitPrice: dec("2.80")}},
	}
	c := testCatalog()
	d := Reconcile(persisted, c)
	e := NewEditor(d, c)

	assert.ErrorIs(t, e.OpenAdd(), order.ErrLocked)
	assert.ErrorIs(t, e.OpenEdit(0), order.ErrLocked)
	assert.ErrorIs(t, e.RequestRemoval(0), order.ErrLocked)
}
