package draft

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/domain/order"
)

// mockStore records submitted commands and can block to keep a submission
// in flight.
type mockStore struct {
	mu      sync.Mutex
	created []*order.Order
	updated []*order.Order
	nextID  int64
	err     error
	block   chan struct{}
}

func (m *mockStore) CreateOrder(ctx context.Context, o *order.Order) (int64, error) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.created = append(m.created, o)
	m.nextID++
	return m.nextID, nil
}

func (m *mockStore) UpdateOrder(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, o)
	return nil
}

func (m *mockStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created) + len(m.updated)
}

func validDraft(t *testing.T) *Draft {
	t.Helper()
	d := New()
	d.SetOrderNumber("  ORD-1  ")
	addItem(t, NewEditor(d, testCatalog()), 1, 3)
	return d
}

func TestSubmit_InvalidDraftNeverContactsStore(t *testing.T) {
	store := &mockStore{}
	s := NewSubmitter(store)

	_, err := s.Submit(context.Background(), New(), Create())
	require.ErrorIs(t, err, ErrEmptyOrderNumber)
	assert.Zero(t, store.calls())
}

func TestSubmit_CreateForcesPendingAndTrims(t *testing.T) {
	store := &mockStore{}
	s := NewSubmitter(store)

	id, err := s.Submit(context.Background(), validDraft(t), Create())
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	require.Len(t, store.created, 1)
	cmd := store.created[0]
	assert.Equal(t, "ORD-1", cmd.OrderNumber)
	assert.Equal(t, order.StatusPending, cmd.Status)
	require.Len(t, cmd.Lines, 1)
	assert.EqualValues(t, 1, cmd.Lines[0].ProductID)
	assert.Equal(t, 3, cmd.Lines[0].Qty)
	assert.Equal(t, "2.80", cmd.Lines[0].UnitPrice.StringFixed(2))
}

func TestSubmit_UpdatePreservesStatus(t *testing.T) {
	store := &mockStore{}
	s := NewSubmitter(store)

	c := testCatalog()
	d := Reconcile(&order.Order{
		ID:          42,
		OrderNumber: "ORD-42",
		Status:      order.StatusInProgress,
		Lines:       []order.Line{{ProductID: 1, Qty: 2, UnitPrice: dec("2.80")}},
	}, c)

	id, err := s.Submit(context.Background(), d, Update(d.RemoteID()))
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	require.Len(t, store.updated, 1)
	assert.Equal(t, order.StatusInProgress, store.updated[0].Status, "status passes through unchanged")
	assert.EqualValues(t, 42, store.updated[0].ID)
}

func TestSubmit_CompletedOrderLocked(t *testing.T) {
	store := &mockStore{}
	s := NewSubmitter(store)

	c := testCatalog()
	d := Reconcile(&order.Order{
		ID:          42,
		OrderNumber: "ORD-42",
		Status:      order.StatusCompleted,
		Lines:       []order.Line{{ProductID: 1, Qty: 2, UnitPrice: dec("2.80")}},
	}, c)

	_, err := s.Submit(context.Background(), d, Update(42))
	require.ErrorIs(t, err, order.ErrLocked)
	assert.Zero(t, store.calls(), "collaborator never invoked")
}

func TestSubmit_SecondCallWhilePending(t *testing.T) {
	store := &mockStore{block: make(chan struct{})}
	s := NewSubmitter(store)
	d := validDraft(t)

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), d, Create())
		firstDone <- err
	}()

	// Wait until the first submission is in flight.
	require.Eventually(t, s.InFlight, time.Second, time.Millisecond)

	_, err := s.Submit(context.Background(), d, Create())
	require.ErrorIs(t, err, ErrSubmissionInProgress)

	close(store.block)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, store.calls(), "exactly one store call observed")
}

func TestSubmit_FailureLeavesDraftUnchanged(t *testing.T) {
	store := &mockStore{err: errors.New("boom")}
	s := NewSubmitter(store)
	d := validDraft(t)

	_, err := s.Submit(context.Background(), d, Create())
	require.Error(t, err)

	assert.Equal(t, "  ORD-1  ", d.OrderNumber())
	assert.Equal(t, 1, d.Len())
	assert.False(t, s.InFlight(), "guard released for manual retry")

	// Retry works once the store recovers.
	store.err = nil
	_, err = s.Submit(context.Background(), d, Create())
	require.NoError(t, err)
}

func TestSubmit_Timeout(t *testing.T) {
	store := &mockStore{block: make(chan struct{})}
	s := NewSubmitter(store).WithTimeout(10 * time.Millisecond)
	d := validDraft(t)

	_, err := s.Submit(context.Background(), d, Create())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.InFlight())
	assert.Equal(t, 1, d.Len(), "draft intact, retryable")
}
