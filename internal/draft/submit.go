package draft

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"

	"github.com/orderdesk/orderdesk/internal/domain/order"
)

// Store is the collaborator subset the coordinator needs.
type Store interface {
	CreateOrder(ctx context.Context, o *order.Order) (int64, error)
	UpdateOrder(ctx context.Context, o *order.Order) error
}

// Mode selects between creating a new order and updating a persisted one.
type Mode struct {
	update  bool
	orderID int64
}

// Create submits the draft as a new order.
func Create() Mode {
	return Mode{}
}

// Update submits the draft as a replacement for the persisted order with the
// given id.
func Update(orderID int64) Mode {
	return Mode{update: true, orderID: orderID}
}

// DefaultSubmitTimeout bounds a single submission round trip. Expiry is an
// ordinary retryable failure, not data loss.
const DefaultSubmitTimeout = 15 * time.Second

// Submitter turns a valid draft into a create or update command. One
// Submitter serves one draft session, so the in-flight guard gives exactly
// one submission per draft at a time.
type Submitter struct {
	store    Store
	timeout  time.Duration
	inFlight atomic.Bool
}

// NewSubmitter returns a Submitter with the default timeout.
func NewSubmitter(store Store) *Submitter {
	return &Submitter{store: store, timeout: DefaultSubmitTimeout}
}

// WithTimeout overrides the per-submission timeout.
func (s *Submitter) WithTimeout(d time.Duration) *Submitter {
	s.timeout = d
	return s
}

// InFlight reports whether a submission is currently pending.
func (s *Submitter) InFlight() bool {
	return s.inFlight.Load()
}

// Submit validates the draft and sends it to the store.
//
// An invalid draft returns the first violated rule without contacting the
// store. Update of a completed order is refused with order.ErrLocked, also
// without a store call. A second Submit while one is pending returns
// ErrSubmissionInProgress.
//
// On Create the outgoing command always carries status PENDING; on Update
// the draft's current status is preserved as-is (status changes go through
// the separate status operation). The returned id is the created order's id,
// or the updated order's id unchanged. On failure the draft is left exactly
// as it was so the user can correct and retry; nothing retries
// automatically. On success the draft is consumed: callers discard it and
// refresh their listing.
func (s *Submitter) Submit(ctx context.Context, d *Draft, mode Mode) (int64, error) {
	if err := Validate(d); err != nil {
		return 0, err
	}
	if mode.update && d.Locked() {
		return 0, order.ErrLocked
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return 0, ErrSubmissionInProgress
	}
	defer s.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := &order.Order{
		OrderNumber: d.TrimmedOrderNumber(),
		Status:      d.Status(),
		Lines:       d.Lines(),
	}

	if mode.update {
		cmd.ID = mode.orderID
		if err := s.store.UpdateOrder(ctx, cmd); err != nil {
			return 0, errors.Wrap(err, "update order")
		}
		return mode.orderID, nil
	}

	cmd.Status = order.StatusPending
	id, err := s.store.CreateOrder(ctx, cmd)
	if err != nil {
		return 0, errors.Wrap(err, "create order")
	}
	return id, nil
}
