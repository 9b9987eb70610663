package order

import "github.com/go-faster/errors"

// Status is the order lifecycle state. The enum is closed: orders move
// forward PENDING -> IN_PROGRESS -> COMPLETED and COMPLETED is terminal.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// ErrInvalidStatus is returned when a status value is outside the enum.
var ErrInvalidStatus = errors.New("invalid order status")

// ErrInvalidTransition is returned for a backward status change.
var ErrInvalidTransition = errors.New("invalid status transition")

var statusRank = map[Status]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// ParseStatus validates a raw status value against the closed enum.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusRank[st]; !ok {
		return "", errors.Wrapf(ErrInvalidStatus, "%q", s)
	}
	return st, nil
}

// Valid reports whether s is a member of the enum.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no transitions are allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// CanTransition reports whether moving from s to next is allowed. Setting the
// same status again is accepted as a no-op; any move out of COMPLETED and any
// backward move is not.
func (s Status) CanTransition(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	if s.Terminal() {
		return next == s
	}
	return to >= from
}
