package domain

import (
	dErrors "storefront/pkg/domain-errors"
)

// Status is the order lifecycle state.
type Status string

// Order lifecycle states.
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// statusTransitions is the static transition table. A state never lists
// itself: a transition to the same status is invalid and callers must
// special-case no-ops themselves.
var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "status cannot be empty")
	}
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown status: %s", s)
	}
	return st, nil
}

// IsValid checks membership in the closed enumeration.
func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range statusTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ValidTransitions returns the legal successor states of s. The slice is a
// copy; mutating it does not affect the transition table.
func (s Status) ValidTransitions() []Status {
	out := make([]Status, len(statusTransitions[s]))
	copy(out, statusTransitions[s])
	return out
}

// IsTerminal reports whether s has no legal successors.
func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

func (s Status) String() string {
	return string(s)
}
