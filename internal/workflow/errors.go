package workflow

import (
	"errors"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

// ErrNotFound is returned when an item or claim does not exist, or the caller
// may not see it.
var ErrNotFound = errors.New("not found")

// ValidationError rejects a missing or malformed input field before any state
// change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// GuardViolation rejects an action the actor may not perform (Permission) or
// that the item's current status does not allow. Nothing was changed.
type GuardViolation struct {
	Action     Action
	Status     model.ItemStatus
	Reason     string
	Permission bool
}

func (e *GuardViolation) Error() string {
	if e.Permission {
		return fmt.Sprintf("%s not permitted: %s", e.Action, e.Reason)
	}
	return fmt.Sprintf("cannot %s item in status %s: %s", e.Action, e.Status, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func forbidden(a Action, reason string) error {
	return &GuardViolation{Action: a, Reason: reason, Permission: true}
}

func conflict(a Action, status model.ItemStatus, reason string) error {
	return &GuardViolation{Action: a, Status: status, Reason: reason}
}
