package listing

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrSlotInUse is returned when two listings on one history entry try to
// share a slot.
var ErrSlotInUse = errors.New("history slot already in use")

// ValidationError is a client-side validation failure. Listings recover from
// these by falling back to defaults; they are logged, not shown.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
