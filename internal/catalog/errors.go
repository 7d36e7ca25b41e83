package catalog

import (
	"errors"
	"fmt"

	"github.com/mrlokans/storyshelf/internal/store"
)

var (
	// ErrNotFound is store.ErrNotFound; lookups of absent documents wrap it.
	ErrNotFound = store.ErrNotFound

	// ErrInvalidReorder is returned when a new order is not a permutation of
	// the current one, or would move a front cover away from index 0.
	ErrInvalidReorder = errors.New("invalid reorder")

	ErrInvalidDocument = errors.New("invalid document")
	ErrBookMismatch    = errors.New("page belongs to a different book")
	ErrConflict        = errors.New("too many concurrent modifications")
	ErrUnknownParent   = errors.New("unknown parent type")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidInput    = errors.New("invalid input")
)

// PartialWriteError reports a multi-step mutation that failed after some of
// its writes were already applied. ID names the document the first step
// created or deleted.
type PartialWriteError struct {
	Op   string
	Step string
	ID   string
	Err  error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: partial write at step %q (id %s): %v", e.Op, e.Step, e.ID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
