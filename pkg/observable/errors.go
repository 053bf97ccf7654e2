package observable

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is matched by every index error a Collection returns.
var ErrIndexOutOfRange = errors.New("observable: index out of range")

// IndexError reports an index outside the valid range of an operation.
// The collection is left unchanged when one is returned.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("observable: %s: index %d out of range [0:%d]", e.Op, e.Index, e.Len)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
