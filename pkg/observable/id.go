package observable

import "sync/atomic"

// handleCounter is the source of subscription handles for every registry
// in the process. Handles are monotonically increasing and never reused,
// so a handle identifies exactly one subscription.
var handleCounter uint64

// nextHandle returns the next unique subscription handle.
func nextHandle() Handle {
	return Handle(atomic.AddUint64(&handleCounter, 1))
}
