package observable

// Handle identifies one subscription. The zero Handle never identifies a
// live subscription.
type Handle uint64

// listener pairs a callback with the handle it was registered under.
type listener[E any] struct {
	handle Handle
	fn     func(E)
}

// Listeners is an ordered registry of callbacks receiving events of type E.
//
// Callbacks run synchronously, in the order they were added. The zero value
// is ready to use.
type Listeners[E any] struct {
	subs []listener[E]
}

// Add registers fn and returns the handle that removes it again.
// A nil fn is ignored and yields the zero Handle.
func (l *Listeners[E]) Add(fn func(E)) Handle {
	if fn == nil {
		return 0
	}

	h := nextHandle()
	l.subs = append(l.subs, listener[E]{handle: h, fn: fn})
	return h
}

// Remove unregisters the callback added under h.
// It reports whether h was registered.
func (l *Listeners[E]) Remove(h Handle) bool {
	if h == 0 {
		return false
	}

	for i, sub := range l.subs {
		if sub.handle == h {
			// The capped slice forces a fresh array, leaving any slice
			// captured by an in-flight Emit untouched.
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether h is currently registered.
func (l *Listeners[E]) Has(h Handle) bool {
	for _, sub := range l.subs {
		if sub.handle == h {
			return true
		}
	}
	return false
}

// Len returns the number of registered callbacks.
func (l *Listeners[E]) Len() int {
	return len(l.subs)
}

// Emit delivers e to every registered callback.
//
// The callback list is captured before the first call: callbacks removed
// during emission still receive e, callbacks added during emission do not.
func (l *Listeners[E]) Emit(e E) {
	if len(l.subs) == 0 {
		return
	}

	subs := l.subs
	for _, sub := range subs {
		sub.fn(e)
	}
}
