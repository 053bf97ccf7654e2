package observable

// PropertyChangedFunc receives the object whose field changed and the name
// of that field.
type PropertyChangedFunc func(source any, property string)

// PropertyChange is the payload an item delivers to its property listeners.
type PropertyChange struct {
	Source   any
	Property string
}

// Observable is the capability an item must provide to be held by a
// Collection: listeners can be attached to and detached from its field
// changes.
type Observable interface {
	// SubscribePropertyChanged registers fn to run after every field
	// mutation of the item.
	SubscribePropertyChanged(fn PropertyChangedFunc) Handle

	// UnsubscribePropertyChanged removes the listener registered under h
	// and reports whether it was registered.
	UnsubscribePropertyChanged(h Handle) bool
}

// Item is the element constraint of Collection. Items are compared by
// identity to track subscriptions, so pointer types are the usual choice.
type Item interface {
	comparable
	Observable
}

// Notifier implements Observable. Embed it in a record type and call Notify
// from every setter after assigning the new value.
//
// The zero value is ready to use.
type Notifier struct {
	listeners Listeners[PropertyChange]
}

// SubscribePropertyChanged implements Observable.
func (n *Notifier) SubscribePropertyChanged(fn PropertyChangedFunc) Handle {
	if fn == nil {
		return 0
	}
	return n.listeners.Add(func(c PropertyChange) {
		fn(c.Source, c.Property)
	})
}

// UnsubscribePropertyChanged implements Observable.
func (n *Notifier) UnsubscribePropertyChanged(h Handle) bool {
	return n.listeners.Remove(h)
}

// Notify tells every property listener that property of source changed.
// Listeners run synchronously, before Notify returns.
func (n *Notifier) Notify(source any, property string) {
	n.listeners.Emit(PropertyChange{Source: source, Property: property})
}

// Subscribers returns the number of attached property listeners.
func (n *Notifier) Subscribers() int {
	return n.listeners.Len()
}
