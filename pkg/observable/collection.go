package observable

import (
	"iter"
	"log/slog"
	"slices"
)

// Source is the read side of a Collection: its identity, its size and its
// two signals. Observers such as metrics or a network feed depend on Source
// rather than on the concrete collection type.
type Source[T any] interface {
	ID() string
	Len() int
	SubscribeCollectionChanged(fn func(CollectionChanged[T])) Handle
	SubscribeItemPropertyChanged(fn func(ItemPropertyChanged[T])) Handle
	Unsubscribe(h Handle) bool
}

// Collection is an ordered, index-addressable sequence of items that
// reports both its own structural changes and the field changes of the
// items it holds.
//
// For every item present the collection holds exactly one subscription to
// that item's property changes. An item that leaves the collection is
// unsubscribed before the change is announced, so mutating it afterwards
// produces no ItemPropertyChanged event.
//
// The same item may be present at several indices. Such duplicates share a
// single subscription, and removing any one occurrence drops it for all of
// them.
//
// A Collection is not safe for concurrent use.
type Collection[T Item] struct {
	items []T

	// subs maps each observed item to the handle of the collection's
	// listener on that item.
	subs map[T]Handle

	collectionChanged   Listeners[CollectionChanged[T]]
	itemPropertyChanged Listeners[ItemPropertyChanged[T]]

	id     string
	logger *slog.Logger
}

// New returns an empty collection.
func New[T Item](opts ...Option) *Collection[T] {
	o := buildOptions(opts)
	return &Collection[T]{
		subs:   make(map[T]Handle),
		id:     o.id,
		logger: o.logger,
	}
}

// From returns a collection holding a copy of items, in order.
// Every initial item is observed before From returns; seeding is not a
// mutation, so no CollectionChanged event is raised.
func From[T Item](items []T, opts ...Option) *Collection[T] {
	c := New[T](opts...)
	c.items = slices.Clone(items)
	for _, item := range c.items {
		c.observe(item)
	}
	return c
}

// FromSeq is like From but drains seq.
func FromSeq[T Item](seq iter.Seq[T], opts ...Option) *Collection[T] {
	return From(slices.Collect(seq), opts...)
}

// ID returns the collection identifier.
func (c *Collection[T]) ID() string {
	return c.id
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// At returns the item at index i.
func (c *Collection[T]) At(i int) (T, error) {
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, &IndexError{Op: "at", Index: i, Len: len(c.items)}
	}
	return c.items[i], nil
}

// IndexOf returns the index of the first occurrence of item, or -1.
func (c *Collection[T]) IndexOf(item T) int {
	return slices.Index(c.items, item)
}

// Contains reports whether item is present.
func (c *Collection[T]) Contains(item T) bool {
	return c.IndexOf(item) >= 0
}

// All iterates over index/item pairs in current order.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < len(c.items); i++ {
			if !yield(i, c.items[i]) {
				return
			}
		}
	}
}

// Values iterates over the items in current order.
func (c *Collection[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < len(c.items); i++ {
			if !yield(c.items[i]) {
				return
			}
		}
	}
}

// Slice returns a copy of the items.
func (c *Collection[T]) Slice() []T {
	return slices.Clone(c.items)
}

// Append adds item at the end.
func (c *Collection[T]) Append(item T) {
	// The index is always valid.
	_ = c.Insert(len(c.items), item)
}

// Insert places item at index i, shifting later items up.
// i may equal Len, which appends.
func (c *Collection[T]) Insert(i int, item T) error {
	if i < 0 || i > len(c.items) {
		return &IndexError{Op: "insert", Index: i, Len: len(c.items)}
	}

	c.items = slices.Insert(c.items, i, item)
	c.observe(item)
	c.raise(CollectionChanged[T]{
		Action:   ActionInsert,
		NewItems: []T{item},
		NewIndex: i,
		OldIndex: -1,
	})
	return nil
}

// Set replaces the item at index i.
func (c *Collection[T]) Set(i int, item T) error {
	if i < 0 || i >= len(c.items) {
		return &IndexError{Op: "set", Index: i, Len: len(c.items)}
	}

	old := c.items[i]
	c.items[i] = item
	c.unobserve(old)
	c.observe(item)
	c.raise(CollectionChanged[T]{
		Action:   ActionReplace,
		NewItems: []T{item},
		OldItems: []T{old},
		NewIndex: i,
		OldIndex: i,
	})
	return nil
}

// RemoveAt removes and returns the item at index i.
func (c *Collection[T]) RemoveAt(i int) (T, error) {
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, &IndexError{Op: "remove", Index: i, Len: len(c.items)}
	}

	old := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	c.unobserve(old)
	c.raise(CollectionChanged[T]{
		Action:   ActionRemove,
		OldItems: []T{old},
		NewIndex: -1,
		OldIndex: i,
	})
	return old, nil
}

// Remove removes the first occurrence of item and reports whether it was
// present.
func (c *Collection[T]) Remove(item T) bool {
	i := c.IndexOf(item)
	if i < 0 {
		return false
	}
	_, err := c.RemoveAt(i)
	return err == nil
}

// Move relocates the item at index from to index to. Membership does not
// change, so subscriptions are left as they are.
func (c *Collection[T]) Move(from, to int) error {
	if from < 0 || from >= len(c.items) {
		return &IndexError{Op: "move", Index: from, Len: len(c.items)}
	}
	if to < 0 || to >= len(c.items) {
		return &IndexError{Op: "move", Index: to, Len: len(c.items)}
	}

	item := c.items[from]
	c.items = slices.Delete(c.items, from, from+1)
	c.items = slices.Insert(c.items, to, item)
	c.raise(CollectionChanged[T]{
		Action:   ActionMove,
		NewItems: []T{item},
		OldItems: []T{item},
		NewIndex: to,
		OldIndex: from,
	})
	return nil
}

// Clear removes every item. Each one is unsubscribed before the single
// ActionClear event is raised; the event carries the removed items.
func (c *Collection[T]) Clear() {
	old := c.items
	c.items = nil
	for _, item := range old {
		c.unobserve(item)
	}
	c.raise(CollectionChanged[T]{
		Action:   ActionClear,
		OldItems: old,
		NewIndex: -1,
		OldIndex: 0,
	})
}

// Reset replaces the whole content with a copy of items and raises a single
// ActionReset event.
func (c *Collection[T]) Reset(items []T) {
	old := c.items
	c.items = slices.Clone(items)
	for _, item := range old {
		c.unobserve(item)
	}
	for _, item := range c.items {
		c.observe(item)
	}
	c.raise(CollectionChanged[T]{
		Action:   ActionReset,
		NewItems: slices.Clone(c.items),
		OldItems: old,
		NewIndex: 0,
		OldIndex: 0,
	})
}

// SubscribeCollectionChanged registers fn for structural changes.
func (c *Collection[T]) SubscribeCollectionChanged(fn func(CollectionChanged[T])) Handle {
	return c.collectionChanged.Add(fn)
}

// SubscribeItemPropertyChanged registers fn for field changes of held
// items.
func (c *Collection[T]) SubscribeItemPropertyChanged(fn func(ItemPropertyChanged[T])) Handle {
	return c.itemPropertyChanged.Add(fn)
}

// Unsubscribe removes a listener registered through either
// SubscribeCollectionChanged or SubscribeItemPropertyChanged.
// It reports whether h was registered.
func (c *Collection[T]) Unsubscribe(h Handle) bool {
	if c.collectionChanged.Remove(h) {
		return true
	}
	return c.itemPropertyChanged.Remove(h)
}

// Subscriptions returns the number of items the collection currently holds
// a property subscription on.
func (c *Collection[T]) Subscriptions() int {
	return len(c.subs)
}

// IsObserving reports whether the collection holds a property subscription
// on item.
func (c *Collection[T]) IsObserving(item T) bool {
	_, ok := c.subs[item]
	return ok
}

// observe subscribes the collection to item unless it already is.
func (c *Collection[T]) observe(item T) {
	if _, ok := c.subs[item]; ok {
		return
	}

	c.subs[item] = item.SubscribePropertyChanged(func(_ any, property string) {
		c.itemPropertyChanged.Emit(ItemPropertyChanged[T]{Item: item, Property: property})
	})

	if c.logger != nil {
		c.logger.Debug("item observed", "collection", c.id, "subscriptions", len(c.subs))
	}
}

// unobserve drops the collection's subscription to item, if any.
func (c *Collection[T]) unobserve(item T) {
	h, ok := c.subs[item]
	if !ok {
		return
	}

	item.UnsubscribePropertyChanged(h)
	delete(c.subs, item)

	if c.logger != nil {
		c.logger.Debug("item released", "collection", c.id, "subscriptions", len(c.subs))
	}
}

// raise announces a structural change once subscriptions are up to date.
func (c *Collection[T]) raise(e CollectionChanged[T]) {
	if c.logger != nil {
		c.logger.Debug("collection changed",
			"collection", c.id,
			"action", e.Action.String(),
			"index", e.Index(),
			"len", len(c.items),
		)
	}
	c.collectionChanged.Emit(e)
}
