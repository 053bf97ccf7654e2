// Package observable provides a collection that re-emits the change
// notifications of the items it holds.
//
// An ordinary observable list only reports structural changes: items
// inserted, removed, replaced, moved or cleared. Collection[T] reports
// those too, and additionally subscribes to every item it currently holds
// so that a field mutation on an item is re-broadcast as a
// collection-level ItemPropertyChanged event carrying the item and the
// name of the changed field.
//
// # Items
//
// Any comparable type implementing Observable can be held. The Notifier
// type implements Observable and is meant to be embedded:
//
//	type Entry struct {
//	    observable.Notifier
//	    name string
//	}
//
//	func (e *Entry) SetName(name string) {
//	    e.name = name
//	    e.Notify(e, "Name")
//	}
//
// # Collections
//
//	items := observable.New[*Entry]()
//	items.SubscribeItemPropertyChanged(func(e observable.ItemPropertyChanged[*Entry]) {
//	    fmt.Println(e.Item.Name(), e.Property)
//	})
//	items.Append(entry)
//	entry.SetName("Three") // prints "Three Name"
//
// Before a structural change is announced through CollectionChanged, the
// collection has already unsubscribed from the items that left and
// subscribed to the items that entered, so a collection-changed listener
// always observes consistent subscription state.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. All notifications
// are delivered synchronously on the caller's goroutine, in subscription
// order. Callers that share a collection between goroutines must serialize
// access themselves.
package observable
