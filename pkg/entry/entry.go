// Package entry provides Entry, a small mutable record whose field changes
// can be observed, for use with observable.Collection.
package entry

import (
	"fmt"

	"github.com/vango-dev/observable/pkg/observable"
)

// Property names reported by Entry setters.
const (
	PropertyID   = "ID"
	PropertyName = "Name"
	PropertyDone = "Done"
)

// Entry is a record with an identifier, a display name and a done flag.
// Every setter notifies property listeners after assigning, whether or not
// the value actually changed.
type Entry struct {
	observable.Notifier

	id   int
	name string
	done bool
}

var _ observable.Observable = (*Entry)(nil)

// New returns an entry that is not yet held by any collection.
func New(id int, name string) *Entry {
	return &Entry{id: id, name: name}
}

// FromRecord returns a new entry carrying the values of r.
func FromRecord(r Record) *Entry {
	return &Entry{id: r.ID, name: r.Name, done: r.Done}
}

func (e *Entry) ID() int      { return e.id }
func (e *Entry) Name() string { return e.name }
func (e *Entry) Done() bool   { return e.done }

// SetID assigns the identifier.
func (e *Entry) SetID(id int) {
	e.id = id
	e.Notify(e, PropertyID)
}

// SetName assigns the display name.
func (e *Entry) SetName(name string) {
	e.name = name
	e.Notify(e, PropertyName)
}

// SetDone assigns the done flag.
func (e *Entry) SetDone(done bool) {
	e.done = done
	e.Notify(e, PropertyDone)
}

// Toggle flips the done flag.
func (e *Entry) Toggle() {
	e.SetDone(!e.done)
}

// Record returns a plain copy of the entry's fields.
func (e *Entry) Record() Record {
	return Record{ID: e.id, Name: e.name, Done: e.done}
}

// String implements fmt.Stringer.
func (e *Entry) String() string {
	return fmt.Sprintf("Entry: %d Name: %s", e.id, e.name)
}

// Record is the serializable form of an Entry.
type Record struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// Records returns the records of entries, in order.
func Records(entries []*Entry) []Record {
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Record())
	}
	return out
}
