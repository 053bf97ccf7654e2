package observable

// Action describes the kind of structural change a collection went through.
type Action int

const (
	// ActionInsert means one item entered the collection at NewIndex.
	ActionInsert Action = iota
	// ActionRemove means one item left the collection from OldIndex.
	ActionRemove
	// ActionReplace means the item at NewIndex was overwritten.
	ActionReplace
	// ActionMove means one item moved from OldIndex to NewIndex.
	ActionMove
	// ActionClear means every item left the collection.
	ActionClear
	// ActionReset means the whole content was swapped for NewItems.
	ActionReset
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "Insert"
	case ActionRemove:
		return "Remove"
	case ActionReplace:
		return "Replace"
	case ActionMove:
		return "Move"
	case ActionClear:
		return "Clear"
	case ActionReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// CollectionChanged describes one structural change. Indices that do not
// apply to the action are -1.
type CollectionChanged[T any] struct {
	Action Action

	// NewItems are the items that entered (or moved, for ActionMove).
	NewItems []T

	// OldItems are the items that left (or moved, for ActionMove).
	OldItems []T

	NewIndex int
	OldIndex int
}

// Items returns the items the change is about: the old items for removals
// and clears, the new items otherwise.
func (c CollectionChanged[T]) Items() []T {
	switch c.Action {
	case ActionRemove, ActionClear:
		return c.OldItems
	default:
		return c.NewItems
	}
}

// Index returns the position the change is about: OldIndex for removals,
// NewIndex otherwise.
func (c CollectionChanged[T]) Index() int {
	if c.Action == ActionRemove {
		return c.OldIndex
	}
	return c.NewIndex
}

// ItemPropertyChanged reports that Property of Item, an item currently held
// by the collection, changed.
type ItemPropertyChanged[T any] struct {
	Item     T
	Property string
}
