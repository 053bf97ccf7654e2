package feed

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/vango-dev/observable/pkg/entry"
	"github.com/vango-dev/observable/pkg/observable"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Message types sent on the event stream.
const (
	TypeSnapshot            = "snapshot"
	TypeCollectionChanged   = "collection_changed"
	TypeItemPropertyChanged = "item_property_changed"
)

// Message is a single frame of the event stream.
//
// A snapshot carries Collection and Items. A collection_changed message
// carries Action, Index, OldIndex, Items (inserted or replacing) and
// OldItems (removed or replaced). An item_property_changed message carries
// Property and Item, the item's state after the change.
type Message struct {
	Type       string         `json:"type"`
	Collection string         `json:"collection,omitempty"`
	Action     string         `json:"action,omitempty"`
	Index      *int           `json:"index,omitempty"`
	OldIndex   *int           `json:"oldIndex,omitempty"`
	Property   string         `json:"property,omitempty"`
	Item       *entry.Record  `json:"item,omitempty"`
	Items      []entry.Record `json:"items,omitempty"`
	OldItems   []entry.Record `json:"oldItems,omitempty"`
}

func snapshotMessage(c *observable.Collection[*entry.Entry]) Message {
	return Message{
		Type:       TypeSnapshot,
		Collection: c.ID(),
		Items:      entry.Records(c.Slice()),
	}
}

func collectionChangedMessage(e observable.CollectionChanged[*entry.Entry]) Message {
	index, oldIndex := e.NewIndex, e.OldIndex
	m := Message{
		Type:     TypeCollectionChanged,
		Action:   e.Action.String(),
		Index:    &index,
		OldIndex: &oldIndex,
	}
	if len(e.NewItems) > 0 {
		m.Items = entry.Records(e.NewItems)
	}
	if len(e.OldItems) > 0 {
		m.OldItems = entry.Records(e.OldItems)
	}
	return m
}

func itemPropertyChangedMessage(e observable.ItemPropertyChanged[*entry.Entry]) Message {
	rec := e.Item.Record()
	return Message{
		Type:     TypeItemPropertyChanged,
		Property: e.Property,
		Item:     &rec,
	}
}

// Encode marshals m to its wire form.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a wire frame.
func Decode(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}
