package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/observable/pkg/entry"
	"github.com/vango-dev/observable/pkg/observable"
)

func TestEncode_collectionChanged(t *testing.T) {
	one := entry.New(1, "One")
	three := entry.New(3, "Three")

	tests := []struct {
		name  string
		event observable.CollectionChanged[*entry.Entry]
		want  string
	}{
		{
			name: "insert",
			event: observable.CollectionChanged[*entry.Entry]{
				Action: observable.ActionInsert, NewItems: []*entry.Entry{three}, NewIndex: 2, OldIndex: -1,
			},
			want: `{"type":"collection_changed","action":"Insert","index":2,"oldIndex":-1,"items":[{"id":3,"name":"Three","done":false}]}`,
		},
		{
			name: "replace",
			event: observable.CollectionChanged[*entry.Entry]{
				Action: observable.ActionReplace, NewItems: []*entry.Entry{three}, OldItems: []*entry.Entry{one}, NewIndex: 0, OldIndex: 0,
			},
			want: `{"type":"collection_changed","action":"Replace","index":0,"oldIndex":0,"items":[{"id":3,"name":"Three","done":false}],"oldItems":[{"id":1,"name":"One","done":false}]}`,
		},
		{
			name: "clear of empty collection",
			event: observable.CollectionChanged[*entry.Entry]{
				Action: observable.ActionClear, NewIndex: -1, OldIndex: 0,
			},
			want: `{"type":"collection_changed","action":"Clear","index":-1,"oldIndex":0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(collectionChangedMessage(tt.event))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestEncode_itemPropertyChanged(t *testing.T) {
	e := entry.New(2, "Three")
	data, err := Encode(itemPropertyChangedMessage(observable.ItemPropertyChanged[*entry.Entry]{
		Item: e, Property: entry.PropertyName,
	}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"item_property_changed","property":"Name","item":{"id":2,"name":"Three","done":false}}`,
		string(data))
}

func TestDecode_invalid(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.Error(t, err)
}
