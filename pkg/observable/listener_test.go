package observable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/observable/pkg/observable"
)

func TestListeners_emitInOrder(t *testing.T) {
	t.Parallel()

	var l observable.Listeners[string]
	var got []string
	l.Add(func(s string) { got = append(got, "first:"+s) })
	l.Add(func(s string) { got = append(got, "second:"+s) })

	l.Emit("x")

	assert.Equal(t, []string{"first:x", "second:x"}, got)
	assert.Equal(t, 2, l.Len())
}

func TestListeners_handlesAreUnique(t *testing.T) {
	t.Parallel()

	var a, b observable.Listeners[int]
	h1 := a.Add(func(int) {})
	h2 := a.Add(func(int) {})
	h3 := b.Add(func(int) {})

	assert.NotZero(t, h1)
	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h2, h3)

	// A handle from one registry never removes from another.
	assert.False(t, b.Remove(h1))
	assert.True(t, a.Has(h1))
}

func TestListeners_removeKeepsOrder(t *testing.T) {
	t.Parallel()

	var l observable.Listeners[int]
	var got []int
	l.Add(func(int) { got = append(got, 1) })
	h := l.Add(func(int) { got = append(got, 2) })
	l.Add(func(int) { got = append(got, 3) })

	require.True(t, l.Remove(h))
	require.False(t, l.Remove(h))
	require.False(t, l.Has(h))

	l.Emit(0)
	assert.Equal(t, []int{1, 3}, got)
}

func TestListeners_nilCallbackIgnored(t *testing.T) {
	t.Parallel()

	var l observable.Listeners[int]
	h := l.Add(nil)

	assert.Zero(t, h)
	assert.Zero(t, l.Len())
	assert.False(t, l.Remove(h))
}

func TestListeners_mutationDuringEmit(t *testing.T) {
	t.Parallel()

	var l observable.Listeners[int]
	var got []string

	var second observable.Handle
	l.Add(func(int) {
		got = append(got, "first")
		// Removed mid-emission: still receives this event.
		l.Remove(second)
		// Added mid-emission: does not receive this event.
		l.Add(func(int) { got = append(got, "late") })
	})
	second = l.Add(func(int) { got = append(got, "second") })

	l.Emit(1)
	assert.Equal(t, []string{"first", "second"}, got)

	got = nil
	l.Emit(2)
	assert.Equal(t, []string{"first", "late"}, got)
}

func TestNotifier(t *testing.T) {
	t.Parallel()

	var n observable.Notifier
	src := &struct{}{}

	var sources []any
	var props []string
	h := n.SubscribePropertyChanged(func(source any, property string) {
		sources = append(sources, source)
		props = append(props, property)
	})
	assert.Equal(t, 1, n.Subscribers())

	n.Notify(src, "Name")
	n.Notify(src, "Name")

	assert.Equal(t, []string{"Name", "Name"}, props)
	assert.Same(t, src, sources[0])

	require.True(t, n.UnsubscribePropertyChanged(h))
	n.Notify(src, "Name")
	assert.Len(t, props, 2)
	assert.Zero(t, n.Subscribers())

	assert.Zero(t, n.SubscribePropertyChanged(nil))
}

func TestAction_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Insert", observable.ActionInsert.String())
	assert.Equal(t, "Remove", observable.ActionRemove.String())
	assert.Equal(t, "Replace", observable.ActionReplace.String())
	assert.Equal(t, "Move", observable.ActionMove.String())
	assert.Equal(t, "Clear", observable.ActionClear.String())
	assert.Equal(t, "Reset", observable.ActionReset.String())
	assert.Equal(t, "Unknown", observable.Action(42).String())
}
