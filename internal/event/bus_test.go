package event

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := testBus()

	var calls []string
	bus.Subscribe("first", func(Event) error { calls = append(calls, "first"); return nil })
	bus.Subscribe("second", func(Event) error { calls = append(calls, "second"); return nil })
	bus.Subscribe("third", func(Event) error { calls = append(calls, "third"); return nil })

	bus.Publish(BookmarksDeleted{BookmarkIDs: []int64{1}})

	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestBus_PreservesPublishOrder(t *testing.T) {
	bus := testBus()

	var kinds []Kind
	bus.Subscribe("recorder", func(e Event) error { kinds = append(kinds, e.Kind()); return nil })

	bus.Publish(LabelAddedOrUpdated{})
	bus.Publish(BookmarkAddedOrUpdated{})
	bus.Publish(LabelsDeleted{})

	assert.Equal(t, []Kind{KindLabelAddedOrUpdated, KindBookmarkAddedOrUpdated, KindLabelsDeleted}, kinds)
}

func TestBus_IsolatesFailingSubscribers(t *testing.T) {
	bus := testBus()

	var reached int
	bus.Subscribe("errors", func(Event) error { return errors.New("boom") })
	bus.Subscribe("panics", func(Event) error { panic("kaboom") })
	bus.Subscribe("ok", func(Event) error { reached++; return nil })

	require.NotPanics(t, func() {
		bus.Publish(BookmarksDeleted{})
	})
	assert.Equal(t, 1, reached)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := testBus()

	var a, b int
	unsubA := bus.Subscribe("a", func(Event) error { a++; return nil })
	bus.Subscribe("b", func(Event) error { b++; return nil })

	bus.Publish(LabelsDeleted{})
	unsubA()
	unsubA() // second call is a no-op
	bus.Publish(LabelsDeleted{})

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, bus.SubscriberCount())
}

func TestBus_SubscribeDuringPublish(t *testing.T) {
	bus := testBus()

	var late int
	bus.Subscribe("spawner", func(Event) error {
		bus.Subscribe("late", func(Event) error { late++; return nil })
		return nil
	})

	bus.Publish(LabelsDeleted{})
	assert.Equal(t, 0, late, "subscriber added mid-publish must wait for the next event")

	bus.Publish(LabelsDeleted{})
	assert.Equal(t, 1, late)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Publish(LabelsDeleted{LabelIDs: []int64{3}})

	events := r.Events()
	require.Len(t, events, 1)
	assert.Equal(t, LabelsDeleted{LabelIDs: []int64{3}}, events[0])

	r.Reset()
	assert.Empty(t, r.Events())
}
