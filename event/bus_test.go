package event

import (
	"testing"
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := NewBus()

	var order []int
	b.Subscribe(TopicContentInserted, func(any) { order = append(order, 1) })
	b.Subscribe(TopicContentInserted, func(any) { order = append(order, 2) })

	b.Publish(TopicContentInserted, ContentInserted{BufferID: "buf", Position: 0, Text: "x"})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("delivery order = %v", order)
	}
}

func TestPublishPayload(t *testing.T) {
	b := NewBus()

	var got ContentDeleted
	b.Subscribe(TopicContentDeleted, func(e any) {
		got = e.(ContentDeleted)
	})

	b.Publish(TopicContentDeleted, ContentDeleted{BufferID: "buf", Start: 5, End: 7, Text: ", "})

	if got.Start != 5 || got.End != 7 || got.Text != ", " {
		t.Errorf("payload = %+v", got)
	}
}

func TestPublishToOtherTopicNotDelivered(t *testing.T) {
	b := NewBus()

	called := false
	b.Subscribe(TopicContentInserted, func(any) { called = true })

	b.Publish(TopicContentDeleted, ContentDeleted{})

	if called {
		t.Error("handler received event from an unrelated topic")
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()

	called := false
	sub := b.Subscribe(TopicCleared, func(any) { called = true })
	b.Unsubscribe(sub)

	b.Publish(TopicCleared, Cleared{BufferID: "buf"})

	if called {
		t.Error("unsubscribed handler was invoked")
	}
	if b.SubscriberCount(TopicCleared) != 0 {
		t.Errorf("SubscriberCount = %d", b.SubscriberCount(TopicCleared))
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	b := NewBus()

	var delivered bool
	b.Subscribe(TopicUndoApplied, func(any) { panic("bad subscriber") })
	b.Subscribe(TopicUndoApplied, func(any) { delivered = true })

	b.Publish(TopicUndoApplied, HistoryApplied{BufferID: "buf"})

	if !delivered {
		t.Error("panic in one handler starved the next")
	}
}
