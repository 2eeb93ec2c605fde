package client

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chat-service/internal/models"
)

func canonical(id int64, conversationID, fromID, content string, at time.Time) models.Message {
	return models.Message{
		ID:             id,
		ConversationID: conversationID,
		FromID:         fromID,
		Content:        content,
		MessageType:    models.MessageTypeText,
		CreatedAt:      at,
	}
}

func TestOptimisticSendConfirmedInPlace(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("u1", WithClock(func() time.Time { return base }))

	pending := timeline.AppendLocal("u1_u2", "Hello", models.MessageTypeText, "")
	require.Equal(t, StatePending, pending.State)
	require.NotEmpty(t, pending.ID)

	ok := timeline.ApplyCanonical(canonical(41, "u1_u2", "u1", "Hello", base.Add(30*time.Millisecond)))
	require.True(t, ok)

	msgs := timeline.Messages()
	require.Len(t, msgs, 1, "confirmation must replace the pending entry, not add a second one")
	require.Equal(t, StateConfirmed, msgs[0].State)
	require.Equal(t, "41", msgs[0].ID)
	require.EqualValues(t, 41, msgs[0].CanonicalID)
	require.Equal(t, base.Add(30*time.Millisecond), msgs[0].CreatedAt)
}

func TestDuplicateDeliveryDiscarded(t *testing.T) {
	timeline := NewTimeline("u1")
	msg := canonical(7, "u1_u2", "u2", "hi", time.Now())

	require.True(t, timeline.ApplyCanonical(msg))
	require.False(t, timeline.ApplyCanonical(msg))
	require.False(t, timeline.ApplyCanonical(msg))
	require.Len(t, timeline.Messages(), 1)
}

func TestCounterpartMessageAppends(t *testing.T) {
	timeline := NewTimeline("u1")
	timeline.AppendLocal("u1_u2", "same text", models.MessageTypeText, "")

	// identical content from the counterpart is not our pending send
	ok := timeline.ApplyCanonical(canonical(9, "u1_u2", "u2", "same text", time.Now()))
	require.True(t, ok)

	msgs := timeline.Messages()
	require.Len(t, msgs, 2)
}

func TestMatchWindowExpiredAppendsSeparateEntry(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	timeline := NewTimeline("u1", WithClock(func() time.Time { return now }))

	pending := timeline.AppendLocal("u1_u2", "late echo", models.MessageTypeText, "")

	// the echo arrives long after the tolerance window
	now = base.Add(3 * time.Second)
	require.True(t, timeline.ApplyCanonical(canonical(5, "u1_u2", "u1", "late echo", now)))

	msgs := timeline.Messages()
	require.Len(t, msgs, 2)
	var states []State
	for _, m := range msgs {
		states = append(states, m.State)
	}
	assert.Contains(t, states, StatePending)
	assert.Contains(t, states, StateConfirmed)

	// the stale pending entry remains addressable for cleanup
	require.True(t, timeline.Remove(pending.ID))
	require.Len(t, timeline.Messages(), 1)
}

func TestFirstContactLearnsConversationID(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("cust1", WithClock(func() time.Time { return base }))

	timeline.AppendLocal("", "I need help", models.MessageTypeText, "")
	require.True(t, timeline.ApplyCanonical(canonical(1, "agent1_cust1", "cust1", "I need help", base)))

	msgs := timeline.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "agent1_cust1", msgs[0].ConversationID)
	require.Equal(t, StateConfirmed, msgs[0].State)
}

func TestSendErrorMarksFailed(t *testing.T) {
	timeline := NewTimeline("u1")
	pending := timeline.AppendLocal("u1_u2", "oops", models.MessageTypeText, "")

	timeline.ApplyEvent(models.ChatEvent{
		Type:    models.EventSendError,
		LocalID: pending.ID,
		Code:    "validation_error",
	})

	msgs := timeline.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, StateFailed, msgs[0].State)
	require.Equal(t, "validation_error", msgs[0].FailureCode)

	// a failed entry no longer matches a late echo
	require.True(t, timeline.ApplyCanonical(canonical(3, "u1_u2", "u1", "oops", time.Now())))
	require.Len(t, timeline.Messages(), 2)
}

func TestMarkFailedUnknownOrConfirmed(t *testing.T) {
	base := time.Now()
	timeline := NewTimeline("u1", WithClock(func() time.Time { return base }))
	pending := timeline.AppendLocal("u1_u2", "hello", models.MessageTypeText, "")
	require.True(t, timeline.ApplyCanonical(canonical(4, "u1_u2", "u1", "hello", base)))

	assert.False(t, timeline.MarkFailed(pending.ID, "transient_error"), "confirmed entry keeps its state")
	assert.False(t, timeline.MarkFailed("no-such-id", "transient_error"))
}

func TestRemoveConfirmedRejected(t *testing.T) {
	base := time.Now()
	timeline := NewTimeline("u1", WithClock(func() time.Time { return base }))
	pending := timeline.AppendLocal("u1_u2", "keep me", models.MessageTypeText, "")
	require.True(t, timeline.ApplyCanonical(canonical(8, "u1_u2", "u1", "keep me", base)))

	require.False(t, timeline.Remove(pending.ID))
	require.Len(t, timeline.Messages(), 1)
}

func TestDisplayOrderByCanonicalTimestamp(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("u1")

	// delivered out of order
	require.True(t, timeline.ApplyCanonical(canonical(12, "u1_u2", "u2", "third", base.Add(2*time.Second))))
	require.True(t, timeline.ApplyCanonical(canonical(10, "u1_u2", "u2", "first", base)))
	require.True(t, timeline.ApplyCanonical(canonical(11, "u1_u2", "u1", "second", base.Add(time.Second))))

	msgs := timeline.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, "first", msgs[0].Content)
	require.Equal(t, "second", msgs[1].Content)
	require.Equal(t, "third", msgs[2].Content)
}

func TestOrderTieBrokenByCanonicalID(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("u1")

	require.True(t, timeline.ApplyCanonical(canonical(21, "u1_u2", "u2", "b", at)))
	require.True(t, timeline.ApplyCanonical(canonical(20, "u1_u2", "u2", "a", at)))

	msgs := timeline.Messages()
	require.Equal(t, "a", msgs[0].Content)
	require.Equal(t, "b", msgs[1].Content)
}

func TestReadReceiptFlagsCounterpartView(t *testing.T) {
	base := time.Now()
	timeline := NewTimeline("u1", WithClock(func() time.Time { return base }))
	timeline.AppendLocal("u1_u2", "did you see this", models.MessageTypeText, "")
	require.True(t, timeline.ApplyCanonical(canonical(30, "u1_u2", "u1", "did you see this", base)))
	require.True(t, timeline.ApplyCanonical(canonical(31, "u1_u2", "u2", "yes", base.Add(time.Second))))

	timeline.ApplyEvent(models.ChatEvent{
		Type:           models.EventMessageRead,
		ConversationID: "u1_u2",
		UserID:         "u2",
	})

	for _, m := range timeline.Messages() {
		switch m.SenderID {
		case "u1":
			assert.True(t, m.IsRead, "own message now read by u2")
		case "u2":
			assert.False(t, m.IsRead, "reader's own message untouched")
		}
	}
}

func TestDeletedMessageStaysDeleted(t *testing.T) {
	timeline := NewTimeline("u1")
	msg := canonical(55, "u1_u2", "u2", "gone", time.Now())
	require.True(t, timeline.ApplyCanonical(msg))

	timeline.ApplyEvent(models.ChatEvent{Type: models.EventMessageDeleted, MessageID: 55})
	require.Empty(t, timeline.Messages())

	// late redelivery of the same canonical id must not resurrect it
	require.False(t, timeline.ApplyCanonical(msg))
	require.Empty(t, timeline.Messages())
}

func TestConcurrentDeliveriesConvergeToOne(t *testing.T) {
	timeline := NewTimeline("u1")
	msg := canonical(99, "u1_u2", "u2", "raced", time.Now())

	var wg sync.WaitGroup
	applied := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied <- timeline.ApplyCanonical(msg)
		}()
	}
	wg.Wait()
	close(applied)

	var wins int
	for ok := range applied {
		if ok {
			wins++
		}
	}
	require.Equal(t, 1, wins)
	require.Len(t, timeline.Messages(), 1)
}

func TestConcurrentDistinctDeliveries(t *testing.T) {
	timeline := NewTimeline("u1")
	base := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := canonical(int64(i+1), "u1_u2", "u2", fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Millisecond))
			timeline.ApplyCanonical(m)
		}(i)
	}
	wg.Wait()

	require.Len(t, timeline.Messages(), 50)
}

func TestHistoryThenLiveOverlap(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	timeline := NewTimeline("u1")

	history := []models.Message{
		canonical(1, "u1_u2", "u2", "old one", base),
		canonical(2, "u1_u2", "u1", "old two", base.Add(time.Second)),
	}
	for _, m := range history {
		timeline.ApplyCanonical(m)
	}

	// the live feed replays the tail of the history page
	timeline.ApplyEvent(models.ChatEvent{Type: models.EventNewMessage, Message: &history[1]})
	live := canonical(3, "u1_u2", "u2", "fresh", base.Add(2*time.Second))
	timeline.ApplyEvent(models.ChatEvent{Type: models.EventNewMessage, Message: &live})

	msgs := timeline.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, "fresh", msgs[2].Content)
}
