package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chat-service/internal/models"
)

func newTestClient(h *Hub, userID string) *Client {
	return NewClient(h, nil, ConnInfo{ConnID: newConnID(), UserID: userID})
}

func drainEvent(t *testing.T, c *Client) models.ChatEvent {
	t.Helper()
	select {
	case payload := <-c.send:
		var event models.ChatEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	default:
		t.Fatal("expected a queued frame")
		return models.ChatEvent{}
	}
}

func TestRegisterUnregisterPresence(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, "u1")

	h.Register(c)
	h.mu.RLock()
	require.Contains(t, h.presence, "u1")
	h.mu.RUnlock()

	h.Unregister(c)
	h.mu.RLock()
	require.NotContains(t, h.presence, "u1")
	h.mu.RUnlock()
}

func TestJoinRoomIsIdempotent(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, "u1")
	h.Register(c)

	h.JoinRoom(c, "u1_u2")
	h.JoinRoom(c, "u1_u2")

	h.mu.RLock()
	require.Len(t, h.rooms["u1_u2"], 1)
	h.mu.RUnlock()

	h.Broadcast("u1_u2", models.ChatEvent{Type: models.EventNewMessage})
	drainEvent(t, c)
	select {
	case <-c.send:
		t.Fatal("double join must not double deliveries")
	default:
	}
}

func TestBroadcastIncludesSender(t *testing.T) {
	h := NewHub()
	sender := newTestClient(h, "u1")
	other := newTestClient(h, "u2")
	for _, c := range []*Client{sender, other} {
		h.Register(c)
		h.JoinRoom(c, "u1_u2")
	}

	event := models.ChatEvent{
		Type:           models.EventNewMessage,
		ConversationID: "u1_u2",
		Message:        &models.Message{ID: 1, FromID: "u1", Content: "hello"},
	}
	h.Broadcast("u1_u2", event)

	for _, c := range []*Client{sender, other} {
		got := drainEvent(t, c)
		assert.Equal(t, models.EventNewMessage, got.Type)
		require.NotNil(t, got.Message)
		assert.Equal(t, "hello", got.Message.Content)
	}
}

func TestBroadcastReachesEveryTab(t *testing.T) {
	h := NewHub()
	tab1 := newTestClient(h, "u1")
	tab2 := newTestClient(h, "u1")
	for _, c := range []*Client{tab1, tab2} {
		h.Register(c)
		h.JoinRoom(c, "u1_u2")
	}

	h.Broadcast("u1_u2", models.ChatEvent{Type: models.EventNewMessage})

	for _, c := range []*Client{tab1, tab2} {
		got := drainEvent(t, c)
		assert.Equal(t, models.EventNewMessage, got.Type)
		select {
		case <-c.send:
			t.Fatal("each tab gets the event exactly once")
		default:
		}
	}
}

func TestBroadcastScopedToRoom(t *testing.T) {
	h := NewHub()
	member := newTestClient(h, "u1")
	outsider := newTestClient(h, "u3")
	h.Register(member)
	h.Register(outsider)
	h.JoinRoom(member, "u1_u2")
	h.JoinRoom(outsider, "u3_u4")

	h.Broadcast("u1_u2", models.ChatEvent{Type: models.EventNewMessage})

	drainEvent(t, member)
	select {
	case <-outsider.send:
		t.Fatal("event leaked outside the room")
	default:
	}
}

func TestTypingExcludesEveryTabOfSender(t *testing.T) {
	h := NewHub()
	tab1 := newTestClient(h, "u1")
	tab2 := newTestClient(h, "u1")
	peer := newTestClient(h, "u2")
	for _, c := range []*Client{tab1, tab2, peer} {
		h.Register(c)
		h.JoinRoom(c, "u1_u2")
	}

	h.BroadcastTyping("u1_u2", "u1", models.ChatEvent{Type: models.EventTypingStart, UserID: "u1"})

	got := drainEvent(t, peer)
	assert.Equal(t, models.EventTypingStart, got.Type)
	for _, c := range []*Client{tab1, tab2} {
		select {
		case <-c.send:
			t.Fatal("typing echoed back to the sender")
		default:
		}
	}
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, "u1")
	h.Register(c)
	h.JoinRoom(c, "u1_u2")
	h.LeaveRoom(c, "u1_u2")

	h.Broadcast("u1_u2", models.ChatEvent{Type: models.EventNewMessage})
	select {
	case <-c.send:
		t.Fatal("left room still receiving")
	default:
	}

	h.mu.RLock()
	require.NotContains(t, h.rooms, "u1_u2")
	h.mu.RUnlock()
}

func TestUnregisterClearsRoomMemberships(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, "u1")
	peer := newTestClient(h, "u2")
	h.Register(c)
	h.Register(peer)
	h.JoinRoom(c, "u1_u2")
	h.JoinRoom(peer, "u1_u2")

	h.Unregister(c)

	h.mu.RLock()
	require.Len(t, h.rooms["u1_u2"], 1)
	h.mu.RUnlock()

	h.Broadcast("u1_u2", models.ChatEvent{Type: models.EventNewMessage})
	drainEvent(t, peer)
	select {
	case <-c.send:
		t.Fatal("unregistered connection still receiving")
	default:
	}
}

func TestSlowConsumerDroppedNotBlocked(t *testing.T) {
	h := NewHub()
	slow := newTestClient(h, "u1")
	healthy := newTestClient(h, "u2")
	h.Register(slow)
	h.Register(healthy)
	h.JoinRoom(slow, "u1_u2")
	h.JoinRoom(healthy, "u1_u2")

	// no write pump drains slow, so its buffer fills to capacity
	for i := 0; i < sendBuffer; i++ {
		require.True(t, slow.trySend([]byte("{}")))
	}

	h.Broadcast("u1_u2", models.ChatEvent{Type: models.EventNewMessage})

	// the healthy peer got the event while the stalled one was evicted
	drainEvent(t, healthy)
	h.mu.RLock()
	_, present := h.presence["u1"]
	members := len(h.rooms["u1_u2"])
	h.mu.RUnlock()
	require.False(t, present)
	require.Equal(t, 1, members)

	select {
	case <-slow.done:
	default:
		t.Fatal("dropped client was not closed")
	}
}

func TestSendDirectHitsAllConnections(t *testing.T) {
	h := NewHub()
	tab1 := newTestClient(h, "u1")
	tab2 := newTestClient(h, "u1")
	h.Register(tab1)
	h.Register(tab2)

	h.SendDirect("u1", models.ChatEvent{Type: models.EventNewMessage})

	for _, c := range []*Client{tab1, tab2} {
		got := drainEvent(t, c)
		assert.Equal(t, models.EventNewMessage, got.Type)
	}
}
