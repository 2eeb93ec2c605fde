package ws

import (
	"encoding/json"
	"log"
	"sync"

	"support-chat-service/internal/models"
	"support-chat-service/internal/observability"
)

// Hub is the connection registry: presence (user id to live connections,
// multi-tab) and rooms (conversation id to subscribed connections). It is the
// only mutable shared state of the server and is mutated solely on connection
// lifecycle and join/leave events.
type Hub struct {
	mu       sync.RWMutex
	presence map[string]map[*Client]struct{}
	rooms    map[string]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		presence: make(map[string]map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connection to the presence map.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.presence[c.info.UserID]; !ok {
		h.presence[c.info.UserID] = make(map[*Client]struct{})
	}
	h.presence[c.info.UserID][c] = struct{}{}
}

// Unregister removes a connection from presence and from every room it
// joined. Disconnect needs no further rollback.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.presence[c.info.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.presence, c.info.UserID)
		}
	}
	for conversationID := range c.rooms {
		h.removeFromRoom(c, conversationID)
	}
}

// JoinRoom subscribes a connection to a conversation room. A connection holds
// at most one membership per conversation; joining again is a no-op.
func (h *Hub) JoinRoom(c *Client, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := c.rooms[conversationID]; ok {
		return
	}
	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[*Client]struct{})
	}
	h.rooms[conversationID][c] = struct{}{}
	c.rooms[conversationID] = struct{}{}
}

// LeaveRoom unsubscribes a connection from a conversation room.
func (h *Hub) LeaveRoom(c *Client, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoom(c, conversationID)
}

func (h *Hub) removeFromRoom(c *Client, conversationID string) {
	if members, ok := h.rooms[conversationID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	delete(c.rooms, conversationID)
}

// Broadcast delivers the event once to every connection in the conversation
// room, the sender's own included, so every client converges through the same
// path. Fan-out never blocks: a connection whose buffer is full is dropped
// from the hub instead of stalling the rest of the room.
func (h *Hub) Broadcast(conversationID string, event models.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	for _, c := range h.roomMembers(conversationID) {
		h.deliver(c, payload)
	}
}

// BroadcastTyping delivers an ephemeral typing event to the room, excluding
// every connection of the typing user. No delivery guarantee.
func (h *Hub) BroadcastTyping(conversationID, senderID string, event models.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	for _, c := range h.roomMembers(conversationID) {
		if c.info.UserID == senderID {
			continue
		}
		h.deliver(c, payload)
	}
}

// SendDirect delivers the event to every live connection of one user,
// independent of room membership.
func (h *Hub) SendDirect(userID string, event models.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make([]*Client, 0, len(h.presence[userID]))
	for c := range h.presence[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		h.deliver(c, payload)
	}
}

func (h *Hub) roomMembers(conversationID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := make([]*Client, 0, len(h.rooms[conversationID]))
	for c := range h.rooms[conversationID] {
		members = append(members, c)
	}
	return members
}

func (h *Hub) deliver(c *Client, payload []byte) {
	if c.trySend(payload) {
		return
	}
	log.Printf("dropping slow websocket consumer user=%s conn=%s", c.info.UserID, c.info.ConnID)
	observability.IncWSEvent("chat", "ws_drop_slow")
	c.Close()
	h.Unregister(c)
}
