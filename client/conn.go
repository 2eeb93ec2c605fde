package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"support-chat-service/internal/models"
)

// Conn is a live websocket session feeding a Timeline. Reads run in a
// background goroutine until Close or a connection error.
type Conn struct {
	ws       *websocket.Conn
	timeline *Timeline

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// Dial connects to the gateway and starts consuming events into the timeline.
func Dial(ctx context.Context, gatewayURL, token string, timeline *Timeline) (*Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, gatewayURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial gateway: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial gateway: %w", err)
	}

	c := &Conn{
		ws:       ws,
		timeline: timeline,
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Join subscribes this connection to a conversation room.
func (c *Conn) Join(conversationID string) error {
	return c.writeEvent(models.ChatEvent{
		Type:           models.EventJoinConversation,
		ConversationID: conversationID,
	})
}

// Leave unsubscribes this connection from a conversation room.
func (c *Conn) Leave(conversationID string) error {
	return c.writeEvent(models.ChatEvent{
		Type:           models.EventLeaveConversation,
		ConversationID: conversationID,
	})
}

// Send records an optimistic text message and submits it. An empty
// conversationID is a first-contact send; the server assigns the agent and
// derives the id. The returned entry is Pending until the broadcast confirms
// it or a send_error fails it.
func (c *Conn) Send(conversationID, content string) (Entry, error) {
	return c.send(conversationID, content, models.MessageTypeText, "")
}

// SendAttachment submits an image or file message whose payload was already
// uploaded; attachmentURL is consumed as-is.
func (c *Conn) SendAttachment(conversationID, content, attachmentURL string, messageType models.MessageType) (Entry, error) {
	return c.send(conversationID, content, messageType, attachmentURL)
}

func (c *Conn) send(conversationID, content string, messageType models.MessageType, attachmentURL string) (Entry, error) {
	entry := c.timeline.AppendLocal(conversationID, content, messageType, attachmentURL)
	err := c.writeEvent(models.ChatEvent{
		Type:           models.EventSendMessage,
		ConversationID: conversationID,
		Content:        content,
		MessageType:    messageType,
		AttachmentURL:  attachmentURL,
		LocalID:        entry.ID,
	})
	if err != nil {
		c.timeline.MarkFailed(entry.ID, "connection_error")
		return entry, err
	}
	return entry, nil
}

// Typing signals the typing indicator; ephemeral, fire-and-forget.
func (c *Conn) Typing(conversationID string, active bool) error {
	eventType := models.EventTypingStart
	if !active {
		eventType = models.EventTypingStop
	}
	return c.writeEvent(models.ChatEvent{
		Type:           eventType,
		ConversationID: conversationID,
	})
}

// Close tears the session down.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) writeEvent(event models.ChatEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Conn) readLoop() {
	defer c.Close()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("gateway read error: %v", err)
			}
			return
		}
		var event models.ChatEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("malformed gateway event: %v", err)
			continue
		}
		c.timeline.ApplyEvent(event)
	}
}

// LoadHistory fetches one page of a conversation over the REST API and merges
// it into the timeline through the same reconciliation path as live events.
func LoadHistory(ctx context.Context, httpClient *http.Client, baseURL, token, conversationID string, limit, offset int, timeline *Timeline) error {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	url := fmt.Sprintf("%s/conversations/%s/messages?limit=%d&offset=%d", baseURL, conversationID, limit, offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch messages: status %d", resp.StatusCode)
	}

	var body struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	for _, msg := range body.Messages {
		timeline.ApplyCanonical(msg)
	}
	return nil
}
