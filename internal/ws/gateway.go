package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"support-chat-service/internal/chat"
	"support-chat-service/internal/chaterrors"
	"support-chat-service/internal/conversation"
	grpcclient "support-chat-service/internal/grpc"
	"support-chat-service/internal/models"
	"support-chat-service/internal/observability"
)

// Sender is the slice of the ingestion service the gateway needs.
type Sender interface {
	Send(ctx context.Context, in chat.SendInput) (models.Message, error)
}

// Gateway upgrades websocket connections and routes their events.
type Gateway struct {
	hub        *Hub
	chat       Sender
	authClient *grpcclient.AuthClient
}

// NewGateway constructs a Gateway.
func NewGateway(hub *Hub, chatService Sender, authClient *grpcclient.AuthClient) *Gateway {
	return &Gateway{hub: hub, chat: chatService, authClient: authClient}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates, upgrades and registers the connection, then serves
// its events until disconnect.
func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("support-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	identity, err := g.validateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      identity.UserID,
		Role:        identity.Role,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}

	client := NewClient(g.hub, conn, info)
	g.hub.Register(client)

	observability.IncWSActive("chat")
	observability.IncWSEvent("chat", "ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.chats", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   connEventPayload(info, "ws_connect", 0, ""),
	}, observability.BuildHeaders(requestID, traceID))

	go client.writePump()
	go g.readPump(ctx, client)
}

// readPump consumes client events until the connection dies, then cleans up.
func (g *Gateway) readPump(ctx context.Context, client *Client) {
	info := client.Info()
	var closeReason string
	defer func() {
		g.hub.Unregister(client)
		client.Close()
		observability.DecWSActive("chat")
		observability.IncWSEvent("chat", "ws_disconnect")
		_ = observability.PublishEvent(ctx, "ws_events.chats", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_disconnect",
			Payload:   connEventPayload(info, "ws_disconnect", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
		}, observability.BuildHeaders(info.RequestID, info.TraceID))
	}()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("chat", "ws_error")
				_ = observability.PublishEvent(ctx, "ws_events.chats", observability.EventEnvelope{
					EventType: "ws_events",
					EventName: "ws_error",
					Payload:   connEventPayload(info, "ws_error", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
				}, observability.BuildHeaders(info.RequestID, info.TraceID))
			}
			return
		}

		var event models.ChatEvent
		if err := json.Unmarshal(data, &event); err != nil {
			g.sendEvent(client, models.ChatEvent{
				Type:  models.EventConversationError,
				Code:  chaterrors.Code(chaterrors.ErrValidation),
				Error: "malformed event",
			})
			continue
		}
		g.handleEvent(ctx, client, event)
	}
}

func (g *Gateway) handleEvent(ctx context.Context, client *Client, event models.ChatEvent) {
	info := client.Info()

	switch event.Type {
	case models.EventJoinConversation:
		if err := g.authorizeMembership(event.ConversationID, info.UserID); err != nil {
			g.sendEvent(client, models.ChatEvent{
				Type:           models.EventConversationError,
				ConversationID: event.ConversationID,
				Code:           chaterrors.Code(err),
				Error:          err.Error(),
			})
			return
		}
		g.hub.JoinRoom(client, event.ConversationID)

	case models.EventLeaveConversation:
		g.hub.LeaveRoom(client, event.ConversationID)

	case models.EventSendMessage:
		messageType := event.MessageType
		if messageType == "" {
			messageType = models.MessageTypeText
		}
		msg, err := g.chat.Send(ctx, chat.SendInput{
			SenderID:       info.UserID,
			ConversationID: event.ConversationID,
			ToID:           event.ToID,
			Content:        event.Content,
			MessageType:    messageType,
			AttachmentURL:  event.AttachmentURL,
		})
		if err != nil {
			observability.IncWSEvent("chat", "send_error")
			g.sendEvent(client, models.ChatEvent{
				Type:           models.EventSendError,
				ConversationID: event.ConversationID,
				LocalID:        event.LocalID,
				Code:           chaterrors.Code(err),
				Error:          err.Error(),
			})
			return
		}
		if event.ConversationID == "" {
			// First contact: the room did not exist when the broadcast
			// fired, so subscribe the sender now and hand their own
			// connections the canonical message directly.
			g.hub.JoinRoom(client, msg.ConversationID)
			g.hub.SendDirect(info.UserID, models.ChatEvent{
				Type:           models.EventNewMessage,
				ConversationID: msg.ConversationID,
				Message:        &msg,
			})
		}

	case models.EventTypingStart, models.EventTypingStop:
		if !conversation.IsMember(event.ConversationID, info.UserID) {
			return
		}
		g.hub.BroadcastTyping(event.ConversationID, info.UserID, models.ChatEvent{
			Type:           event.Type,
			ConversationID: event.ConversationID,
			UserID:         info.UserID,
		})

	default:
		g.sendEvent(client, models.ChatEvent{
			Type:  models.EventConversationError,
			Code:  chaterrors.Code(chaterrors.ErrValidation),
			Error: fmt.Sprintf("unknown event type %q", event.Type),
		})
	}
}

func (g *Gateway) authorizeMembership(conversationID, userID string) error {
	parts, err := conversation.Participants(conversationID)
	if err != nil {
		return err
	}
	if parts[0] != userID && parts[1] != userID {
		return fmt.Errorf("%w: %q in %q", chaterrors.ErrUnauthorized, userID, conversationID)
	}
	return nil
}

func (g *Gateway) sendEvent(client *Client, event models.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if !client.trySend(payload) {
		client.Close()
		g.hub.Unregister(client)
	}
}

func (g *Gateway) validateToken(ctx context.Context, header string) (grpcclient.Identity, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return g.authClient.ValidateToken(ctx, parts[1])
	}
	return grpcclient.Identity{}, fmt.Errorf("invalid token")
}

func connEventPayload(info ConnInfo, event string, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "chat",
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"role":      info.Role,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
