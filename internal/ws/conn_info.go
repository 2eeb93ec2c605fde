package ws

import "time"

// ConnInfo carries the ephemeral metadata of one websocket connection. It
// lives exactly as long as the connection and is never persisted.
type ConnInfo struct {
	ConnID      string
	UserID      string
	Role        string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
