package websocket

import (
	"encoding/json"
	"time"

	"github.com/coder/websocket"
)

// Message types pushed to browsers.
const (
	TypeStateChanged   = "state_changed"
	TypePhaseChanged   = "phase_changed"
	TypePreviewChanged = "preview_changed"
	TypeViewChanged    = "view_changed"
)

// Message is a server to browser notification.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// OriginValidator decides whether a websocket handshake origin is trusted.
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

// OriginList is an OriginValidator over a fixed set of origins. An empty
// origin header is a same-origin request and is always allowed.
type OriginList []string

func (l OriginList) IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range l {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// client is one connected browser.
type client struct {
	conn *websocket.Conn
	send chan []byte
	ip   string
}
