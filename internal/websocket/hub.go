package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/nexapay/nexapay-backend/internal/app/model"
	"github.com/nexapay/nexapay-backend/pkg/logger"
)

// StatusEvent is pushed to a user's connected clients whenever one of
// their verification records changes canonical status.
type StatusEvent struct {
	Type        string                `json:"type"` // always "verification_status"
	LevelName   string                `json:"level_name"`
	Status      model.CanonicalStatus `json:"status"`
	OccurredAt  time.Time             `json:"occurred_at"`
}

// Client is one connected websocket session.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// Hub tracks connected clients per user and fans events out to them.
// Multiple devices per user are supported.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	publish    chan userMessage

	mu sync.RWMutex
}

type userMessage struct {
	UserID  uint
	Payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan userMessage, 64),
	}
}

// Run processes hub events. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Debug("Websocket client registered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.UserID]
			for i, c := range clients {
				if c == client {
					h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(h.clients[client.UserID]) == 0 {
				delete(h.clients, client.UserID)
			}
			h.mu.Unlock()

		case msg := <-h.publish:
			h.mu.RLock()
			for _, client := range h.clients[msg.UserID] {
				select {
				case client.Send <- msg.Payload:
				default:
					// Slow consumer; drop rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishStatus pushes a verification status event to a user's sessions.
func (h *Hub) PublishStatus(userID uint, levelName string, status model.CanonicalStatus) {
	event := StatusEvent{
		Type:       "verification_status",
		LevelName:  levelName,
		Status:     status,
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal status event", err, nil)
		return
	}

	select {
	case h.publish <- userMessage{UserID: userID, Payload: payload}:
	default:
		logger.Warn("Websocket publish queue full, dropping status event", map[string]interface{}{
			"user_id": userID,
		})
	}
}
