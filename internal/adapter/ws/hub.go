package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// EngagementEvent is the wire form of a live read or click notification
// pushed to dashboard clients.
type EngagementEvent struct {
	BroadcastID  string `json:"broadcast_id"`
	RecipientKey string `json:"recipient_key,omitempty"`
	Kind         string `json:"kind"`
	Button       string `json:"button,omitempty"`
	Timestamp    string `json:"timestamp"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Accept(w http.ResponseWriter, r *http.Request) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go h.readPump(conn)
	return nil
}

// BroadcastEngagement fans the event out to every connected client. Writes
// happen off the caller's goroutine so a slow client never blocks the
// tracking path.
func (h *Hub) BroadcastEngagement(broadcastID, recipientKey, kind, button string) {
	data, err := json.Marshal(EngagementEvent{
		BroadcastID:  broadcastID,
		RecipientKey: recipientKey,
		Kind:         kind,
		Button:       button,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		go func(c *websocket.Conn) {
			if err := c.Write(context.Background(), websocket.MessageText, data); err != nil {
				h.removeClient(c)
			}
		}(conn)
	}
}

func (h *Hub) readPump(conn *websocket.Conn) {
	defer h.removeClient(conn)
	for {
		_, _, err := conn.Read(context.Background())
		if err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
