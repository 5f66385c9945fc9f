// Package realtime pushes approval events to connected browsers over
// websockets. Subscribers join a per-request room; the approval engine never
// waits on them.
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// Message is one event pushed to a room.
type Message struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload,omitempty"`
	SentAt  time.Time `json:"sentAt"`
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub tracks subscribers grouped by approval request.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		log: logger.With("service", "realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin checks are handled by the CORS layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		rooms: make(map[uuid.UUID]map[*client]struct{}),
	}
}

// Publish sends an event to every subscriber of the request's room. A slow
// subscriber whose buffer is full just misses the event.
func (h *Hub) Publish(requestID uuid.UUID, event string, payload any) {
	msg := Message{Event: event, Payload: payload, SentAt: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[requestID] {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// ServeWS handles GET /ws/requests/{id}: upgrades the connection and joins
// the request's room until the peer goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	c := &client{conn: conn, send: make(chan Message, sendBufferSize)}
	h.join(requestID, c)

	go h.writeLoop(requestID, c)
	go h.readLoop(requestID, c)
}

// RoomSize reports the subscriber count of one room.
func (h *Hub) RoomSize(requestID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[requestID])
}

func (h *Hub) join(requestID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[requestID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[requestID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) leave(requestID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[requestID]
	if !ok {
		return
	}
	if _, member := room[c]; !member {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, requestID)
	}
}

// readLoop drains the connection so pongs and close frames are processed.
// Incoming data frames are ignored: the channel is push-only.
func (h *Hub) readLoop(requestID uuid.UUID, c *client) {
	defer func() {
		h.leave(requestID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(requestID uuid.UUID, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.log.Warn("marshal realtime message", slog.String("error", err.Error()))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
