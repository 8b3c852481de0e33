package brackets

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// StageEvent is what the hub broadcasts to a stage room after a mutation.
type StageEvent struct {
	Type    string      `json:"type"` // e.g. "MATCH_UPDATED", "STAGE_GENERATED"
	StageID int64       `json:"stage_id"`
	Payload interface{} `json:"payload"`
}

// Client is one websocket subscriber of a stage room.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	room   int64
	closed bool
	mu     sync.Mutex
}

// NewClient wires a websocket connection into the hub for one stage room.
func NewClient(hub *Hub, conn *websocket.Conn, stageID int64) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, 16), room: stageID}
}

// Hub fans stage events out to the clients subscribed to each stage.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[int64]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()
			h.logger.Debug("ws client registered", slog.Int64("stage_id", client.room))

		case client := <-h.Unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.room]; ok {
				if _, okClient := room[client]; okClient {
					client.mu.Lock()
					if !client.closed {
						close(client.send)
						client.closed = true
					}
					client.mu.Unlock()
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToStage sends an event to every client watching the stage.
func (h *Hub) BroadcastToStage(stageID int64, event StageEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[stageID]
	if !ok {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal stage event", slog.Int64("stage_id", stageID), slog.Any("error", err))
		return
	}

	for client := range room {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- payload:
		default:
			// Slow consumer; drop the event rather than block the writer.
		}
		client.mu.Unlock()
	}
}

// ReadPump drains the connection until it closes; inbound messages are
// ignored, subscriptions are read-only.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush anything queued behind this event in the same frame batch.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
