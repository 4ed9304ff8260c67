package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client represents a connected WebSocket client watching one table.
// Control clients may shoot and reset; spectators only receive frames.
type Client struct {
	conn       *websocket.Conn
	tableToken string
	control    bool
	send       chan []byte
}

// Hub maintains the set of active clients grouped by table.
type Hub struct {
	tables     map[string]map[*Client]bool // table token -> clients
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		tables:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister events. Started once at init.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, exists := h.tables[client.tableToken]; !exists {
				h.tables[client.tableToken] = make(map[*Client]bool)
			}
			h.tables[client.tableToken][client] = true
			h.mu.Unlock()
			log.Printf("[WS] client joined table %s (control=%v)", client.tableToken, client.control)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, exists := h.tables[client.tableToken]; exists {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.tables, client.tableToken)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] client left table %s", client.tableToken)
		}
	}
}

// BroadcastToTable sends a message to every client watching a table.
// Implements the session manager's Broadcaster.
func (h *Hub) BroadcastToTable(token string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, exists := h.tables[token]; exists {
		for client := range room {
			select {
			case client.send <- data:
			default:
				// Client's buffer is full; drop the frame rather than
				// stall the tick loop.
				log.Printf("[WS] send buffer full for table %s, dropping message", token)
			}
		}
	}
}

// WSMessage is the wire envelope for client events.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed — client is being cleaned up.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for table %s: %v", c.tableToken, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for table %s: %v", c.tableToken, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client.
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendJSON(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
