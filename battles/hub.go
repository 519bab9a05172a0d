package battles

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to clients watching a tournament's battle queue.
const (
	EventBattleStarted = "BATTLE_STARTED"
	EventResultEncoded = "RESULT_ENCODED"
	EventPhaseAdvanced = "PHASE_ADVANCED"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one websocket subscriber, pinned to a single tournament room.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

func NewClient(hub *Hub, conn *websocket.Conn, tournamentID int) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 16),
		room: strconv.Itoa(tournamentID),
	}
}

// Hub fans events out to per-tournament rooms. All room state is owned by
// the Run goroutine; Register/Unregister are the only mutation paths.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()
			h.logger.Debug("ws client joined", slog.String("room", client.room))

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if clients[client] {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("ws client left", slog.String("room", client.room))
		}
	}
}

// BroadcastToTournament sends the event to every client watching the
// tournament. Clients with a full send buffer are skipped, not blocked on.
func (h *Hub) BroadcastToTournament(tournamentID int, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("ws marshal failed", slog.Any("error", err))
		return
	}

	room := strconv.Itoa(tournamentID)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("ws client send buffer full, dropping event", slog.String("room", room))
		}
	}
}

// Register attaches the client to its room and starts both pumps.
func (c *Client) Register() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// Inbound messages are ignored; the socket is push-only.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
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
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
