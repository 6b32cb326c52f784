// Package ws streams engine events (floating tap values, state snapshots) to
// the presentation layer over websockets. The engine never blocks on it:
// slow clients get dropped, not waited for.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"cointap/internal/logger"
)

// Event is the envelope pushed to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The JWT on the request already authenticates the player.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and pumps events for one player connection
// until the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, playerID int64) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := newClient(conn, playerID)
	h.register(client)
	logger.Debug("ws client connected", "player_id", playerID)

	go client.writePump(func() { h.unregister(client) })
	go client.readPump(func() { h.unregister(client) })
	return nil
}

// Broadcast sends an event to all of a player's live connections. Full send
// buffers drop the event for that connection.
func (h *Hub) Broadcast(playerID int64, typ string, data any) {
	h.mu.RLock()
	conns := h.clients[playerID]
	if len(conns) == 0 {
		h.mu.RUnlock()
		return
	}

	payload, err := json.Marshal(Event{Type: typ, Data: data})
	if err != nil {
		h.mu.RUnlock()
		return
	}

	for c := range conns {
		select {
		case c.send <- payload:
		default:
			// slow consumer; skip this event
		}
	}
	h.mu.RUnlock()
}

// Close tears down every connection. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for c := range conns {
			c.close()
		}
	}
	h.clients = make(map[int64]map[*Client]struct{})
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.playerID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.playerID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.playerID]
	if !ok {
		return
	}
	if _, present := set[c]; !present {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.playerID)
	}
	c.close()
}
