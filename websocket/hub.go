package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Lobby event types
const (
	EventPlayerJoined = "player_joined"
	EventRoomUnlocked = "room_unlocked"
)

// Event is a message sent to a tournament lobby
type Event struct {
	Type         string      `json:"type"`
	TournamentID string      `json:"tournamentId"`
	Message      string      `json:"message,omitempty"`
	Data         interface{} `json:"data,omitempty"`
}

// Client is a connection subscribed to one tournament lobby. All writes
// go through send; gorilla connections allow only one writer at a time.
type Client struct {
	TournamentID string
	Phone        string
	Conn         *websocket.Conn

	writeMu sync.Mutex
}

// send serializes writes to the underlying connection
func (c *Client) send(event Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(event)
}

// Hub maintains the set of lobby connections per tournament and
// broadcasts roster events to them.
type Hub struct {
	lobbies    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		lobbies:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			lobby, ok := h.lobbies[client.TournamentID]
			if !ok {
				lobby = make(map[*Client]bool)
				h.lobbies[client.TournamentID] = lobby
			}
			lobby[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if lobby, ok := h.lobbies[client.TournamentID]; ok {
				if _, ok := lobby[client]; ok {
					delete(lobby, client)
					client.Conn.Close()
				}
				if len(lobby) == 0 {
					delete(h.lobbies, client.TournamentID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register subscribes a client to its tournament lobby
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and closes its connection
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToLobby sends an event to everyone in a tournament lobby.
// Write failures drop the client; the read loop will observe the close.
func (h *Hub) BroadcastToLobby(tournamentID string, event Event) {
	h.mu.RLock()
	clients := make([]*Client, 0)
	for client := range h.lobbies[tournamentID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(event); err != nil {
			client.Conn.Close()
		}
	}
}
