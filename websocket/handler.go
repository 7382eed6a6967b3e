package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleLobby upgrades the connection and subscribes it to the
// tournament's lobby until the peer disconnects.
func HandleLobby(c echo.Context, hub *Hub, tournamentID, phone string) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		TournamentID: tournamentID,
		Phone:        phone,
		Conn:         conn,
	}

	hub.Register(client)

	client.send(Event{
		Type:         "connected",
		TournamentID: tournamentID,
		Message:      "Lobby connection established",
	})

	// Drain reads until the peer goes away; the lobby is broadcast-only.
	go func() {
		defer hub.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	return nil
}
