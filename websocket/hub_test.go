package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConnPair upgrades a real connection through httptest and returns
// both ends: the server side (what the hub writes to) and the client side
// (what a lobby member reads from).
func newConnPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-connCh
	t.Cleanup(func() { serverConn.Close() })
	return serverConn, clientConn
}

// Broadcasts fire from one goroutine per join plus the room-unlock
// watcher, and the handler's welcome write can land in between. All of
// them must serialize on the client's write mutex; gorilla connections
// panic on concurrent writers.
func TestBroadcastToLobbySerializesConcurrentWriters(t *testing.T) {
	serverConn, clientConn := newConnPair(t)

	hub := NewHub()
	client := &Client{TournamentID: "t1", Phone: "9876543210", Conn: serverConn}
	hub.mu.Lock()
	hub.lobbies["t1"] = map[*Client]bool{client: true}
	hub.mu.Unlock()

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				hub.BroadcastToLobby("t1", Event{Type: EventPlayerJoined, TournamentID: "t1"})
			}
		}()
	}

	// The welcome write races the broadcasts, as it does in HandleLobby
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, client.send(Event{Type: "connected", TournamentID: "t1"}))
	}()

	total := writers*perWriter + 1
	for received := 0; received < total; received++ {
		var ev Event
		require.NoError(t, clientConn.ReadJSON(&ev))
		assert.Equal(t, "t1", ev.TournamentID)
	}
	wg.Wait()
}

func TestBroadcastToLobbyUnknownLobbyIsNoop(t *testing.T) {
	hub := NewHub()
	// No clients registered; must not block or panic
	hub.BroadcastToLobby("missing", Event{Type: EventRoomUnlocked, TournamentID: "missing"})
}
