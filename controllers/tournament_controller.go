package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/khelarena/khelarena_backend/models"
	"github.com/khelarena/khelarena_backend/services"
	"github.com/khelarena/khelarena_backend/utils"
	ws "github.com/khelarena/khelarena_backend/websocket"
)

// TournamentController exposes the tournament listing, join and lobby endpoints
type TournamentController struct {
	DB          *mongo.Client
	tournaments *services.TournamentService
	hub         *ws.Hub
	logger      *log.Logger
}

// NewTournamentController creates a new tournament controller
func NewTournamentController(db *mongo.Client, tournaments *services.TournamentService, hub *ws.Hub) *TournamentController {
	return &TournamentController{
		DB:          db,
		tournaments: tournaments,
		hub:         hub,
		logger:      log.New(os.Stdout, "[TOURNAMENT] ", log.LstdFlags),
	}
}

// Create handles POST /api/tournaments/create (admin only)
func (tc *TournamentController) Create(c echo.Context) error {
	var req models.CreateTournamentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Game, maxPlayers and startTime are required",
		})
	}

	t, err := tc.tournaments.Create(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	tc.logger.Printf("tournament %s created: %s, entry %d, %d seats",
		t.ID.Hex(), t.Game, t.EntryFee, t.MaxPlayers)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":    true,
		"message":    "Tournament created",
		"tournament": t,
	})
}

// List handles GET /api/tournaments: upcoming tournaments, room details
// gated by start time.
func (tc *TournamentController) List(c echo.Context) error {
	views, err := tc.tournaments.ListUpcoming(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"tournaments": views,
	})
}

// Get handles GET /api/tournaments/:id
func (tc *TournamentController) Get(c echo.Context) error {
	view, err := tc.tournaments.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"tournament": view,
	})
}

// Joined handles GET /api/tournaments/joined/:phone: tournaments the
// player has entered that are still running or yet to start.
func (tc *TournamentController) Joined(c echo.Context) error {
	views, err := tc.tournaments.Joined(c.Request().Context(), c.Param("phone"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"tournaments": views,
	})
}

// Join handles POST /api/tournaments/join. On success the entry fee
// is already debited and the roster updated; the push notification and
// lobby broadcast run in the background and never fail the request.
func (tc *TournamentController) Join(c echo.Context) error {
	var req models.JoinTournamentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	tournamentID := c.Param("id")
	if tournamentID == "" {
		tournamentID = req.TournamentID
	}
	phone := req.Phone
	if phone == "" {
		phone, _ = c.Get("phone").(string)
	}
	if tournamentID == "" || phone == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Tournament ID and phone required",
		})
	}

	result, err := tc.tournaments.Join(c.Request().Context(), tournamentID, phone)
	if err != nil {
		return respondError(c, err)
	}

	go tc.notifyJoined(tournamentID, utils.NormalizePhone(phone), &result.Tournament)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Joined tournament",
		"tournament": result.Tournament,
		"balance":    result.Balance,
	})
}

// notifyJoined pushes a confirmation to the player and tells the lobby
// about the new roster entry. Both are best effort.
func (tc *TournamentController) notifyJoined(tournamentID, phone string, view *models.TournamentView) {
	title := "Tournament joined"
	body := fmt.Sprintf("You are in! %s starts at %s.", view.Game, view.StartTime.Format("03:04 PM, Jan 2"))
	if err := utils.SendFCMNotificationToPlayer(tc.DB, phone, title, body, map[string]string{
		"tournamentId": tournamentID,
		"type":         "tournament_joined",
	}); err != nil {
		tc.logger.Printf("push notification skipped for %s: %v", phone, err)
	}

	tc.hub.BroadcastToLobby(tournamentID, ws.Event{
		Type:         ws.EventPlayerJoined,
		TournamentID: tournamentID,
		Message:      fmt.Sprintf("Player joined (%d/%d)", len(view.Players), view.MaxPlayers),
		Data: map[string]interface{}{
			"players":    len(view.Players),
			"maxPlayers": view.MaxPlayers,
		},
	})
}

// WatchRoomUnlocks polls upcoming tournaments and announces to each lobby
// once its room-details window opens. Runs until ctx is done; each
// tournament is announced once.
func (tc *TournamentController) WatchRoomUnlocks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	announced := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			views, err := tc.tournaments.ListUpcoming(ctx)
			if err != nil {
				tc.logger.Printf("room-unlock sweep failed: %v", err)
				continue
			}
			for _, v := range views {
				id := v.ID.Hex()
				// RoomID is only populated once the window is open
				if v.RoomID == "" || announced[id] {
					continue
				}
				announced[id] = true
				tc.hub.BroadcastToLobby(id, ws.Event{
					Type:         ws.EventRoomUnlocked,
					TournamentID: id,
					Message:      "Room details are now available",
				})
			}
			// Started tournaments leave ListUpcoming; drop their entries
			current := make(map[string]bool, len(views))
			for _, v := range views {
				current[v.ID.Hex()] = true
			}
			for id := range announced {
				if !current[id] {
					delete(announced, id)
				}
			}
		}
	}
}

// Lobby handles GET /api/tournaments/:id/lobby: upgrades to a websocket and
// subscribes the caller to roster events for that tournament.
func (tc *TournamentController) Lobby(c echo.Context) error {
	tournamentID := c.Param("id")
	phone := c.QueryParam("phone")
	if tournamentID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Tournament ID required",
		})
	}
	return ws.HandleLobby(c, tc.hub, tournamentID, utils.NormalizePhone(phone))
}
