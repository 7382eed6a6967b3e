package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/khelarena/khelarena_backend/controllers"
	"github.com/khelarena/khelarena_backend/middleware"
)

// RegisterTournamentRoutes sets up the tournament routes. Listings are
// public; joins need a player token; creation needs an admin token.
func RegisterTournamentRoutes(e *echo.Echo, tournamentController *controllers.TournamentController) {
	e.GET("/api/tournaments", tournamentController.List)
	e.GET("/api/tournaments/:id", tournamentController.Get)

	protected := e.Group("/api/tournaments")
	protected.Use(middleware.JWTMiddleware())
	protected.GET("/joined/:phone", tournamentController.Joined)
	protected.POST("/join", tournamentController.Join)
	protected.POST("/create", tournamentController.Create, middleware.RequireAdmin())

	// Lobby websocket; browsers cannot set headers on upgrades, so the
	// endpoint is public and identifies the caller by query param
	e.GET("/api/tournaments/:id/lobby", tournamentController.Lobby)
}
