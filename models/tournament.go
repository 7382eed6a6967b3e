package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tournament model. RoomID and Password are sensitive: they are only
// serialized through TournamentView, which the controllers build after
// consulting the visibility gate.
type Tournament struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Game       string             `json:"game" bson:"game"`
	EntryFee   int64              `json:"entryFee" bson:"entryFee"`
	MaxPlayers int                `json:"maxPlayers" bson:"maxPlayers"`
	Players    []string           `json:"players" bson:"players"`
	StartTime  time.Time          `json:"startTime" bson:"startTime"`
	RoomID     string             `json:"roomId,omitempty" bson:"roomId,omitempty"`
	Password   string             `json:"password,omitempty" bson:"password,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// TournamentView is the client-facing shape of a tournament. Room
// details are populated only once the start window opens.
type TournamentView struct {
	ID         primitive.ObjectID `json:"id"`
	Game       string             `json:"game"`
	EntryFee   int64              `json:"entryFee"`
	MaxPlayers int                `json:"maxPlayers"`
	Players    []string           `json:"players"`
	StartTime  time.Time          `json:"startTime"`
	RoomID     string             `json:"roomId,omitempty"`
	Password   string             `json:"password,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// CreateTournamentRequest is the admin payload for creating a tournament
type CreateTournamentRequest struct {
	Game       string    `json:"game" validate:"required"`
	EntryFee   int64     `json:"entryFee" validate:"gte=0"`
	MaxPlayers int       `json:"maxPlayers" validate:"required,gt=0"`
	StartTime  time.Time `json:"startTime" validate:"required"`
	RoomID     string    `json:"roomId"`
	Password   string    `json:"password"`
}

// JoinTournamentRequest is the payload for joining a tournament
type JoinTournamentRequest struct {
	TournamentID string `json:"tournamentId"`
	Phone        string `json:"phone"`
}

// JoinTournamentResult is returned after a successful join. The
// tournament is the gated view: room credentials stay hidden until the
// start window opens even for the player who just paid.
type JoinTournamentResult struct {
	Tournament TournamentView `json:"tournament"`
	Balance    int64          `json:"balance"`
}
