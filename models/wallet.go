package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wallet holds a per-phone balance in paisa. Balance is never negative;
// credit and debit go through the wallet repository only.
type Wallet struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Phone     string             `json:"phone" bson:"phone"`
	Balance   int64              `json:"balance" bson:"balance"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CreateOrderRequest asks for a Razorpay top-up order, amount in rupees
type CreateOrderRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// AddMoneyRequest credits a wallet after a successful payment
type AddMoneyRequest struct {
	Phone  string `json:"phone"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

// AddPrizeRequest credits prize money to a winner's wallet
type AddPrizeRequest struct {
	Phone string `json:"phone"`
	Prize int64  `json:"prize" validate:"required,gt=0"`
}

// RazorpayOrder is the subset of the Razorpay order object we return to clients
type RazorpayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}
