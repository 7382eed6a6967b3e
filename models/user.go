// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Phone          string             `json:"phone" bson:"phone"`
	Name           string             `json:"name,omitempty" bson:"name,omitempty"`
	Age            int                `json:"age,omitempty" bson:"age,omitempty"`
	TermsAccepted  bool               `json:"termsAccepted" bson:"termsAccepted"`
	IsVerified     bool               `json:"isVerified" bson:"isVerified"`
	VerifiedAt     *time.Time         `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
	IsOptedIn      bool               `json:"isOptedIn" bson:"isOptedIn"`
	LastOtpRequest *time.Time         `json:"lastOtpRequest,omitempty" bson:"lastOtpRequest,omitempty"`
	FCMToken       string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Admin model for the operations account that creates tournaments and pays out prizes
type Admin struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"password,omitempty" bson:"password"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Response is the standard API response envelope
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// LoginRequest is the phone-only login payload
type LoginRequest struct {
	Phone string `json:"phone"`
}

// UpdateProfileRequest carries the post-signup profile fields
type UpdateProfileRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Age   int    `json:"age"`
}

// AcceptTermsRequest marks the terms checkbox
type AcceptTermsRequest struct {
	Phone    string `json:"phone"`
	Accepted bool   `json:"accepted"`
}

// AdminLoginRequest is the credentials payload for the admin account
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
