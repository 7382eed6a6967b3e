package models

import (
	"time"
)

// OtpRecord is the ephemeral per-phone OTP state. It lives only in the
// in-memory OTP store, never in Mongo, and there is at most one live
// record per phone.
type OtpRecord struct {
	Phone     string
	Code      string
	ExpiresAt time.Time
	Attempts  int
	CreatedAt time.Time
}

// SendOTPRequest is the request body for OTP issuance
type SendOTPRequest struct {
	Phone        string `json:"phone"`
	ConsentGiven bool   `json:"consentGiven"`
}

// VerifyOTPRequest is the request body for OTP verification
type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// OptInRequest is the request body for explicit WhatsApp opt-in registration
type OptInRequest struct {
	Phone string `json:"phone"`
}
