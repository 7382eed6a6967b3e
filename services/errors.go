// services/errors.go
package services

import "net/http"

// Stable error codes reported to clients. Controllers map AppError to an
// HTTP response; none of these is fatal to the process.
const (
	CodeMissingPhone        = "MISSING_PHONE"
	CodeInvalidPhone        = "INVALID_PHONE"
	CodeConsentRequired     = "CONSENT_REQUIRED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeOTPSendFailed       = "OTP_SEND_FAILED"
	CodeOTPNotFound         = "OTP_NOT_FOUND"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeMaxAttemptsExceeded = "MAX_ATTEMPTS_EXCEEDED"
	CodeInvalidOTP          = "INVALID_OTP"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeTournamentNotFound  = "TOURNAMENT_NOT_FOUND"
	CodeAlreadyJoined       = "ALREADY_JOINED"
	CodeTournamentFull      = "TOURNAMENT_FULL"
	CodeWalletNotFound      = "WALLET_NOT_FOUND"
)

// AppError is a client-reportable failure with a stable code
type AppError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Status       int    `json:"-"`
	AttemptsLeft *int   `json:"attemptsLeft,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func newAppError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// ErrInvalidPhone reports a phone that fails canonical-format validation
func ErrInvalidPhone() *AppError {
	return newAppError(http.StatusBadRequest, CodeInvalidPhone, "Invalid Indian phone number format")
}

// ErrRateLimited reports too many OTP requests inside the rate window
func ErrRateLimited() *AppError {
	return newAppError(http.StatusTooManyRequests, CodeRateLimited, "Too many OTP requests. Try again in 1 hour.")
}

// ErrDispatchFailed wraps a messaging-provider failure. The OTP record
// stays live: the caller can still verify a code obtained out-of-band.
func ErrDispatchFailed(cause error) *AppError {
	return newAppError(http.StatusInternalServerError, CodeOTPSendFailed, "Failed to send OTP: "+cause.Error())
}

// ErrOTPNotFound reports a verify with no live record for the phone
func ErrOTPNotFound() *AppError {
	return newAppError(http.StatusBadRequest, CodeOTPNotFound, "OTP not found or expired")
}

// ErrOTPExpired reports a verify after the record's expiry
func ErrOTPExpired() *AppError {
	return newAppError(http.StatusBadRequest, CodeOTPExpired, "OTP has expired")
}

// ErrMaxAttempts reports a verify after the attempt budget is spent
func ErrMaxAttempts() *AppError {
	return newAppError(http.StatusBadRequest, CodeMaxAttemptsExceeded, "Too many invalid attempts")
}

// ErrInvalidOTP reports a code mismatch, with the attempts remaining
func ErrInvalidOTP(attemptsLeft int) *AppError {
	e := newAppError(http.StatusBadRequest, CodeInvalidOTP, "Invalid OTP")
	e.AttemptsLeft = &attemptsLeft
	return e
}

// ErrInsufficientBalance reports a debit larger than the wallet holds
func ErrInsufficientBalance() *AppError {
	return newAppError(http.StatusBadRequest, CodeInsufficientBalance, "Insufficient wallet balance")
}

// ErrTournamentNotFound reports an unknown tournament id
func ErrTournamentNotFound() *AppError {
	return newAppError(http.StatusNotFound, CodeTournamentNotFound, "Tournament not found")
}

// ErrAlreadyJoined reports a join for a phone already in the roster
func ErrAlreadyJoined() *AppError {
	return newAppError(http.StatusBadRequest, CodeAlreadyJoined, "Player already joined")
}

// ErrTournamentFull reports a join against a full roster
func ErrTournamentFull() *AppError {
	return newAppError(http.StatusBadRequest, CodeTournamentFull, "Tournament full")
}

// ErrWalletNotFound reports a prize credit against a missing wallet
func ErrWalletNotFound() *AppError {
	return newAppError(http.StatusNotFound, CodeWalletNotFound, "Wallet not found")
}
