package repositories

import "errors"

var (
	// ErrNotFound is returned when no document matches the lookup key
	ErrNotFound = errors.New("document not found")
	// ErrInsufficientBalance is returned when a conditional debit matches
	// no wallet, i.e. the wallet is absent or holds less than the amount
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrRosterConflict is returned when a conditional roster append
	// matches nothing: the player is already in, or the roster is full
	ErrRosterConflict = errors.New("roster conflict")
)
