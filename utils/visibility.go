// utils/visibility.go
package utils

import "time"

const (
	// RoomDetailsWindow is how long before start the room credentials unlock.
	RoomDetailsWindow = 30 * time.Minute
	// ActivePlayerWindow is how long after start a joined tournament stays listed.
	ActivePlayerWindow = 15 * time.Minute
)

// ShowRoomDetails reports whether roomId/password may be exposed for a
// tournament starting at startTime. True once the start is 30 minutes or
// less away, including any time after the start.
func ShowRoomDetails(startTime, now time.Time) bool {
	return startTime.Sub(now) <= RoomDetailsWindow
}

// IsActiveForPlayer reports whether a joined tournament still counts as
// active for its players: up to 15 minutes past startTime.
func IsActiveForPlayer(startTime, now time.Time) bool {
	return now.Sub(startTime) <= ActivePlayerWindow
}
