package domain

import (
	"time"
)

// User represents an anonymous per-device identity. Agents and saved
// schedules are scoped to their owning user.
type User struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}
