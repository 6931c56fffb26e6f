package database

import (
	"time"
)

// User represents a tracked app user. IDs are caller-supplied strings
// (anonymous device identifiers), created lazily the first time a user
// shows up in an event or checklist.
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	HasConsented bool      `gorm:"default:false" json:"has_consented"`
}
