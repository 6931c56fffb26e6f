package models

import (
	"time"
)

// Checklist is the core user-facing object and the source of the
// activation funnel events.
type Checklist struct {
	ID          string          `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Completed   bool            `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	UserID      string          `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []ChecklistItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// ChecklistItem is one entry in a checklist, kept in creation order.
type ChecklistItem struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	ChecklistID string     `gorm:"not null;index" json:"checklist_id"`
	Text        string     `gorm:"not null" json:"text"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Position    int        `gorm:"not null" json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateChecklistRequest is the creation payload
type CreateChecklistRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Items       []string `json:"items" binding:"required,min=1"`
}

// ShareChecklistRequest names how the checklist was shared
type ShareChecklistRequest struct {
	Method string `json:"method" binding:"required"`
}
