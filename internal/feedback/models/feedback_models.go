package models

import (
	"time"
)

// Feedback types
const (
	TypeGeneral        = "GENERAL"
	TypeBugReport      = "BUG_REPORT"
	TypeFeatureRequest = "FEATURE_REQUEST"
	TypeNPS            = "NPS"
	TypeMicroSurvey    = "MICRO_SURVEY"
)

// NPS categories derived from the rating.
const (
	CategoryPromoter  = "promoter"
	CategoryPassive   = "passive"
	CategoryDetractor = "detractor"
)

// Feedback is an immutable user submission. NPS entries carry a 0-10
// rating; the rest carry prose the theme extractor mines.
type Feedback struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Type          string    `gorm:"not null;index" json:"type"`
	Content       string    `gorm:"not null" json:"content"`
	Rating        *int      `json:"rating,omitempty"`
	Category      string    `json:"category,omitempty"`
	Sentiment     string    `json:"sentiment,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
	URL           string    `json:"url,omitempty"`
	ConsoleErrors string    `json:"console_errors,omitempty"`
	UserID        string    `gorm:"not null;index" json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateFeedbackRequest is the submission payload
type CreateFeedbackRequest struct {
	Type          string `json:"type" binding:"required,oneof=GENERAL BUG_REPORT FEATURE_REQUEST NPS MICRO_SURVEY"`
	Content       string `json:"content" binding:"required"`
	Rating        *int   `json:"rating"`
	Sentiment     string `json:"sentiment"`
	UserAgent     string `json:"user_agent"`
	URL           string `json:"url"`
	ConsoleErrors string `json:"console_errors"`
}
