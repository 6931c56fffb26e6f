package models

import (
	"time"
)

// Event is one behavioral event in the append-only local store. Properties
// holds the marshaled JSON payload exactly as ingested.
type Event struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null;index" json:"name"`
	Properties string    `gorm:"not null" json:"properties"`
	SessionID  string    `gorm:"not null" json:"session_id"`
	UserID     string    `gorm:"not null;index" json:"user_id"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
}

// Event names understood by the registry.
const (
	EventAppOpen           = "app_open"
	EventPageView          = "page_view"
	EventSignup            = "signup"
	EventLogin             = "login"
	EventChecklistCreate   = "checklist_create"
	EventChecklistComplete = "checklist_complete"
	EventChecklistShare    = "checklist_share"
	EventCTAClick          = "cta_click"
	EventError             = "error"
	EventFeedbackOpened    = "feedback_opened"
	EventFeedbackSubmitted = "feedback_submitted"
	EventNPSShown          = "nps_shown"
	EventNPSScored         = "nps_scored"
)

// requiredProperties maps each known event name to the property keys that
// must be present in its payload. Optional keys are not listed.
var requiredProperties = map[string][]string{
	EventAppOpen:           {"user_agent", "timestamp"},
	EventPageView:          {"page", "title", "url"},
	EventSignup:            {"method", "user_id"},
	EventLogin:             {"method", "user_id"},
	EventChecklistCreate:   {"checklist_id", "title", "items_count"},
	EventChecklistComplete: {"checklist_id", "title", "items_count", "completion_time_ms"},
	EventChecklistShare:    {"checklist_id", "share_method"},
	EventCTAClick:          {"cta_text", "cta_location"},
	EventError:             {"error_type", "error_message", "page"},
	EventFeedbackOpened:    {"feedback_type", "trigger"},
	EventFeedbackSubmitted: {"feedback_type", "content_length"},
	EventNPSShown:          {"trigger"},
	EventNPSScored:         {"score", "category", "followup_comment"},
}

// KnownEvent reports whether name is in the registry.
func KnownEvent(name string) bool {
	_, ok := requiredProperties[name]
	return ok
}

// RequiredProperties returns the required property keys for a known event.
func RequiredProperties(name string) []string {
	return requiredProperties[name]
}

// EventNames returns every registered event name.
func EventNames() []string {
	names := make([]string, 0, len(requiredProperties))
	for name := range requiredProperties {
		names = append(names, name)
	}
	return names
}

// TrackEventRequest is the ingest payload
type TrackEventRequest struct {
	Name       string                 `json:"name" binding:"required"`
	Properties map[string]interface{} `json:"properties" binding:"required"`
	SessionID  string                 `json:"session_id" binding:"required"`
	UserID     string                 `json:"user_id"`
	Timestamp  *time.Time             `json:"timestamp"`
}
