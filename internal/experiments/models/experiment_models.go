package models

import (
	"time"
)

// Variants an experiment can assign.
const (
	VariantControl   = "control"
	VariantTreatment = "treatment"
)

// ExperimentAssignment pins a user to a variant. The unique index makes the
// first write win; later lookups always read the stored row.
type ExperimentAssignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ExperimentID string    `gorm:"not null;uniqueIndex:idx_experiment_user" json:"experiment_id"`
	UserID       string    `gorm:"not null;uniqueIndex:idx_experiment_user" json:"user_id"`
	Variant      string    `gorm:"not null" json:"variant"`
	CreatedAt    time.Time `json:"created_at"`
}

// VariantResponse is the lookup payload
type VariantResponse struct {
	ExperimentID string `json:"experiment_id"`
	UserID       string `json:"user_id"`
	Variant      string `json:"variant"`
}
