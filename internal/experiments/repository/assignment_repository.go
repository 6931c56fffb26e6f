package repository

import (
	"github.com/architect/checklist-lab/internal/common/errors"
	"github.com/architect/checklist-lab/internal/experiments/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentRepository persists experiment variant assignments.
type AssignmentRepository interface {
	GetAssignment(experimentID, userID string) (*models.ExperimentAssignment, error)
	// InsertAssignment writes the assignment unless one already exists, then
	// returns whichever row won. Safe under concurrent first lookups.
	InsertAssignment(assignment *models.ExperimentAssignment) (*models.ExperimentAssignment, error)
	CountByVariant(experimentID string) (map[string]int64, error)
	GetUserIDsByVariant(experimentID, variant string) ([]string, error)
}

type gormAssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &gormAssignmentRepository{db: db}
}

func (r *gormAssignmentRepository) GetAssignment(experimentID, userID string) (*models.ExperimentAssignment, error) {
	var assignment models.ExperimentAssignment
	result := r.db.Where("experiment_id = ? AND user_id = ?", experimentID, userID).
		First(&assignment)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, errors.Unavailable("failed to read assignment", result.Error.Error())
	}
	return &assignment, nil
}

func (r *gormAssignmentRepository) InsertAssignment(assignment *models.ExperimentAssignment) (*models.ExperimentAssignment, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(assignment)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to store assignment", result.Error.Error())
	}

	// Re-read so concurrent losers observe the winning row.
	stored, err := r.GetAssignment(assignment.ExperimentID, assignment.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errors.Internal("assignment vanished after insert", "")
	}
	return stored, nil
}

func (r *gormAssignmentRepository) CountByVariant(experimentID string) (map[string]int64, error) {
	type row struct {
		Variant string
		Count   int64
	}
	var rows []row
	result := r.db.Model(&models.ExperimentAssignment{}).
		Select("variant, count(*) as count").
		Where("experiment_id = ?", experimentID).
		Group("variant").
		Scan(&rows)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to count assignments", result.Error.Error())
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Variant] = r.Count
	}
	return counts, nil
}

func (r *gormAssignmentRepository) GetUserIDsByVariant(experimentID, variant string) ([]string, error) {
	var userIDs []string
	result := r.db.Model(&models.ExperimentAssignment{}).
		Where("experiment_id = ? AND variant = ?", experimentID, variant).
		Pluck("user_id", &userIDs)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to fetch assignment users", result.Error.Error())
	}
	return userIDs, nil
}
