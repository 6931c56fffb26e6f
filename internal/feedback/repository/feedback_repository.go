package repository

import (
	"time"

	"github.com/architect/checklist-lab/internal/common/database"
	"github.com/architect/checklist-lab/internal/common/errors"
	"github.com/architect/checklist-lab/internal/feedback/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedbackRepository persists feedback submissions.
type FeedbackRepository interface {
	EnsureUser(userID string) error
	CreateFeedback(feedback *models.Feedback) error
	GetFeedback() ([]*models.Feedback, error)
}

type gormFeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &gormFeedbackRepository{db: db}
}

func (r *gormFeedbackRepository) EnsureUser(userID string) error {
	user := database.User{ID: userID, CreatedAt: time.Now()}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if result.Error != nil {
		return errors.Unavailable("failed to upsert user", result.Error.Error())
	}
	return nil
}

func (r *gormFeedbackRepository) CreateFeedback(feedback *models.Feedback) error {
	if result := r.db.Create(feedback); result.Error != nil {
		return errors.Unavailable("failed to store feedback", result.Error.Error())
	}
	return nil
}

func (r *gormFeedbackRepository) GetFeedback() ([]*models.Feedback, error) {
	var feedback []*models.Feedback
	result := r.db.Order("created_at DESC").Find(&feedback)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to fetch feedback", result.Error.Error())
	}
	return feedback, nil
}
