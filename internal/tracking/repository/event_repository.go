package repository

import (
	"time"

	"github.com/architect/checklist-lab/internal/common/database"
	"github.com/architect/checklist-lab/internal/common/errors"
	"github.com/architect/checklist-lab/internal/tracking/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository stores events and the users they belong to.
type EventRepository interface {
	CreateEvent(event *models.Event) error
	EnsureUser(userID string) error
	CountEvents() (int64, error)
	GetEventsSince(since time.Time) ([]*models.Event, error)
}

type gormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a GORM-backed event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &gormEventRepository{db: db}
}

func (r *gormEventRepository) CreateEvent(event *models.Event) error {
	if result := r.db.Create(event); result.Error != nil {
		return errors.Unavailable("failed to store event", result.Error.Error())
	}
	return nil
}

// EnsureUser lazily creates the user row on first contact.
func (r *gormEventRepository) EnsureUser(userID string) error {
	user := database.User{ID: userID, CreatedAt: time.Now()}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if result.Error != nil {
		return errors.Unavailable("failed to upsert user", result.Error.Error())
	}
	return nil
}

func (r *gormEventRepository) CountEvents() (int64, error) {
	var total int64
	if result := r.db.Model(&models.Event{}).Count(&total); result.Error != nil {
		return 0, errors.Unavailable("failed to count events", result.Error.Error())
	}
	return total, nil
}

func (r *gormEventRepository) GetEventsSince(since time.Time) ([]*models.Event, error) {
	var events []*models.Event
	result := r.db.Where("timestamp >= ?", since).
		Order("timestamp ASC").
		Find(&events)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to fetch events", result.Error.Error())
	}
	return events, nil
}
