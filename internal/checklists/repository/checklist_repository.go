package repository

import (
	"time"

	"github.com/architect/checklist-lab/internal/checklists/models"
	"github.com/architect/checklist-lab/internal/common/database"
	"github.com/architect/checklist-lab/internal/common/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChecklistRepository persists checklists and their items.
type ChecklistRepository interface {
	EnsureUser(userID string) error
	CreateChecklist(checklist *models.Checklist) error
	GetChecklists() ([]*models.Checklist, error)
	GetChecklist(id string) (*models.Checklist, error)
	GetItem(itemID string) (*models.ChecklistItem, error)
	UpdateItem(item *models.ChecklistItem) error
	GetItems(checklistID string) ([]*models.ChecklistItem, error)
	SetChecklistCompletion(id string, completed bool, completedAt *time.Time) error
}

type gormChecklistRepository struct {
	db *gorm.DB
}

func NewChecklistRepository(db *gorm.DB) ChecklistRepository {
	return &gormChecklistRepository{db: db}
}

func (r *gormChecklistRepository) EnsureUser(userID string) error {
	user := database.User{ID: userID, CreatedAt: time.Now()}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if result.Error != nil {
		return errors.Unavailable("failed to upsert user", result.Error.Error())
	}
	return nil
}

func (r *gormChecklistRepository) CreateChecklist(checklist *models.Checklist) error {
	if result := r.db.Create(checklist); result.Error != nil {
		return errors.Unavailable("failed to create checklist", result.Error.Error())
	}
	return nil
}

func (r *gormChecklistRepository) GetChecklists() ([]*models.Checklist, error) {
	var checklists []*models.Checklist
	result := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Order("created_at DESC").Find(&checklists)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to fetch checklists", result.Error.Error())
	}
	return checklists, nil
}

func (r *gormChecklistRepository) GetChecklist(id string) (*models.Checklist, error) {
	var checklist models.Checklist
	result := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&checklist, "id = ?", id)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.NotFound("checklist")
	}
	if result.Error != nil {
		return nil, errors.Unavailable("failed to fetch checklist", result.Error.Error())
	}
	return &checklist, nil
}

func (r *gormChecklistRepository) GetItem(itemID string) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	result := r.db.First(&item, "id = ?", itemID)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, errors.NotFound("checklist item")
	}
	if result.Error != nil {
		return nil, errors.Unavailable("failed to fetch item", result.Error.Error())
	}
	return &item, nil
}

func (r *gormChecklistRepository) UpdateItem(item *models.ChecklistItem) error {
	result := r.db.Model(&models.ChecklistItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"completed":    item.Completed,
			"completed_at": item.CompletedAt,
		})
	if result.Error != nil {
		return errors.Unavailable("failed to update item", result.Error.Error())
	}
	return nil
}

func (r *gormChecklistRepository) GetItems(checklistID string) ([]*models.ChecklistItem, error) {
	var items []*models.ChecklistItem
	result := r.db.Where("checklist_id = ?", checklistID).
		Order("position ASC").
		Find(&items)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to fetch items", result.Error.Error())
	}
	return items, nil
}

func (r *gormChecklistRepository) SetChecklistCompletion(id string, completed bool, completedAt *time.Time) error {
	result := r.db.Model(&models.Checklist{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"completed":    completed,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return errors.Unavailable("failed to update checklist", result.Error.Error())
	}
	return nil
}
