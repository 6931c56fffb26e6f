package repository

import (
	"time"

	"github.com/architect/checklist-lab/internal/common/database"
	"github.com/architect/checklist-lab/internal/common/errors"
	trackingmodels "github.com/architect/checklist-lab/internal/tracking/models"
	"gorm.io/gorm"
)

// DayCount is a per-calendar-day distinct user count.
type DayCount struct {
	Day   string
	Users int64
}

// UserDay marks that a user had at least one event on a calendar day.
type UserDay struct {
	UserID string
	Day    string
}

// FeedbackRow is the slice of a feedback record the engine needs.
type FeedbackRow struct {
	Content   string
	Sentiment string
	Type      string
	Rating    *int
}

// AnalyticsRepository provides the read-only aggregate queries behind the
// metric stages. All queries pull from the live tables; there is no cache.
type AnalyticsRepository interface {
	DistinctUsersByDay(start, end time.Time) ([]DayCount, error)
	DistinctUsersForEvent(name string, start, end time.Time) (int64, error)
	UserActivityDays(start, end time.Time) ([]UserDay, error)
	CountEventForUsers(name string, userIDs []string) (int64, error)
	CountUsers() (int64, error)
	GetFeedback() ([]FeedbackRow, error)
}

type gormAnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &gormAnalyticsRepository{db: db}
}

func (r *gormAnalyticsRepository) DistinctUsersByDay(start, end time.Time) ([]DayCount, error) {
	var rows []DayCount
	result := r.db.Model(&trackingmodels.Event{}).
		Select("date(timestamp) as day, count(distinct user_id) as users").
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Group("date(timestamp)").
		Scan(&rows)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to aggregate daily users", result.Error.Error())
	}
	return rows, nil
}

func (r *gormAnalyticsRepository) DistinctUsersForEvent(name string, start, end time.Time) (int64, error) {
	var count int64
	result := r.db.Model(&trackingmodels.Event{}).
		Where("name = ? AND timestamp >= ? AND timestamp <= ?", name, start, end).
		Distinct("user_id").
		Count(&count)
	if result.Error != nil {
		return 0, errors.Unavailable("failed to count event users", result.Error.Error())
	}
	return count, nil
}

func (r *gormAnalyticsRepository) UserActivityDays(start, end time.Time) ([]UserDay, error) {
	var rows []UserDay
	result := r.db.Model(&trackingmodels.Event{}).
		Select("user_id, date(timestamp) as day").
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Group("user_id, date(timestamp)").
		Scan(&rows)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to fetch activity days", result.Error.Error())
	}
	return rows, nil
}

func (r *gormAnalyticsRepository) CountEventForUsers(name string, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var count int64
	result := r.db.Model(&trackingmodels.Event{}).
		Where("name = ? AND user_id IN ?", name, userIDs).
		Count(&count)
	if result.Error != nil {
		return 0, errors.Unavailable("failed to count conversions", result.Error.Error())
	}
	return count, nil
}

func (r *gormAnalyticsRepository) CountUsers() (int64, error) {
	var count int64
	result := r.db.Model(&database.User{}).Count(&count)
	if result.Error != nil {
		return 0, errors.Unavailable("failed to count users", result.Error.Error())
	}
	return count, nil
}

func (r *gormAnalyticsRepository) GetFeedback() ([]FeedbackRow, error) {
	var rows []FeedbackRow
	result := r.db.Table("feedbacks").
		Select("content, sentiment, type, rating").
		Scan(&rows)
	if result.Error != nil {
		return nil, errors.Unavailable("failed to fetch feedback", result.Error.Error())
	}
	return rows, nil
}
