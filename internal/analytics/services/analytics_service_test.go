package services

import (
	"errors"
	"testing"
	"time"

	"github.com/architect/checklist-lab/internal/analytics/repository"
	experimentmodels "github.com/architect/checklist-lab/internal/experiments/models"
	"github.com/stretchr/testify/assert"
)

type mockAnalyticsRepository struct {
	dayCounts    []repository.DayCount
	eventUsers   map[string]int64
	activityDays []repository.UserDay
	eventCounts  map[string]int64
	totalUsers   int64
	feedback     []repository.FeedbackRow

	failDAU      bool
	failFeedback bool
}

func (m *mockAnalyticsRepository) DistinctUsersByDay(start, end time.Time) ([]repository.DayCount, error) {
	if m.failDAU {
		return nil, errors.New("store down")
	}
	return m.dayCounts, nil
}

func (m *mockAnalyticsRepository) DistinctUsersForEvent(name string, start, end time.Time) (int64, error) {
	return m.eventUsers[name], nil
}

func (m *mockAnalyticsRepository) UserActivityDays(start, end time.Time) ([]repository.UserDay, error) {
	return m.activityDays, nil
}

func (m *mockAnalyticsRepository) CountEventForUsers(name string, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	return m.eventCounts[name], nil
}

func (m *mockAnalyticsRepository) CountUsers() (int64, error) {
	return m.totalUsers, nil
}

func (m *mockAnalyticsRepository) GetFeedback() ([]repository.FeedbackRow, error) {
	if m.failFeedback {
		return nil, errors.New("store down")
	}
	return m.feedback, nil
}

type mockVariantCounts struct {
	counts  map[string]int64
	byUser  map[string][]string
	failAll bool
}

func (m *mockVariantCounts) GetAssignment(experimentID, userID string) (*experimentmodels.ExperimentAssignment, error) {
	return nil, nil
}

func (m *mockVariantCounts) InsertAssignment(a *experimentmodels.ExperimentAssignment) (*experimentmodels.ExperimentAssignment, error) {
	return a, nil
}

func (m *mockVariantCounts) CountByVariant(experimentID string) (map[string]int64, error) {
	if m.failAll {
		return nil, errors.New("store down")
	}
	return m.counts, nil
}

func (m *mockVariantCounts) GetUserIDsByVariant(experimentID, variant string) ([]string, error) {
	if m.failAll {
		return nil, errors.New("store down")
	}
	return m.byUser[variant], nil
}

func emptyStore() (*mockAnalyticsRepository, *mockVariantCounts) {
	return &mockAnalyticsRepository{
			eventUsers:  map[string]int64{},
			eventCounts: map[string]int64{},
		}, &mockVariantCounts{
			counts: map[string]int64{},
			byUser: map[string][]string{},
		}
}

func TestGetBundle_EmptyStoreYieldsSyntheticBundle(t *testing.T) {
	repo, assignments := emptyStore()
	service := NewAnalyticsService(repo, assignments, "smart_hints", 30)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	bundle, err := service.GetBundle(now)

	assert.Nil(t, err)
	assert.NotNil(t, bundle)

	// One DAU point per day in the window, floored at one user.
	assert.Len(t, bundle.DAU, 31)
	for _, point := range bundle.DAU {
		assert.GreaterOrEqual(t, point.Users, 1)
	}

	// Funnel carries the documented demo floors.
	assert.Len(t, bundle.Funnel, 4)
	assert.Equal(t, 100, bundle.Funnel[0].Users)
	assert.Equal(t, 25, bundle.Funnel[1].Users)

	// Retention falls back to the illustrative curve over 50 users.
	assert.Len(t, bundle.Retention, 5)
	assert.Equal(t, 50, bundle.Retention[0].CohortSize)
	assert.Equal(t, 50, bundle.Retention[0].Retained)
	assert.Equal(t, 17, bundle.Retention[1].Retained)

	// Experiment arms carry the demo floors.
	assert.Equal(t, 45, bundle.Experiment.Control.Users)
	assert.Equal(t, 12, bundle.Experiment.Control.Conversions)
	assert.Equal(t, 48, bundle.Experiment.Treatment.Users)
	assert.Equal(t, 16, bundle.Experiment.Treatment.Conversions)

	// NPS and themes come from the demo samples.
	assert.NotZero(t, bundle.NPS.Total)
	assert.NotEmpty(t, bundle.Feedback.TopThemes)
}

func TestGetBundle_FailedStageIsNamed(t *testing.T) {
	repo, assignments := emptyStore()
	repo.failDAU = true
	service := NewAnalyticsService(repo, assignments, "smart_hints", 30)

	bundle, err := service.GetBundle(time.Now())

	assert.Nil(t, bundle)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "dau")
	assert.NotContains(t, err.Error(), "funnel")
}

func TestGetBundle_MultipleFailedStagesSorted(t *testing.T) {
	repo, assignments := emptyStore()
	repo.failDAU = true
	repo.failFeedback = true
	assignments.failAll = true
	service := NewAnalyticsService(repo, assignments, "smart_hints", 30)

	_, err := service.GetBundle(time.Now())

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "dau, experiment, feedback, nps")
}

func TestComputeDAU_RealCountsPassThrough(t *testing.T) {
	repo, assignments := emptyStore()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	repo.dayCounts = []repository.DayCount{
		{Day: "2026-08-19", Users: 7},
		{Day: "2026-08-20", Users: 3},
	}
	service := NewAnalyticsService(repo, assignments, "smart_hints", 30)

	bundle, err := service.GetBundle(now)
	assert.Nil(t, err)

	last := bundle.DAU[len(bundle.DAU)-1]
	assert.Equal(t, "2026-08-20", last.Date)
	assert.Equal(t, 3, last.Users)
	assert.Equal(t, 7, bundle.DAU[len(bundle.DAU)-2].Users)
}

func TestComputeRetention_CohortPathWhenEnoughUsers(t *testing.T) {
	repo, assignments := emptyStore()
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// Five users first seen on Aug 1; three return the next day, one a week later.
	repo.activityDays = []repository.UserDay{
		{UserID: "u1", Day: "2026-08-01"}, {UserID: "u1", Day: "2026-08-02"}, {UserID: "u1", Day: "2026-08-08"},
		{UserID: "u2", Day: "2026-08-01"}, {UserID: "u2", Day: "2026-08-02"},
		{UserID: "u3", Day: "2026-08-01"}, {UserID: "u3", Day: "2026-08-02"},
		{UserID: "u4", Day: "2026-08-01"},
		{UserID: "u5", Day: "2026-08-01"},
	}
	service := NewAnalyticsService(repo, assignments, "smart_hints", 30)

	bundle, err := service.GetBundle(now)
	assert.Nil(t, err)

	retention := bundle.Retention
	assert.Equal(t, 5, retention[0].CohortSize)
	assert.Equal(t, 5, retention[0].Retained)
	assert.Equal(t, 0, retention[0].Day)

	byDay := make(map[int]int)
	for _, point := range retention {
		byDay[point.Day] = point.Retained
	}
	assert.Equal(t, 5, byDay[0])
	assert.Equal(t, 3, byDay[1])
	assert.Equal(t, 1, byDay[7])
	assert.Equal(t, 0, byDay[14])
}

func TestComputeNPS_RealScoresWin(t *testing.T) {
	repo, assignments := emptyStore()
	nine, six := 9, 6
	repo.feedback = []repository.FeedbackRow{
		{Type: "NPS", Rating: &nine},
		{Type: "NPS", Rating: &six},
		{Type: "GENERAL", Content: "fine"},
	}
	service := NewAnalyticsService(repo, assignments, "smart_hints", 30)

	bundle, err := service.GetBundle(time.Now())
	assert.Nil(t, err)

	assert.Equal(t, 2, bundle.NPS.Total)
	assert.Equal(t, 1, bundle.NPS.Promoters)
	assert.Equal(t, 1, bundle.NPS.Detractors)
	assert.Equal(t, 0, bundle.NPS.Score)
}

func TestComputeExperiment_RealArmsPassThrough(t *testing.T) {
	repo, assignments := emptyStore()
	assignments.counts = map[string]int64{
		experimentmodels.VariantControl:   200,
		experimentmodels.VariantTreatment: 210,
	}
	assignments.byUser = map[string][]string{
		experimentmodels.VariantControl:   {"u1"},
		experimentmodels.VariantTreatment: {"u2"},
	}
	repo.eventCounts = map[string]int64{"checklist_complete": 60}
	service := NewAnalyticsService(repo, assignments, "smart_hints", 30)

	bundle, err := service.GetBundle(time.Now())
	assert.Nil(t, err)

	assert.Equal(t, 200, bundle.Experiment.Control.Users)
	assert.Equal(t, 210, bundle.Experiment.Treatment.Users)
	assert.Equal(t, 60, bundle.Experiment.Control.Conversions)
}

func TestComputeFeedback_SentimentBreakdown(t *testing.T) {
	repo, assignments := emptyStore()
	repo.feedback = []repository.FeedbackRow{
		{Type: "GENERAL", Content: "great checklists", Sentiment: "positive"},
		{Type: "BUG_REPORT", Content: "found a bug", Sentiment: "negative"},
		{Type: "GENERAL", Content: "works fine"},
	}
	service := NewAnalyticsService(repo, assignments, "smart_hints", 30)

	bundle, err := service.GetBundle(time.Now())
	assert.Nil(t, err)

	feedback := bundle.Feedback
	assert.Equal(t, 3, feedback.TotalCount)
	assert.Equal(t, 1, feedback.SentimentBreakdown["positive"])
	assert.Equal(t, 1, feedback.SentimentBreakdown["negative"])
	assert.Equal(t, 1, feedback.SentimentBreakdown["neutral"])
}
