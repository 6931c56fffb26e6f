package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/architect/checklist-lab/internal/feedback/models"
	trackingmodels "github.com/architect/checklist-lab/internal/tracking/models"
	trackingservices "github.com/architect/checklist-lab/internal/tracking/services"
	"github.com/stretchr/testify/assert"
)

type mockFeedbackRepository struct {
	feedback []*models.Feedback
}

func (m *mockFeedbackRepository) EnsureUser(userID string) error { return nil }

func (m *mockFeedbackRepository) CreateFeedback(feedback *models.Feedback) error {
	m.feedback = append(m.feedback, feedback)
	return nil
}

func (m *mockFeedbackRepository) GetFeedback() ([]*models.Feedback, error) {
	return m.feedback, nil
}

type memoryEventRepository struct {
	mu     sync.Mutex
	events []*trackingmodels.Event
}

func (m *memoryEventRepository) CreateEvent(event *trackingmodels.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memoryEventRepository) EnsureUser(userID string) error { return nil }

func (m *memoryEventRepository) CountEvents() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.events)), nil
}

func (m *memoryEventRepository) GetEventsSince(since time.Time) ([]*trackingmodels.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events, nil
}

func (m *memoryEventRepository) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.events))
	for i, e := range m.events {
		names[i] = e.Name
	}
	return names
}

type nopSink struct{}

func (nopSink) Capture(distinctID, event string, properties map[string]interface{}) {}

func newTestService() (*FeedbackService, *mockFeedbackRepository, *memoryEventRepository) {
	repo := &mockFeedbackRepository{}
	events := &memoryEventRepository{}
	tracking := trackingservices.NewTrackingService(events, nopSink{})
	return NewFeedbackService(repo, tracking), repo, events
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, models.CategoryPromoter, Categorize(10))
	assert.Equal(t, models.CategoryPromoter, Categorize(9))
	assert.Equal(t, models.CategoryPassive, Categorize(8))
	assert.Equal(t, models.CategoryPassive, Categorize(7))
	assert.Equal(t, models.CategoryDetractor, Categorize(6))
	assert.Equal(t, models.CategoryDetractor, Categorize(0))
}

func TestCreateFeedback_StoresSubmission(t *testing.T) {
	service, repo, _ := newTestService()

	feedback, err := service.CreateFeedback("user_1", models.CreateFeedbackRequest{
		Type:    models.TypeGeneral,
		Content: "love the checklists",
	})

	assert.Nil(t, err)
	assert.Equal(t, "user_1", feedback.UserID)
	assert.Empty(t, feedback.Category)
	assert.Len(t, repo.feedback, 1)
}

func TestCreateFeedback_NPSIsCategorized(t *testing.T) {
	service, _, _ := newTestService()

	rating := 9
	feedback, err := service.CreateFeedback("user_1", models.CreateFeedbackRequest{
		Type:    models.TypeNPS,
		Content: "would recommend",
		Rating:  &rating,
	})

	assert.Nil(t, err)
	assert.Equal(t, models.CategoryPromoter, feedback.Category)
}

func TestCreateFeedback_RejectsOutOfRangeRating(t *testing.T) {
	service, repo, _ := newTestService()

	rating := 11
	_, err := service.CreateFeedback("user_1", models.CreateFeedbackRequest{
		Type:    models.TypeNPS,
		Content: "x",
		Rating:  &rating,
	})

	assert.NotNil(t, err)
	assert.Empty(t, repo.feedback)
}

func TestCreateFeedback_EmitsSubmittedEvent(t *testing.T) {
	service, _, events := newTestService()

	_, err := service.CreateFeedback("user_1", models.CreateFeedbackRequest{
		Type:    models.TypeBugReport,
		Content: "toggle fails on mobile",
	})

	assert.Nil(t, err)
	assert.Equal(t, []string{trackingmodels.EventFeedbackSubmitted}, events.names())
}

func TestCreateFeedback_NPSEmitsScoredEvent(t *testing.T) {
	service, _, events := newTestService()

	rating := 4
	_, err := service.CreateFeedback("user_1", models.CreateFeedbackRequest{
		Type:    models.TypeNPS,
		Content: "too slow",
		Rating:  &rating,
	})

	assert.Nil(t, err)
	names := events.names()
	assert.Contains(t, names, trackingmodels.EventFeedbackSubmitted)
	assert.Contains(t, names, trackingmodels.EventNPSScored)

	for _, event := range events.events {
		if event.Name != trackingmodels.EventNPSScored {
			continue
		}
		var props map[string]interface{}
		assert.NoError(t, json.Unmarshal([]byte(event.Properties), &props))
		assert.Equal(t, float64(4), props["score"])
		assert.Equal(t, models.CategoryDetractor, props["category"])
		assert.Equal(t, true, props["followup_comment"])
	}
}
