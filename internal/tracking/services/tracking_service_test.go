package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/architect/checklist-lab/internal/tracking/models"
	"github.com/stretchr/testify/assert"
)

type mockEventRepository struct {
	mu         sync.Mutex
	events     []*models.Event
	users      map[string]bool
	failCreate bool
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{users: make(map[string]bool)}
}

func (m *mockEventRepository) CreateEvent(event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errors.New("store down")
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventRepository) EnsureUser(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = true
	return nil
}

func (m *mockEventRepository) CountEvents() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.events)), nil
}

func (m *mockEventRepository) GetEventsSince(since time.Time) ([]*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events, nil
}

// recordingSink captures forwarded events for assertions.
type recordingSink struct {
	mu       sync.Mutex
	captured []string
	done     chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{done: make(chan struct{}, 16)}
}

func (s *recordingSink) Capture(distinctID, event string, properties map[string]interface{}) {
	s.mu.Lock()
	s.captured = append(s.captured, event)
	s.mu.Unlock()
	s.done <- struct{}{}
}

func validPageView() models.TrackEventRequest {
	return models.TrackEventRequest{
		Name: models.EventPageView,
		Properties: map[string]interface{}{
			"page":  "/checklists",
			"title": "Checklists",
			"url":   "http://localhost:3000/checklists",
		},
		SessionID: "sess_test",
		UserID:    "user_1",
	}
}

func TestTrack_StoresValidEvent(t *testing.T) {
	repo := newMockEventRepository()
	service := NewTrackingService(repo, newRecordingSink())

	event, err := service.Track(validPageView())

	assert.Nil(t, err)
	assert.NotNil(t, event)
	assert.Equal(t, models.EventPageView, event.Name)
	assert.Equal(t, "user_1", event.UserID)
	assert.Contains(t, event.Properties, "/checklists")
	assert.Len(t, repo.events, 1)
}

func TestTrack_CreatesUserLazily(t *testing.T) {
	repo := newMockEventRepository()
	service := NewTrackingService(repo, newRecordingSink())

	_, err := service.Track(validPageView())

	assert.Nil(t, err)
	assert.True(t, repo.users["user_1"])
}

func TestTrack_EmptyUserFallsBackToAnonymous(t *testing.T) {
	repo := newMockEventRepository()
	service := NewTrackingService(repo, newRecordingSink())

	req := validPageView()
	req.UserID = ""
	event, err := service.Track(req)

	assert.Nil(t, err)
	assert.Equal(t, "anonymous", event.UserID)
}

func TestTrack_RejectsUnknownEventName(t *testing.T) {
	repo := newMockEventRepository()
	service := NewTrackingService(repo, newRecordingSink())

	req := validPageView()
	req.Name = "mystery_event"
	event, err := service.Track(req)

	assert.Nil(t, event)
	assert.NotNil(t, err)
	assert.Empty(t, repo.events)
}

func TestTrack_RejectsMissingRequiredProperties(t *testing.T) {
	repo := newMockEventRepository()
	service := NewTrackingService(repo, newRecordingSink())

	req := models.TrackEventRequest{
		Name:       models.EventChecklistCreate,
		Properties: map[string]interface{}{"checklist_id": "abc"},
		SessionID:  "sess_test",
		UserID:     "user_1",
	}
	event, err := service.Track(req)

	assert.Nil(t, event)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "items_count")
	assert.Empty(t, repo.events)
}

func TestTrack_OptionalPropertiesNotRequired(t *testing.T) {
	repo := newMockEventRepository()
	service := NewTrackingService(repo, newRecordingSink())

	// referrer is optional for app_open
	req := models.TrackEventRequest{
		Name: models.EventAppOpen,
		Properties: map[string]interface{}{
			"user_agent": "test-agent",
			"timestamp":  time.Now().Format(time.RFC3339),
		},
		SessionID: "sess_test",
		UserID:    "user_1",
	}
	_, err := service.Track(req)

	assert.Nil(t, err)
}

func TestTrack_ForwardsToSink(t *testing.T) {
	repo := newMockEventRepository()
	sink := newRecordingSink()
	service := NewTrackingService(repo, sink)

	_, err := service.Track(validPageView())
	assert.Nil(t, err)

	select {
	case <-sink.done:
	case <-time.After(time.Second):
		t.Fatal("sink was never called")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, []string{models.EventPageView}, sink.captured)
}

func TestTrack_StoreErrorPropagates(t *testing.T) {
	repo := newMockEventRepository()
	repo.failCreate = true
	service := NewTrackingService(repo, newRecordingSink())

	event, err := service.Track(validPageView())

	assert.Nil(t, event)
	assert.NotNil(t, err)
}

func TestTrack_UsesProvidedTimestamp(t *testing.T) {
	repo := newMockEventRepository()
	service := NewTrackingService(repo, newRecordingSink())

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	req := validPageView()
	req.Timestamp = &at
	event, err := service.Track(req)

	assert.Nil(t, err)
	assert.Equal(t, at, event.Timestamp)
}

func TestKnownEvent_Registry(t *testing.T) {
	assert.True(t, models.KnownEvent(models.EventNPSScored))
	assert.False(t, models.KnownEvent("not_an_event"))
	assert.Len(t, models.EventNames(), 13)
}
