package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/architect/checklist-lab/internal/common/errors"
	"github.com/architect/checklist-lab/internal/tracking/models"
	"github.com/architect/checklist-lab/internal/tracking/repository"
	"github.com/architect/checklist-lab/internal/tracking/sink"
	"github.com/architect/checklist-lab/pkg/metrics"
)

// TrackingService validates and stores behavioral events, creating users
// lazily and forwarding a copy to the external sink.
type TrackingService struct {
	repo repository.EventRepository
	sink sink.EventSink
}

func NewTrackingService(repo repository.EventRepository, eventSink sink.EventSink) *TrackingService {
	return &TrackingService{repo: repo, sink: eventSink}
}

// Track validates the event against the registry and appends it to the
// store. Malformed events are rejected, never silently dropped. Sink
// delivery runs in the background and cannot fail the call.
func (s *TrackingService) Track(req models.TrackEventRequest) (*models.Event, error) {
	if err := validateEvent(req.Name, req.Properties); err != nil {
		metrics.RecordEventRejected()
		return nil, err
	}

	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	timestamp := time.Now()
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	propsJSON, err := json.Marshal(req.Properties)
	if err != nil {
		metrics.RecordEventRejected()
		return nil, errors.Validation("invalid event properties", err.Error())
	}

	if err := s.repo.EnsureUser(userID); err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:       req.Name,
		Properties: string(propsJSON),
		SessionID:  req.SessionID,
		UserID:     userID,
		Timestamp:  timestamp,
	}

	if err := s.repo.CreateEvent(event); err != nil {
		return nil, err
	}
	metrics.RecordEventIngested()

	go s.sink.Capture(userID, req.Name, req.Properties)

	return event, nil
}

func validateEvent(name string, properties map[string]interface{}) error {
	if !models.KnownEvent(name) {
		return errors.Validation("unknown event name", name)
	}

	var missing []string
	for _, key := range models.RequiredProperties(name) {
		if _, ok := properties[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return errors.Validation(
			fmt.Sprintf("event %q is missing required properties", name),
			strings.Join(missing, ", "))
	}

	return nil
}
