package services

import (
	"time"

	"github.com/architect/checklist-lab/internal/checklists/models"
	"github.com/architect/checklist-lab/internal/checklists/repository"
	experimentservices "github.com/architect/checklist-lab/internal/experiments/services"
	trackingmodels "github.com/architect/checklist-lab/internal/tracking/models"
	trackingservices "github.com/architect/checklist-lab/internal/tracking/services"
	"github.com/architect/checklist-lab/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// serverSessionID marks events emitted by the backend rather than a
// browser session.
const serverSessionID = "server"

// ChecklistService implements checklist CRUD and emits the funnel events
// each mutation represents.
type ChecklistService struct {
	repo         repository.ChecklistRepository
	tracking     *trackingservices.TrackingService
	experiments  *experimentservices.ExperimentService
	experimentID string
}

func NewChecklistService(
	repo repository.ChecklistRepository,
	tracking *trackingservices.TrackingService,
	experiments *experimentservices.ExperimentService,
	experimentID string,
) *ChecklistService {
	return &ChecklistService{
		repo:         repo,
		tracking:     tracking,
		experiments:  experiments,
		experimentID: experimentID,
	}
}

func (s *ChecklistService) CreateChecklist(userID string, req models.CreateChecklistRequest) (*models.Checklist, error) {
	if err := s.repo.EnsureUser(userID); err != nil {
		return nil, err
	}

	checklist := &models.Checklist{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
	}
	for i, text := range req.Items {
		checklist.Items = append(checklist.Items, models.ChecklistItem{
			ID:          uuid.NewString(),
			ChecklistID: checklist.ID,
			Text:        text,
			Position:    i,
		})
	}

	if err := s.repo.CreateChecklist(checklist); err != nil {
		return nil, err
	}

	s.emit(userID, trackingmodels.EventChecklistCreate, map[string]interface{}{
		"checklist_id":       checklist.ID,
		"title":              checklist.Title,
		"items_count":        len(checklist.Items),
		"experiment_variant": s.experiments.GetVariant(s.experimentID, userID),
	})

	return checklist, nil
}

func (s *ChecklistService) GetChecklists() ([]*models.Checklist, error) {
	return s.repo.GetChecklists()
}

// ToggleItem flips one item's completion and recomputes the checklist's
// state. Completing the final item completes the checklist; unchecking any
// item reopens it.
func (s *ChecklistService) ToggleItem(checklistID, itemID, userID string) (*models.ChecklistItem, error) {
	item, err := s.repo.GetItem(itemID)
	if err != nil {
		return nil, err
	}

	item.Completed = !item.Completed
	if item.Completed {
		now := time.Now()
		item.CompletedAt = &now
	} else {
		item.CompletedAt = nil
	}

	if err := s.repo.UpdateItem(item); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(checklistID)
	if err != nil {
		return nil, err
	}

	allCompleted := len(items) > 0
	for _, it := range items {
		if !it.Completed {
			allCompleted = false
			break
		}
	}

	if allCompleted {
		now := time.Now()
		if err := s.repo.SetChecklistCompletion(checklistID, true, &now); err != nil {
			return nil, err
		}

		checklist, err := s.repo.GetChecklist(checklistID)
		if err != nil {
			return nil, err
		}
		s.emit(userID, trackingmodels.EventChecklistComplete, map[string]interface{}{
			"checklist_id":       checklist.ID,
			"title":              checklist.Title,
			"items_count":        len(items),
			"completion_time_ms": now.Sub(checklist.CreatedAt).Milliseconds(),
			"experiment_variant": s.experiments.GetVariant(s.experimentID, userID),
		})
	} else if !item.Completed {
		if err := s.repo.SetChecklistCompletion(checklistID, false, nil); err != nil {
			return nil, err
		}
	}

	return item, nil
}

// ShareChecklist records a share without any actual delivery; the event is
// what the funnel cares about.
func (s *ChecklistService) ShareChecklist(checklistID, userID, method string) (*models.Checklist, error) {
	checklist, err := s.repo.GetChecklist(checklistID)
	if err != nil {
		return nil, err
	}

	s.emit(userID, trackingmodels.EventChecklistShare, map[string]interface{}{
		"checklist_id": checklist.ID,
		"share_method": method,
	})

	return checklist, nil
}

// emit records a funnel event. The mutation already succeeded, so a
// tracking failure is logged rather than surfaced.
func (s *ChecklistService) emit(userID, name string, properties map[string]interface{}) {
	_, err := s.tracking.Track(trackingmodels.TrackEventRequest{
		Name:       name,
		Properties: properties,
		SessionID:  serverSessionID,
		UserID:     userID,
	})
	if err != nil {
		logger.Warn("failed to record checklist event",
			zap.String("event", name),
			zap.Error(err))
	}
}
