package services

import (
	"github.com/architect/checklist-lab/internal/common/errors"
	"github.com/architect/checklist-lab/internal/common/validation"
	"github.com/architect/checklist-lab/internal/feedback/models"
	"github.com/architect/checklist-lab/internal/feedback/repository"
	trackingmodels "github.com/architect/checklist-lab/internal/tracking/models"
	trackingservices "github.com/architect/checklist-lab/internal/tracking/services"
	"github.com/architect/checklist-lab/pkg/logger"
	"go.uber.org/zap"
)

// FeedbackService stores feedback and mirrors each submission into the
// event stream.
type FeedbackService struct {
	repo     repository.FeedbackRepository
	tracking *trackingservices.TrackingService
}

func NewFeedbackService(repo repository.FeedbackRepository, tracking *trackingservices.TrackingService) *FeedbackService {
	return &FeedbackService{repo: repo, tracking: tracking}
}

func (s *FeedbackService) CreateFeedback(userID string, req models.CreateFeedbackRequest) (*models.Feedback, error) {
	if req.Rating != nil {
		if err := validation.ValidateIntRange(*req.Rating, 0, 10); err != nil {
			return nil, errors.BadRequest("rating must be between 0 and 10")
		}
	}

	if err := s.repo.EnsureUser(userID); err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		Type:          req.Type,
		Content:       req.Content,
		Rating:        req.Rating,
		Sentiment:     req.Sentiment,
		UserAgent:     req.UserAgent,
		URL:           req.URL,
		ConsoleErrors: req.ConsoleErrors,
		UserID:        userID,
	}
	if req.Type == models.TypeNPS && req.Rating != nil {
		feedback.Category = Categorize(*req.Rating)
	}

	if err := s.repo.CreateFeedback(feedback); err != nil {
		return nil, err
	}

	s.emitEvents(userID, feedback)

	return feedback, nil
}

func (s *FeedbackService) GetFeedback() ([]*models.Feedback, error) {
	return s.repo.GetFeedback()
}

// Categorize maps an NPS rating to its bucket.
func Categorize(rating int) string {
	switch {
	case rating >= 9:
		return models.CategoryPromoter
	case rating >= 7:
		return models.CategoryPassive
	default:
		return models.CategoryDetractor
	}
}

// emitEvents mirrors the submission into the event stream. The feedback is
// already stored; tracking failures are logged and dropped.
func (s *FeedbackService) emitEvents(userID string, feedback *models.Feedback) {
	props := map[string]interface{}{
		"feedback_type":  feedback.Type,
		"content_length": len(feedback.Content),
	}
	if feedback.Rating != nil {
		props["rating"] = *feedback.Rating
	}
	s.track(userID, trackingmodels.EventFeedbackSubmitted, props)

	if feedback.Type == models.TypeNPS && feedback.Rating != nil {
		s.track(userID, trackingmodels.EventNPSScored, map[string]interface{}{
			"score":            *feedback.Rating,
			"category":         feedback.Category,
			"followup_comment": len(feedback.Content) > 0,
		})
	}
}

func (s *FeedbackService) track(userID, name string, properties map[string]interface{}) {
	_, err := s.tracking.Track(trackingmodels.TrackEventRequest{
		Name:       name,
		Properties: properties,
		SessionID:  "server",
		UserID:     userID,
	})
	if err != nil {
		logger.Warn("failed to record feedback event",
			zap.String("event", name),
			zap.Error(err))
	}
}
