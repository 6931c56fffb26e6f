package services

import (
	"hash/fnv"
	"sync"

	"github.com/architect/checklist-lab/internal/experiments/models"
	"github.com/architect/checklist-lab/internal/experiments/repository"
	"github.com/architect/checklist-lab/pkg/logger"
	"github.com/architect/checklist-lab/pkg/metrics"
	"go.uber.org/zap"
)

// ExperimentService hands out stable variant assignments.
type ExperimentService struct {
	repo repository.AssignmentRepository

	mu    sync.RWMutex
	flags map[string]bool
}

func NewExperimentService(repo repository.AssignmentRepository) *ExperimentService {
	return &ExperimentService{
		repo: repo,
		flags: map[string]bool{
			"smart_hints": true, // Default to ON for local development
		},
	}
}

// GetVariant returns the user's variant for the experiment. A stored
// assignment always wins; otherwise the variant is derived from a stable
// hash and persisted before returning. Any failure falls open to control so
// callers never branch on an error.
func (s *ExperimentService) GetVariant(experimentID, userID string) string {
	existing, err := s.repo.GetAssignment(experimentID, userID)
	if err != nil {
		logger.Warn("variant lookup failed, defaulting to control",
			zap.String("experiment_id", experimentID),
			zap.String("user_id", userID),
			zap.Error(err))
		return models.VariantControl
	}
	if existing != nil {
		return existing.Variant
	}

	variant := hashVariant(userID, experimentID)

	stored, err := s.repo.InsertAssignment(&models.ExperimentAssignment{
		ExperimentID: experimentID,
		UserID:       userID,
		Variant:      variant,
	})
	if err != nil {
		logger.Warn("variant assignment failed, defaulting to control",
			zap.String("experiment_id", experimentID),
			zap.String("user_id", userID),
			zap.Error(err))
		return models.VariantControl
	}

	if stored.Variant == variant {
		metrics.RecordAssignment(stored.Variant)
	}
	return stored.Variant
}

// hashVariant derives the variant from an FNV-1a hash of userID+experimentID.
// Deterministic and uniform enough for a 50/50 split; not cryptographic.
func hashVariant(userID, experimentID string) string {
	h := fnv.New32a()
	h.Write([]byte(userID + experimentID))
	if h.Sum32()%2 == 0 {
		return models.VariantControl
	}
	return models.VariantTreatment
}

// IsFeatureEnabled reports the local flag state; unknown flags are off.
func (s *ExperimentService) IsFeatureEnabled(flagName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[flagName]
}

// ToggleFlag flips a local flag and returns the new state.
func (s *ExperimentService) ToggleFlag(flagName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[flagName] = !s.flags[flagName]
	return s.flags[flagName]
}
