package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/architect/checklist-lab/internal/experiments/models"
	"github.com/stretchr/testify/assert"
)

// mockAssignmentRepository is an in-memory stand-in with the same
// first-write-wins semantics as the unique index.
type mockAssignmentRepository struct {
	mu          sync.Mutex
	assignments map[string]*models.ExperimentAssignment
	inserts     int
	failReads   bool
	failWrites  bool
}

func newMockAssignmentRepository() *mockAssignmentRepository {
	return &mockAssignmentRepository{
		assignments: make(map[string]*models.ExperimentAssignment),
	}
}

func key(experimentID, userID string) string {
	return experimentID + "|" + userID
}

func (m *mockAssignmentRepository) GetAssignment(experimentID, userID string) (*models.ExperimentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads {
		return nil, errors.New("store down")
	}
	return m.assignments[key(experimentID, userID)], nil
}

func (m *mockAssignmentRepository) InsertAssignment(assignment *models.ExperimentAssignment) (*models.ExperimentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return nil, errors.New("store down")
	}
	k := key(assignment.ExperimentID, assignment.UserID)
	if existing, ok := m.assignments[k]; ok {
		return existing, nil
	}
	m.assignments[k] = assignment
	m.inserts++
	return assignment, nil
}

func (m *mockAssignmentRepository) CountByVariant(experimentID string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, a := range m.assignments {
		if a.ExperimentID == experimentID {
			counts[a.Variant]++
		}
	}
	return counts, nil
}

func (m *mockAssignmentRepository) GetUserIDsByVariant(experimentID, variant string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var userIDs []string
	for _, a := range m.assignments {
		if a.ExperimentID == experimentID && a.Variant == variant {
			userIDs = append(userIDs, a.UserID)
		}
	}
	return userIDs, nil
}

func TestGetVariant_Idempotent(t *testing.T) {
	service := NewExperimentService(newMockAssignmentRepository())

	for i := 0; i < 50; i++ {
		userID := fmt.Sprintf("user_%d", i)
		first := service.GetVariant("smart_hints", userID)
		for j := 0; j < 5; j++ {
			assert.Equal(t, first, service.GetVariant("smart_hints", userID))
		}
	}
}

func TestGetVariant_StoredAssignmentWins(t *testing.T) {
	repo := newMockAssignmentRepository()
	repo.assignments[key("smart_hints", "user_1")] = &models.ExperimentAssignment{
		ExperimentID: "smart_hints",
		UserID:       "user_1",
		Variant:      models.VariantTreatment,
	}
	service := NewExperimentService(repo)

	assert.Equal(t, models.VariantTreatment, service.GetVariant("smart_hints", "user_1"))
	assert.Equal(t, 0, repo.inserts)
}

func TestGetVariant_DeterministicAcrossInstances(t *testing.T) {
	a := NewExperimentService(newMockAssignmentRepository())
	b := NewExperimentService(newMockAssignmentRepository())

	for i := 0; i < 50; i++ {
		userID := fmt.Sprintf("user_%d", i)
		assert.Equal(t, a.GetVariant("smart_hints", userID), b.GetVariant("smart_hints", userID))
	}
}

func TestGetVariant_ReturnsOnlyValidVariants(t *testing.T) {
	service := NewExperimentService(newMockAssignmentRepository())

	for i := 0; i < 100; i++ {
		variant := service.GetVariant("smart_hints", fmt.Sprintf("user_%d", i))
		assert.Contains(t, []string{models.VariantControl, models.VariantTreatment}, variant)
	}
}

func TestGetVariant_RoughlyBalanced(t *testing.T) {
	service := NewExperimentService(newMockAssignmentRepository())

	control := 0
	for i := 0; i < 1000; i++ {
		if service.GetVariant("smart_hints", fmt.Sprintf("user_%d", i)) == models.VariantControl {
			control++
		}
	}

	// FNV-1a should split close to 50/50 over a thousand users.
	assert.Greater(t, control, 400)
	assert.Less(t, control, 600)
}

func TestGetVariant_FailsOpenOnReadError(t *testing.T) {
	repo := newMockAssignmentRepository()
	repo.failReads = true
	service := NewExperimentService(repo)

	assert.Equal(t, models.VariantControl, service.GetVariant("smart_hints", "user_1"))
}

func TestGetVariant_FailsOpenOnWriteError(t *testing.T) {
	repo := newMockAssignmentRepository()
	repo.failWrites = true
	service := NewExperimentService(repo)

	assert.Equal(t, models.VariantControl, service.GetVariant("smart_hints", "user_1"))
}

func TestGetVariant_ConcurrentFirstLookupsCreateOneRow(t *testing.T) {
	repo := newMockAssignmentRepository()
	service := NewExperimentService(repo)

	var wg sync.WaitGroup
	variants := make([]string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			variants[i] = service.GetVariant("smart_hints", "user_1")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.inserts)
	for _, variant := range variants {
		assert.Equal(t, variants[0], variant)
	}
}

func TestIsFeatureEnabled_DefaultFlags(t *testing.T) {
	service := NewExperimentService(newMockAssignmentRepository())

	assert.True(t, service.IsFeatureEnabled("smart_hints"))
	assert.False(t, service.IsFeatureEnabled("unknown_flag"))
}

func TestToggleFlag(t *testing.T) {
	service := NewExperimentService(newMockAssignmentRepository())

	assert.False(t, service.ToggleFlag("smart_hints"))
	assert.True(t, service.ToggleFlag("smart_hints"))
	assert.True(t, service.ToggleFlag("dark_mode"))
}
