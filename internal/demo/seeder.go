// Package demo generates realistic sample data: a full reseed (Seeder) and
// live synthetic traffic (Simulator). Both drive the same repositories and
// services as the API so generated data takes the production write paths.
package demo

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	checklistmodels "github.com/architect/checklist-lab/internal/checklists/models"
	"github.com/architect/checklist-lab/internal/common/database"
	experimentmodels "github.com/architect/checklist-lab/internal/experiments/models"
	feedbackmodels "github.com/architect/checklist-lab/internal/feedback/models"
	feedbackservices "github.com/architect/checklist-lab/internal/feedback/services"
	trackingmodels "github.com/architect/checklist-lab/internal/tracking/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Models lists every persisted model, in migration order.
func Models() []interface{} {
	return []interface{}{
		&database.User{},
		&trackingmodels.Event{},
		&experimentmodels.ExperimentAssignment{},
		&checklistmodels.Checklist{},
		&checklistmodels.ChecklistItem{},
		&feedbackmodels.Feedback{},
	}
}

// Stats summarizes what a generator produced.
type Stats struct {
	Users      int64 `json:"users"`
	Checklists int64 `json:"checklists"`
	Events     int64 `json:"events"`
	Feedback   int64 `json:"feedback"`
}

var sampleUserIDs = []string{
	"user_1", "user_2", "user_3", "user_4", "user_5",
	"user_6", "user_7", "user_8", "user_9", "user_10",
}

var checklistTitles = []string{
	"Morning Routine",
	"Weekly Planning",
	"Grocery Shopping",
	"Project Launch Checklist",
	"Travel Preparation",
	"Health & Fitness Goals",
	"Home Cleaning Schedule",
	"Learning New Skills",
	"Team Meeting Prep",
	"Monthly Review",
}

type feedbackSample struct {
	text      string
	sentiment string
	kind      string
}

var feedbackSamples = []feedbackSample{
	{"Love the simplicity of creating checklists! Very intuitive interface.", "positive", feedbackmodels.TypeGeneral},
	{"The app helps me stay organized and productive throughout the day.", "positive", feedbackmodels.TypeGeneral},
	{"Could really use better mobile optimization. Text is too small on phone.", "negative", feedbackmodels.TypeFeatureRequest},
	{"Sharing feature works great for team collaboration!", "positive", feedbackmodels.TypeGeneral},
	{"Found a bug when trying to delete items - nothing happens when I click delete.", "negative", feedbackmodels.TypeBugReport},
	{"Interface is clean and intuitive. Great design choices.", "positive", feedbackmodels.TypeGeneral},
	{"Would love to see a dark mode option added.", "neutral", feedbackmodels.TypeFeatureRequest},
	{"Perfect for managing my daily tasks. Highly recommend!", "positive", feedbackmodels.TypeGeneral},
	{"App crashes sometimes when I have many items in a list.", "negative", feedbackmodels.TypeBugReport},
	{"Great for team projects. Sharing makes collaboration easy.", "positive", feedbackmodels.TypeGeneral},
	{"Loading times could be faster, especially on slower connections.", "negative", feedbackmodels.TypeFeatureRequest},
	{"Simple but powerful. Does exactly what I need without bloat.", "positive", feedbackmodels.TypeGeneral},
}

// Positively skewed, like a product people mostly like.
var seedNPSScores = []int{10, 9, 9, 8, 8, 7, 6, 5, 9, 10, 8, 7, 4, 9, 8}

// Seeder wipes and repopulates the store with thirty days of history.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run performs the full reseed. This is the only code path that deletes
// events.
func (s *Seeder) Run() (*Stats, error) {
	if err := s.wipe(); err != nil {
		return nil, err
	}

	if err := s.seedUsers(); err != nil {
		return nil, err
	}
	checklists, err := s.seedChecklists()
	if err != nil {
		return nil, err
	}
	variants, err := s.seedAssignments()
	if err != nil {
		return nil, err
	}
	if err := s.seedEvents(checklists, variants); err != nil {
		return nil, err
	}
	if err := s.seedFeedback(); err != nil {
		return nil, err
	}

	return s.stats()
}

func (s *Seeder) wipe() error {
	tables := []interface{}{
		&trackingmodels.Event{},
		&feedbackmodels.Feedback{},
		&experimentmodels.ExperimentAssignment{},
		&checklistmodels.ChecklistItem{},
		&checklistmodels.Checklist{},
		&database.User{},
	}
	for _, table := range tables {
		result := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table)
		if result.Error != nil {
			return fmt.Errorf("failed to clear table: %w", result.Error)
		}
	}
	return nil
}

func (s *Seeder) seedUsers() error {
	for _, userID := range sampleUserIDs {
		user := database.User{
			ID:           userID,
			CreatedAt:    pastDate(randomInt(1, 30)),
			HasConsented: rand.Float64() > 0.2,
		}
		if result := s.db.Create(&user); result.Error != nil {
			return result.Error
		}
	}
	return nil
}

func (s *Seeder) seedChecklists() ([]*checklistmodels.Checklist, error) {
	var checklists []*checklistmodels.Checklist

	for _, userID := range sampleUserIDs {
		numChecklists := randomInt(1, 4)
		for j := 0; j < numChecklists; j++ {
			title := checklistTitles[rand.Intn(len(checklistTitles))]
			createdAt := pastDate(randomInt(0, 25))
			completed := rand.Float64() > 0.4

			checklist := &checklistmodels.Checklist{
				ID:        uuid.NewString(),
				Title:     title,
				UserID:    userID,
				Completed: completed,
				CreatedAt: createdAt,
			}
			if rand.Float64() > 0.5 {
				checklist.Description = "Description for " + title
			}
			if completed {
				completedAt := createdAt.Add(time.Duration(randomInt(1, 5)) * time.Hour)
				checklist.CompletedAt = &completedAt
			}

			numItems := randomInt(3, 8)
			for k := 0; k < numItems; k++ {
				item := checklistmodels.ChecklistItem{
					ID:          uuid.NewString(),
					ChecklistID: checklist.ID,
					Text:        fmt.Sprintf("Item %d for %s", k+1, title),
					Position:    k,
					Completed:   completed || rand.Float64() > 0.6,
				}
				if item.Completed {
					itemDone := createdAt.Add(time.Duration(k*10) * time.Minute)
					item.CompletedAt = &itemDone
				}
				checklist.Items = append(checklist.Items, item)
			}

			if result := s.db.Create(checklist); result.Error != nil {
				return nil, result.Error
			}
			checklists = append(checklists, checklist)
		}
	}
	return checklists, nil
}

func (s *Seeder) seedAssignments() (map[string]string, error) {
	variants := make(map[string]string, len(sampleUserIDs))
	for _, userID := range sampleUserIDs {
		variant := experimentmodels.VariantControl
		if rand.Float64() > 0.5 {
			variant = experimentmodels.VariantTreatment
		}
		assignment := experimentmodels.ExperimentAssignment{
			ExperimentID: "smart_hints",
			UserID:       userID,
			Variant:      variant,
			CreatedAt:    pastDate(randomInt(20, 30)),
		}
		if result := s.db.Create(&assignment); result.Error != nil {
			return nil, result.Error
		}
		variants[userID] = variant
	}
	return variants, nil
}

// seedEvents replays each checklist's lifecycle as the funnel events a real
// session would have produced.
func (s *Seeder) seedEvents(checklists []*checklistmodels.Checklist, variants map[string]string) error {
	for _, checklist := range checklists {
		sessionID := "sess_" + uuid.NewString()[:8]
		variant := variants[checklist.UserID]
		if variant == "" {
			variant = experimentmodels.VariantControl
		}

		if err := s.insertEvent(checklist.UserID, sessionID, trackingmodels.EventPageView, checklist.CreatedAt, map[string]interface{}{
			"page":  "/checklists",
			"title": "Checklists",
			"url":   "http://localhost:3000/checklists",
		}); err != nil {
			return err
		}

		if err := s.insertEvent(checklist.UserID, sessionID, trackingmodels.EventChecklistCreate, checklist.CreatedAt.Add(2*time.Minute), map[string]interface{}{
			"checklist_id":       checklist.ID,
			"title":              checklist.Title,
			"items_count":        len(checklist.Items),
			"experiment_variant": variant,
		}); err != nil {
			return err
		}

		if checklist.Completed && checklist.CompletedAt != nil {
			completionTime := checklist.CompletedAt.Sub(checklist.CreatedAt).Milliseconds()
			if err := s.insertEvent(checklist.UserID, sessionID, trackingmodels.EventChecklistComplete, *checklist.CompletedAt, map[string]interface{}{
				"checklist_id":       checklist.ID,
				"title":              checklist.Title,
				"items_count":        len(checklist.Items),
				"completion_time_ms": completionTime,
				"experiment_variant": variant,
			}); err != nil {
				return err
			}

			if rand.Float64() > 0.7 {
				if err := s.insertEvent(checklist.UserID, sessionID, trackingmodels.EventChecklistShare, checklist.CompletedAt.Add(5*time.Minute), map[string]interface{}{
					"checklist_id": checklist.ID,
					"share_method": pick("link", "native_share"),
				}); err != nil {
					return err
				}
			}
		}

		if rand.Float64() > 0.6 {
			if err := s.insertEvent(checklist.UserID, sessionID, trackingmodels.EventCTAClick, checklist.CreatedAt.Add(-30*time.Second), map[string]interface{}{
				"cta_text":     "New Checklist",
				"cta_location": "header",
				"target_page":  "/checklists",
			}); err != nil {
				return err
			}
		}
	}

	// App opens for a subset of users.
	for _, userID := range sampleUserIDs[:7] {
		openTime := pastDate(randomInt(0, 15))
		if err := s.insertEvent(userID, "sess_open_"+userID, trackingmodels.EventAppOpen, openTime, map[string]interface{}{
			"user_agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
			"referrer":   pick("https://google.com", "https://twitter.com", ""),
			"timestamp":  openTime.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}

	return nil
}

func (s *Seeder) insertEvent(userID, sessionID, name string, timestamp time.Time, properties map[string]interface{}) error {
	propsJSON, err := json.Marshal(properties)
	if err != nil {
		return err
	}
	event := trackingmodels.Event{
		Name:       name,
		Properties: string(propsJSON),
		SessionID:  sessionID,
		UserID:     userID,
		Timestamp:  timestamp,
	}
	return s.db.Create(&event).Error
}

func (s *Seeder) seedFeedback() error {
	for _, sample := range feedbackSamples {
		feedback := feedbackmodels.Feedback{
			Type:      sample.kind,
			Content:   sample.text,
			Sentiment: sample.sentiment,
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
			URL:       "http://localhost:3000/feedback",
			UserID:    sampleUserIDs[rand.Intn(8)],
			CreatedAt: pastDate(randomInt(0, 20)),
		}
		if result := s.db.Create(&feedback); result.Error != nil {
			return result.Error
		}
	}

	for i, score := range seedNPSScores {
		rating := score
		feedback := feedbackmodels.Feedback{
			Type:      feedbackmodels.TypeNPS,
			Content:   fmt.Sprintf("NPS Score: %d", score),
			Rating:    &rating,
			Category:  feedbackservices.Categorize(score),
			Sentiment: feedbackservices.Categorize(score),
			UserID:    sampleUserIDs[i%len(sampleUserIDs)],
			CreatedAt: pastDate(randomInt(0, 25)),
		}
		if result := s.db.Create(&feedback); result.Error != nil {
			return result.Error
		}
	}

	return nil
}

func (s *Seeder) stats() (*Stats, error) {
	stats := &Stats{}
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&database.User{}, &stats.Users},
		{&checklistmodels.Checklist{}, &stats.Checklists},
		{&trackingmodels.Event{}, &stats.Events},
		{&feedbackmodels.Feedback{}, &stats.Feedback},
	}
	for _, c := range counts {
		if result := s.db.Model(c.model).Count(c.dest); result.Error != nil {
			return nil, result.Error
		}
	}
	return stats, nil
}

// pastDate returns a timestamp daysAgo days back, at a random waking hour
// so events spread through the day.
func pastDate(daysAgo int) time.Time {
	day := time.Now().AddDate(0, 0, -daysAgo)
	return time.Date(day.Year(), day.Month(), day.Day(),
		randomInt(8, 22), randomInt(0, 59), 0, 0, day.Location())
}

func randomInt(min, max int) int {
	return min + rand.Intn(max-min+1)
}

func pick(options ...string) string {
	return options[rand.Intn(len(options))]
}
