package demo

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	checklistmodels "github.com/architect/checklist-lab/internal/checklists/models"
	checklistservices "github.com/architect/checklist-lab/internal/checklists/services"
	experimentservices "github.com/architect/checklist-lab/internal/experiments/services"
	feedbackmodels "github.com/architect/checklist-lab/internal/feedback/models"
	feedbackservices "github.com/architect/checklist-lab/internal/feedback/services"
	trackingmodels "github.com/architect/checklist-lab/internal/tracking/models"
	trackingservices "github.com/architect/checklist-lab/internal/tracking/services"
	"github.com/architect/checklist-lab/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SimulatorOptions bound a simulation run.
type SimulatorOptions struct {
	Duration     time.Duration
	Users        int
	ExperimentID string
}

// DefaultSimulatorOptions mirror a short demo run.
func DefaultSimulatorOptions(experimentID string) SimulatorOptions {
	return SimulatorOptions{
		Duration:     2 * time.Minute,
		Users:        15,
		ExperimentID: experimentID,
	}
}

var simPages = []string{"/checklists", "/feedback", "/lab", "/"}

var simChecklistTitles = []string{
	"Daily Tasks", "Shopping List", "Work Projects", "Weekend Plans",
	"Health Goals", "Learning Objectives", "Travel Checklist",
}

// Simulator drives a pool of synthetic users through the real services so
// their traffic is indistinguishable from API traffic.
type Simulator struct {
	tracking    *trackingservices.TrackingService
	checklists  *checklistservices.ChecklistService
	feedback    *feedbackservices.FeedbackService
	experiments *experimentservices.ExperimentService
	opts        SimulatorOptions
}

func NewSimulator(
	tracking *trackingservices.TrackingService,
	checklists *checklistservices.ChecklistService,
	feedback *feedbackservices.FeedbackService,
	experiments *experimentservices.ExperimentService,
	opts SimulatorOptions,
) *Simulator {
	if opts.Users <= 0 {
		opts.Users = 15
	}
	if opts.Duration <= 0 {
		opts.Duration = 2 * time.Minute
	}
	return &Simulator{
		tracking:    tracking,
		checklists:  checklists,
		feedback:    feedback,
		experiments: experiments,
		opts:        opts,
	}
}

type simUser struct {
	id          string
	sessionID   string
	variant     string
	currentPage string
	checklists  []*checklistmodels.Checklist
}

// Run simulates traffic until the duration elapses or ctx is canceled.
// Each user runs as its own worker; the first hard failure stops the run.
func (s *Simulator) Run(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Duration)
	defer cancel()

	var eventCount int64

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.opts.Users; i++ {
		g.Go(func() error {
			user := &simUser{
				id:          "sim_user_" + uuid.NewString()[:8],
				sessionID:   fmt.Sprintf("sim_sess_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:5]),
				currentPage: "/",
			}
			// First variant lookup both assigns and registers the user.
			user.variant = s.experiments.GetVariant(s.opts.ExperimentID, user.id)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(time.Duration(randomInt(1000, 4000)) * time.Millisecond):
				}

				if err := s.step(user); err != nil {
					return err
				}
				atomic.AddInt64(&eventCount, 1)
			}
		})
	}

	err := g.Wait()
	return atomic.LoadInt64(&eventCount), err
}

// step advances one user through a simple page-state behavior model.
func (s *Simulator) step(user *simUser) error {
	switch {
	case user.currentPage == "/" && rand.Float64() > 0.3:
		user.currentPage = "/checklists"
		return s.trackPageView(user)

	case user.currentPage == "/checklists" && rand.Float64() > 0.6:
		return s.createChecklist(user)

	case user.currentPage == "/checklists" && rand.Float64() > 0.7:
		return s.completeChecklist(user)

	case rand.Float64() > 0.95:
		return s.rareEvent(user)

	case rand.Float64() > 0.8:
		user.currentPage = simPages[rand.Intn(len(simPages))]
		return s.trackPageView(user)

	default:
		return s.trackCTA(user)
	}
}

func (s *Simulator) trackPageView(user *simUser) error {
	title := "Home"
	if len(user.currentPage) > 1 {
		title = user.currentPage[1:]
	}
	return s.track(user, trackingmodels.EventPageView, map[string]interface{}{
		"page":  user.currentPage,
		"title": title,
		"url":   "http://localhost:3000" + user.currentPage,
	})
}

func (s *Simulator) trackCTA(user *simUser) error {
	return s.track(user, trackingmodels.EventCTAClick, map[string]interface{}{
		"cta_text":     pick("Get Started", "New Checklist", "View Lab"),
		"cta_location": pick("homepage", "header", "button"),
		"target_page":  simPages[rand.Intn(len(simPages))],
	})
}

func (s *Simulator) createChecklist(user *simUser) error {
	numItems := randomInt(3, 7)
	items := make([]string, numItems)
	for i := range items {
		items[i] = fmt.Sprintf("Item %d", i+1)
	}

	checklist, err := s.checklists.CreateChecklist(user.id, checklistmodels.CreateChecklistRequest{
		Title: simChecklistTitles[rand.Intn(len(simChecklistTitles))],
		Items: items,
	})
	if err != nil {
		return err
	}
	user.checklists = append(user.checklists, checklist)
	return nil
}

// completeChecklist toggles every item of an open checklist; the service
// emits checklist_complete when the last one flips.
func (s *Simulator) completeChecklist(user *simUser) error {
	var open *checklistmodels.Checklist
	for _, checklist := range user.checklists {
		if !checklist.Completed {
			open = checklist
			break
		}
	}
	if open == nil {
		return s.trackCTA(user)
	}

	for _, item := range open.Items {
		if _, err := s.checklists.ToggleItem(open.ID, item.ID, user.id); err != nil {
			return err
		}
	}
	open.Completed = true
	return nil
}

func (s *Simulator) rareEvent(user *simUser) error {
	if rand.Float64() > 0.5 {
		return s.track(user, trackingmodels.EventFeedbackOpened, map[string]interface{}{
			"feedback_type": pick("general", "bug_report", "nps"),
			"trigger":       "button_click",
		})
	}

	if rand.Float64() > 0.5 {
		rating := randomInt(6, 10)
		_, err := s.feedback.CreateFeedback(user.id, feedbackmodels.CreateFeedbackRequest{
			Type:      feedbackmodels.TypeNPS,
			Content:   "NPS Survey Response",
			Rating:    &rating,
			UserAgent: "Simulation Bot",
			URL:       "http://localhost:3000/feedback",
		})
		return err
	}

	for _, checklist := range user.checklists {
		if checklist.Completed {
			_, err := s.checklists.ShareChecklist(checklist.ID, user.id, pick("link", "native_share"))
			return err
		}
	}
	return s.trackCTA(user)
}

func (s *Simulator) track(user *simUser, name string, properties map[string]interface{}) error {
	_, err := s.tracking.Track(trackingmodels.TrackEventRequest{
		Name:       name,
		Properties: properties,
		SessionID:  user.sessionID,
		UserID:     user.id,
	})
	if err != nil {
		logger.Warn("simulator event failed",
			zap.String("event", name),
			zap.Error(err))
	}
	return err
}
