// Command analyze prints a text analysis report over the stored data: the
// A/B comparison with its significance verdict, the raw conversion funnel,
// user retention, and the feedback/NPS breakdown.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/architect/checklist-lab/internal/analytics/models"
	analyticsrepo "github.com/architect/checklist-lab/internal/analytics/repository"
	analyticsservices "github.com/architect/checklist-lab/internal/analytics/services"
	"github.com/architect/checklist-lab/internal/common/database"
	experimentrepo "github.com/architect/checklist-lab/internal/experiments/repository"
	"github.com/architect/checklist-lab/pkg/config"
)

func main() {
	windowDays := flag.Int("window", 365, "Analysis window in days")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	repo := analyticsrepo.NewAnalyticsRepository(db)
	assignments := experimentrepo.NewAssignmentRepository(db)

	now := time.Now()
	start := now.AddDate(0, 0, -*windowDays)

	fmt.Println("🔍 Checklist Lab - Data Analysis Report")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	printExperiment(repo, assignments, cfg.Experiment.ID)
	printFunnel(repo, start, now)
	printUserMetrics(repo, now)
	printFeedback(repo)
}

func printExperiment(repo analyticsrepo.AnalyticsRepository, assignments experimentrepo.AssignmentRepository, experimentID string) {
	counts, err := assignments.CountByVariant(experimentID)
	if err != nil {
		log.Fatalf("Failed to read assignments: %v", err)
	}

	conversions := make(map[string]int)
	for _, variant := range []string{"control", "treatment"} {
		userIDs, err := assignments.GetUserIDsByVariant(experimentID, variant)
		if err != nil {
			log.Fatalf("Failed to read assignment users: %v", err)
		}
		count, err := repo.CountEventForUsers("checklist_complete", userIDs)
		if err != nil {
			log.Fatalf("Failed to count conversions: %v", err)
		}
		conversions[variant] = int(count)
	}

	result := analyticsservices.CompareArms("Smart Hints Feature",
		int(counts["control"]), conversions["control"],
		int(counts["treatment"]), conversions["treatment"])

	fmt.Println("🧪 A/B TEST RESULTS:", result.Name)
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Control Group:     %d users, %d conversions (%.1f%%)\n",
		result.Control.Users, result.Control.Conversions, result.Control.Rate*100)
	fmt.Printf("Treatment Group:   %d users, %d conversions (%.1f%%)\n",
		result.Treatment.Users, result.Treatment.Conversions, result.Treatment.Rate*100)
	fmt.Printf("Uplift:            %+.2f%%\n", result.Uplift)
	fmt.Printf("P-value:           %.4f\n", result.PValue)
	if result.IsSignificant {
		fmt.Printf("Statistical Sig:   YES (%.1f%% confidence)\n", result.Confidence)
		if result.Uplift > 0 {
			fmt.Println("RECOMMENDATION:    SHIP IT. The positive effect is statistically significant.")
		} else {
			fmt.Println("RECOMMENDATION:    KILL IT. The negative effect is statistically significant.")
		}
	} else {
		fmt.Printf("Statistical Sig:   NO (%.1f%% confidence)\n", result.Confidence)
		fmt.Println("RECOMMENDATION:    KEEP TESTING. Not enough data for a reliable result.")
	}
	fmt.Println()
}

func printFunnel(repo analyticsrepo.AnalyticsRepository, start, end time.Time) {
	stepEvents := []struct {
		name  string
		event string
	}{
		{"Visit App", "page_view"},
		{"Create Checklist", "checklist_create"},
		{"Complete Checklist", "checklist_complete"},
		{"Share Checklist", "checklist_share"},
	}

	counts := make([]int, len(stepEvents))
	for i, step := range stepEvents {
		count, err := repo.DistinctUsersForEvent(step.event, start, end)
		if err != nil {
			log.Fatalf("Failed to count funnel step: %v", err)
		}
		counts[i] = int(count)
	}
	if counts[0] == 0 {
		counts[0] = 1
	}

	fmt.Println("🔀 CONVERSION FUNNEL ANALYSIS")
	fmt.Println(strings.Repeat("-", 50))

	biggestDrop, biggestDropIndex := 0, 0
	for i, step := range stepEvents {
		prev := counts[i]
		if i > 0 {
			prev = counts[i-1]
		}
		dropOff := prev - counts[i]
		conversion := 0.0
		if prev > 0 {
			conversion = float64(counts[i]) / float64(prev) * 100
		}
		fmt.Printf("%d. %-20s %8d users  (-%d)  %.1f%%\n",
			i+1, step.name, counts[i], dropOff, conversion)
		if i > 0 && dropOff > biggestDrop {
			biggestDrop, biggestDropIndex = dropOff, i
		}
	}
	if biggestDropIndex > 0 {
		fmt.Printf("🚨 BIGGEST DROP-OFF: %s (%d users lost)\n",
			stepEvents[biggestDropIndex].name, biggestDrop)
	}
	fmt.Println()
}

func printUserMetrics(repo analyticsrepo.AnalyticsRepository, now time.Time) {
	totalUsers, err := repo.CountUsers()
	if err != nil {
		log.Fatalf("Failed to count users: %v", err)
	}

	rows, err := repo.UserActivityDays(now.AddDate(0, 0, -30), now)
	if err != nil {
		log.Fatalf("Failed to read activity: %v", err)
	}

	activity := make(map[string]map[string]bool)
	firstSeen := make(map[string]string)
	active7d := make(map[string]bool)
	weekAgo := now.AddDate(0, 0, -7).Format("2006-01-02")
	for _, row := range rows {
		if activity[row.UserID] == nil {
			activity[row.UserID] = make(map[string]bool)
		}
		activity[row.UserID][row.Day] = true
		if first, ok := firstSeen[row.UserID]; !ok || row.Day < first {
			firstSeen[row.UserID] = row.Day
		}
		if row.Day >= weekAgo {
			active7d[row.UserID] = true
		}
	}

	fmt.Println("👥 USER METRICS OVERVIEW")
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Total Users:       %d\n", totalUsers)
	fmt.Printf("Active Users:      %d (last 7 days)\n", len(active7d))
	fmt.Printf("D1 Retention:      %.1f%%\n", cohortRetention(activity, firstSeen, 1))
	fmt.Printf("D7 Retention:      %.1f%%\n", cohortRetention(activity, firstSeen, 7))
	fmt.Println()
}

// cohortRetention is the share of users who came back exactly offset days
// after their first visit.
func cohortRetention(activity map[string]map[string]bool, firstSeen map[string]string, offset int) float64 {
	cohort, retained := 0, 0
	for userID, first := range firstSeen {
		firstDay, err := time.Parse("2006-01-02", first)
		if err != nil {
			continue
		}
		cohort++
		target := firstDay.AddDate(0, 0, offset).Format("2006-01-02")
		if activity[userID][target] {
			retained++
		}
	}
	if cohort == 0 {
		return 0
	}
	return float64(retained) / float64(cohort) * 100
}

func printFeedback(repo analyticsrepo.AnalyticsRepository) {
	rows, err := repo.GetFeedback()
	if err != nil {
		log.Fatalf("Failed to read feedback: %v", err)
	}

	var scores []int
	var items []models.FeedbackItem
	sentiments := make(map[string]int)
	for _, row := range rows {
		sentiment := row.Sentiment
		if sentiment == "" {
			sentiment = "neutral"
		}
		sentiments[sentiment]++
		if row.Type == "NPS" {
			if row.Rating != nil {
				scores = append(scores, *row.Rating)
			}
			continue
		}
		items = append(items, models.FeedbackItem{
			Text:      row.Content,
			Sentiment: sentiment,
			Type:      row.Type,
		})
	}

	nps := analyticsservices.CalculateNPS(scores)
	themes := analyticsservices.ExtractThemes(items)

	fmt.Println("💬 FEEDBACK & NPS ANALYSIS")
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Total Feedback:    %d items\n", len(rows))
	fmt.Printf("NPS Score:         %d (%s)\n", nps.Score, npsGrade(nps.Score))
	fmt.Println()

	fmt.Println("Sentiment Breakdown:")
	total := len(rows)
	for sentiment, count := range sentiments {
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		fmt.Printf("  %-10s %d (%.1f%%)\n", sentiment, count, pct)
	}
	fmt.Println()

	if len(themes) > 0 {
		fmt.Println("Top Feedback Themes:")
		for i, theme := range themes {
			if i >= 5 {
				break
			}
			fmt.Printf("  %d. %q [%s] (%d mentions)\n",
				i+1, theme.Word, theme.Sentiment, theme.Count)
		}
	}
}

func npsGrade(score int) string {
	switch {
	case score >= 70:
		return "Excellent"
	case score >= 50:
		return "Great"
	case score >= 30:
		return "Good"
	case score >= 0:
		return "Fair"
	default:
		return "Poor"
	}
}
