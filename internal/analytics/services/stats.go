package services

import (
	"math"
	"sort"
	"strings"

	"github.com/architect/checklist-lab/internal/analytics/models"
)

// WithFloor substitutes a demo floor when the real value is below it. Keeps
// dashboards plausible on thin data; callers pass the real count straight
// through once it clears the floor.
func WithFloor(value, floor int) int {
	if value < floor {
		return floor
	}
	return value
}

// funnelStepNames in order.
var funnelStepNames = []string{
	"Visit App",
	"Create Checklist",
	"Complete Checklist",
	"Share Checklist",
}

// BuildFunnel applies the demo floors and computes per-step conversion
// relative to the previous step.
func BuildFunnel(visitors, creators, completers, sharers int) []models.FunnelStep {
	visitors = WithFloor(visitors, 100)
	creators = WithFloor(creators, visitors*25/100)
	completers = WithFloor(completers, creators*60/100)
	sharers = WithFloor(sharers, completers*30/100)

	counts := []int{visitors, creators, completers, sharers}
	steps := make([]models.FunnelStep, len(counts))
	for i, users := range counts {
		prev := users
		if i > 0 {
			prev = counts[i-1]
		}
		conversion := 0
		if prev > 0 {
			conversion = int(math.Round(float64(users) / float64(prev) * 100))
		}
		steps[i] = models.FunnelStep{
			Step:       funnelStepNames[i],
			Users:      users,
			DropOff:    prev - users,
			Conversion: conversion,
		}
	}
	return steps
}

// CalculateNPS buckets scores into promoters (9-10), passives (7-8) and
// detractors (0-6) and returns the rounded net score with the zero-filled
// 0-10 distribution.
func CalculateNPS(scores []int) models.NPSResult {
	counts := make([]int, 11)
	var promoters, passives, detractors int
	for _, score := range scores {
		if score < 0 || score > 10 {
			continue
		}
		counts[score]++
		switch {
		case score >= 9:
			promoters++
		case score >= 7:
			passives++
		default:
			detractors++
		}
	}

	total := promoters + passives + detractors
	npsScore := 0
	if total > 0 {
		npsScore = int(math.Round(float64(promoters-detractors) / float64(total) * 100))
	}

	distribution := make([]models.NPSPoint, 11)
	for i := 0; i <= 10; i++ {
		distribution[i] = models.NPSPoint{Score: i, Count: counts[i]}
	}

	return models.NPSResult{
		Score:        npsScore,
		Promoters:    promoters,
		Passives:     passives,
		Detractors:   detractors,
		Total:        total,
		Distribution: distribution,
	}
}

// CalculatePValue runs a two-proportion z-test. A zero-size arm or a zero
// pooled standard error yields p = 1 (no evidence either way).
func CalculatePValue(controlRate, treatmentRate float64, controlSize, treatmentSize int) float64 {
	if controlSize == 0 || treatmentSize == 0 {
		return 1
	}

	cn := float64(controlSize)
	tn := float64(treatmentSize)
	pooledRate := (controlRate*cn + treatmentRate*tn) / (cn + tn)
	pooledSE := math.Sqrt(pooledRate * (1 - pooledRate) * (1/cn + 1/tn))
	if pooledSE == 0 {
		return 1
	}

	zScore := math.Abs(treatmentRate-controlRate) / pooledSE
	pValue := 2 * (1 - normalCDF(zScore))
	return math.Min(1, math.Max(0, pValue))
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + erf(x/math.Sqrt2))
}

// erf is the Abramowitz and Stegun 7.1.26 approximation, accurate to about
// 1.5e-7, which is plenty for a teaching dashboard.
func erf(x float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x)

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return sign * y
}

// CompareArms assembles the experiment result from raw arm counts.
func CompareArms(name string, controlUsers, controlConversions, treatmentUsers, treatmentConversions int) models.ExperimentResult {
	control := models.ArmStats{Users: controlUsers, Conversions: controlConversions}
	if control.Users > 0 {
		control.Rate = float64(control.Conversions) / float64(control.Users)
	}

	treatment := models.ArmStats{Users: treatmentUsers, Conversions: treatmentConversions}
	if treatment.Users > 0 {
		treatment.Rate = float64(treatment.Conversions) / float64(treatment.Users)
	}

	uplift := 0.0
	if control.Rate > 0 {
		uplift = (treatment.Rate - control.Rate) / control.Rate * 100
	}

	pValue := CalculatePValue(control.Rate, treatment.Rate, control.Users, treatment.Users)
	confidence := math.Max(0, math.Min(100, (1-pValue)*100))

	return models.ExperimentResult{
		Name:          name,
		Control:       control,
		Treatment:     treatment,
		Uplift:        round2(uplift),
		PValue:        round4(pValue),
		IsSignificant: pValue < 0.05,
		Confidence:    round1(confidence),
	}
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

var punctuationReplacer = strings.NewReplacer(
	".", "", ",", "", "!", "", "?", "", ";", "", ":", "",
	"'", "", "\"", "", "(", "", ")", "", "-", " ", "/", " ",
)

// ExtractThemes counts word frequency across qualitative feedback, tagging
// each theme with its dominant sentiment. NPS entries carry no prose and
// are skipped. Frequency ties are broken lexicographically so the top-10
// cut is deterministic.
func ExtractThemes(items []models.FeedbackItem) []models.Theme {
	type wordData struct {
		count      int
		sentiments map[string]int
	}
	wordCounts := make(map[string]*wordData)

	for _, item := range items {
		if item.Type == "NPS" {
			continue
		}

		text := punctuationReplacer.Replace(strings.ToLower(item.Text))
		for _, word := range strings.Fields(text) {
			if len(word) < 3 || stopWords[word] {
				continue
			}
			data, ok := wordCounts[word]
			if !ok {
				data = &wordData{sentiments: make(map[string]int)}
				wordCounts[word] = data
			}
			data.count++
			if item.Sentiment != "" {
				data.sentiments[item.Sentiment]++
			}
		}
	}

	themes := make([]models.Theme, 0, len(wordCounts))
	for word, data := range wordCounts {
		themes = append(themes, models.Theme{
			Word:      word,
			Count:     data.count,
			Sentiment: dominantSentiment(data.sentiments),
		})
	}

	sort.Slice(themes, func(i, j int) bool {
		if themes[i].Count != themes[j].Count {
			return themes[i].Count > themes[j].Count
		}
		return themes[i].Word < themes[j].Word
	})

	if len(themes) > 10 {
		themes = themes[:10]
	}
	return themes
}

func dominantSentiment(counts map[string]int) string {
	dominant := "neutral"
	best := 0
	// Iterate sorted so equal counts resolve the same way every run.
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > best {
			best = counts[k]
			dominant = k
		}
	}
	return dominant
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
