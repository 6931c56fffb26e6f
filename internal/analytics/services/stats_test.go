package services

import (
	"testing"

	"github.com/architect/checklist-lab/internal/analytics/models"
	"github.com/stretchr/testify/assert"
)

func TestWithFloor_BelowFloor(t *testing.T) {
	assert.Equal(t, 100, WithFloor(3, 100))
}

func TestWithFloor_AboveFloor(t *testing.T) {
	assert.Equal(t, 250, WithFloor(250, 100))
}

func TestCalculateNPS_BalancedScores(t *testing.T) {
	result := CalculateNPS([]int{10, 10, 8, 8, 6, 6})

	assert.Equal(t, 2, result.Promoters)
	assert.Equal(t, 2, result.Passives)
	assert.Equal(t, 2, result.Detractors)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 6, result.Total)
}

func TestCalculateNPS_AllPromoters(t *testing.T) {
	result := CalculateNPS([]int{9, 10, 10})

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 3, result.Promoters)
}

func TestCalculateNPS_DistributionZeroFilled(t *testing.T) {
	result := CalculateNPS([]int{7, 7, 10})

	assert.Len(t, result.Distribution, 11)
	assert.Equal(t, 0, result.Distribution[0].Count)
	assert.Equal(t, 2, result.Distribution[7].Count)
	assert.Equal(t, 1, result.Distribution[10].Count)
}

func TestCalculateNPS_NoScores(t *testing.T) {
	result := CalculateNPS(nil)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.Total)
	assert.Len(t, result.Distribution, 11)
}

func TestBuildFunnel_ConversionRelativeToPreviousStep(t *testing.T) {
	steps := BuildFunnel(100, 25, 15, 5)

	assert.Equal(t, []int{100, 25, 15, 5},
		[]int{steps[0].Users, steps[1].Users, steps[2].Users, steps[3].Users})
	assert.Equal(t, []int{100, 25, 60, 33},
		[]int{steps[0].Conversion, steps[1].Conversion, steps[2].Conversion, steps[3].Conversion})
	assert.Equal(t, 75, steps[1].DropOff)
}

func TestBuildFunnel_FloorsOnEmptyStore(t *testing.T) {
	steps := BuildFunnel(0, 0, 0, 0)

	assert.Equal(t, 100, steps[0].Users)
	assert.Equal(t, 25, steps[1].Users)
	assert.Equal(t, 15, steps[2].Users)
	assert.Equal(t, 4, steps[3].Users)
	assert.Equal(t, 100, steps[0].Conversion)
}

func TestBuildFunnel_RealDataAboveFloorsPassesThrough(t *testing.T) {
	steps := BuildFunnel(1000, 900, 800, 700)

	assert.Equal(t, 1000, steps[0].Users)
	assert.Equal(t, 900, steps[1].Users)
	assert.Equal(t, 800, steps[2].Users)
	assert.Equal(t, 700, steps[3].Users)
}

func TestCalculatePValue_ZeroArm(t *testing.T) {
	assert.Equal(t, 1.0, CalculatePValue(0.1, 0.2, 0, 48))
	assert.Equal(t, 1.0, CalculatePValue(0.1, 0.2, 45, 0))
}

func TestCalculatePValue_ZeroPooledSE(t *testing.T) {
	// Both arms converting at 100% gives a pooled rate of 1 and a zero SE.
	assert.Equal(t, 1.0, CalculatePValue(1.0, 1.0, 45, 48))
}

func TestCalculatePValue_DecreasesWithScale(t *testing.T) {
	small := CalculatePValue(0.10, 0.20, 45, 48)
	large := CalculatePValue(0.10, 0.20, 450, 480)

	assert.Less(t, large, small)
	assert.Greater(t, small, 0.0)
	assert.LessOrEqual(t, small, 1.0)
}

func TestCompareArms_Uplift(t *testing.T) {
	result := CompareArms("Smart Hints Feature", 50, 5, 50, 10)

	assert.InDelta(t, 100.0, result.Uplift, 0.001)
	assert.InDelta(t, 0.10, result.Control.Rate, 0.001)
	assert.InDelta(t, 0.20, result.Treatment.Rate, 0.001)
}

func TestCompareArms_SignificantAtScale(t *testing.T) {
	result := CompareArms("Smart Hints Feature", 5000, 500, 5000, 1000)

	assert.True(t, result.IsSignificant)
	assert.Less(t, result.PValue, 0.05)
	assert.Greater(t, result.Confidence, 95.0)
}

func TestExtractThemes_FrequencyOrder(t *testing.T) {
	items := []models.FeedbackItem{
		{Text: "found a bug today", Sentiment: "negative", Type: "BUG_REPORT"},
		{Text: "another bug here", Sentiment: "negative", Type: "BUG_REPORT"},
		{Text: "this bug is annoying", Sentiment: "negative", Type: "BUG_REPORT"},
		{Text: "great experience overall", Sentiment: "positive", Type: "GENERAL"},
	}

	themes := ExtractThemes(items)

	assert.NotEmpty(t, themes)
	assert.Equal(t, "bug", themes[0].Word)
	assert.Equal(t, 3, themes[0].Count)
	assert.Equal(t, "negative", themes[0].Sentiment)

	bugIdx, greatIdx := -1, -1
	for i, theme := range themes {
		switch theme.Word {
		case "bug":
			bugIdx = i
		case "great":
			greatIdx = i
		}
	}
	assert.GreaterOrEqual(t, greatIdx, 0)
	assert.Less(t, bugIdx, greatIdx)
}

func TestExtractThemes_DropsStopWordsAndShortTokens(t *testing.T) {
	items := []models.FeedbackItem{
		{Text: "the app is ok for me", Sentiment: "neutral", Type: "GENERAL"},
	}

	themes := ExtractThemes(items)

	for _, theme := range themes {
		assert.NotEqual(t, "the", theme.Word)
		assert.NotEqual(t, "for", theme.Word)
		assert.NotEqual(t, "ok", theme.Word)
		assert.NotEqual(t, "is", theme.Word)
	}
}

func TestExtractThemes_TiesBreakLexicographically(t *testing.T) {
	items := []models.FeedbackItem{
		{Text: "zebra apple", Sentiment: "neutral", Type: "GENERAL"},
	}

	themes := ExtractThemes(items)

	assert.Len(t, themes, 2)
	assert.Equal(t, "apple", themes[0].Word)
	assert.Equal(t, "zebra", themes[1].Word)
}

func TestExtractThemes_SkipsNPSEntries(t *testing.T) {
	items := []models.FeedbackItem{
		{Text: "wonderful wonderful wonderful", Sentiment: "positive", Type: "NPS"},
	}

	themes := ExtractThemes(items)

	assert.Empty(t, themes)
}

func TestExtractThemes_CapsAtTen(t *testing.T) {
	items := []models.FeedbackItem{
		{Text: "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima", Sentiment: "neutral", Type: "GENERAL"},
	}

	themes := ExtractThemes(items)

	assert.Len(t, themes, 10)
}
