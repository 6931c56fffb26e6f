package models

// DAUPoint is one day's distinct active user count.
type DAUPoint struct {
	Date  string `json:"date"`
	Users int    `json:"users"`
}

// FunnelStep is one stage of the activation funnel. Conversion is relative
// to the previous step; the first step is always 100.
type FunnelStep struct {
	Step       string `json:"step"`
	Users      int    `json:"users"`
	DropOff    int    `json:"drop_off"`
	Conversion int    `json:"conversion"`
}

// RetentionPoint reports how many cohort members came back N days after
// their first visit.
type RetentionPoint struct {
	Day        int `json:"day"`
	Retained   int `json:"retained"`
	CohortSize int `json:"cohort_size"`
}

// ArmStats summarizes one experiment arm.
type ArmStats struct {
	Users       int     `json:"users"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
}

// ExperimentResult is the A/B comparison with its significance test.
type ExperimentResult struct {
	Name          string   `json:"name"`
	Control       ArmStats `json:"control"`
	Treatment     ArmStats `json:"treatment"`
	Uplift        float64  `json:"uplift"`
	PValue        float64  `json:"p_value"`
	IsSignificant bool     `json:"is_significant"`
	Confidence    float64  `json:"confidence"`
}

// NPSPoint is the response count for one score on the 0-10 scale.
type NPSPoint struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

// NPSResult is the net promoter summary plus the full distribution.
type NPSResult struct {
	Score        int        `json:"score"`
	Promoters    int        `json:"promoters"`
	Passives     int        `json:"passives"`
	Detractors   int        `json:"detractors"`
	Total        int        `json:"total"`
	Distribution []NPSPoint `json:"distribution"`
}

// Theme is a recurring feedback word with its dominant sentiment.
type Theme struct {
	Word      string `json:"word"`
	Count     int    `json:"count"`
	Sentiment string `json:"sentiment"`
}

// FeedbackItem is one qualitative feedback entry.
type FeedbackItem struct {
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
	Type      string `json:"type"`
}

// FeedbackSummary aggregates qualitative feedback.
type FeedbackSummary struct {
	TotalCount         int            `json:"total_count"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	TopThemes          []Theme        `json:"top_themes"`
	Items              []FeedbackItem `json:"items"`
}

// Bundle is the full dashboard payload.
type Bundle struct {
	DAU        []DAUPoint       `json:"dau"`
	Funnel     []FunnelStep     `json:"funnel"`
	Retention  []RetentionPoint `json:"retention"`
	Experiment ExperimentResult `json:"experiment"`
	NPS        NPSResult        `json:"nps"`
	Feedback   FeedbackSummary  `json:"feedback"`
}
