package prediction

import "time"

// Rating thresholds separating qualifying sessions from noise.
const (
	GoodRating      = 6.0
	ExcellentRating = 8.0
)

// ConditionSet groups the environmental measurements attached to a session
// or supplied as a prediction candidate. Pointer fields distinguish an
// absent measurement from a legitimate zero (flat calm, slack tide).
type ConditionSet struct {
	WaveHeight    *float64 `json:"waveHeight,omitempty"`
	WavePeriod    *float64 `json:"wavePeriod,omitempty"`
	WaveDirection string   `json:"waveDirection,omitempty"`
	WindSpeed     *float64 `json:"windSpeed,omitempty"`
	WindDirection string   `json:"windDirection,omitempty"`
	TideHeight    *float64 `json:"tideHeight,omitempty"`
}

// Session is the canonical normalized record of one rated outing.
type Session struct {
	Spot       string       `json:"spot"`
	Rating     float64      `json:"rating"`
	Date       time.Time    `json:"date"`
	Conditions ConditionSet `json:"conditions"`
}

// Qualifies reports whether the session may enter statistical aggregation:
// a rating inside [1,10] plus the two measurements every factor depends on.
func (s Session) Qualifies() bool {
	if s.Rating < 1 || s.Rating > 10 {
		return false
	}
	return s.Conditions.WaveHeight != nil && s.Conditions.WindSpeed != nil
}

// ValueRange is an observed min/max interval.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// OptimalValue is a learned preference with its spread-derived confidence.
type OptimalValue struct {
	Value      float64    `json:"value"`
	Range      ValueRange `json:"range"`
	Confidence float64    `json:"confidence"`
}

// WavePreferences captures the learned swell profile.
type WavePreferences struct {
	OptimalHeight      OptimalValue `json:"optimalHeight"`
	PreferredDirection string       `json:"preferredDirection"`
	OptimalPeriod      OptimalValue `json:"optimalPeriod"`
}

// WindPreferences captures the learned wind profile. Tolerance is the
// fraction of the optimal speed the user still rates well.
type WindPreferences struct {
	OptimalSpeed       OptimalValue `json:"optimalSpeed"`
	PreferredDirection string       `json:"preferredDirection"`
	Tolerance          float64      `json:"tolerance"`
}

// TidePreferences captures the learned tide height optimum when sessions
// carried tide measurements.
type TidePreferences struct {
	OptimalHeight OptimalValue `json:"optimalHeight"`
	Learned       bool         `json:"learned"`
}

// SpotPreference is one entry of the ranked spot list.
type SpotPreference struct {
	Name          string  `json:"name"`
	SessionsCount int     `json:"sessionsCount"`
	AverageRating float64 `json:"averageRating"`
	Score         float64 `json:"score"`
}

// TimePreferences captures modal hour-of-day and season.
type TimePreferences struct {
	PreferredHour   int    `json:"preferredHour"`
	PreferredSeason string `json:"preferredSeason"`
}

// UserProfile is the per-user derived state. It is replaced wholesale on
// every analysis run, never patched field by field.
type UserProfile struct {
	UserID            string           `json:"userId"`
	WavePreferences   WavePreferences  `json:"wavePreferences"`
	WindPreferences   WindPreferences  `json:"windPreferences"`
	TidePreferences   TidePreferences  `json:"tidePreferences"`
	SpotPreferences   []SpotPreference `json:"spotPreferences"`
	TimePreferences   TimePreferences  `json:"timePreferences"`
	ReliabilityScore  float64          `json:"reliabilityScore"`
	TotalSessions     int              `json:"totalSessions"`
	GoodSessions      int              `json:"goodSessions"`
	ExcellentSessions int              `json:"excellentSessions"`
	Insights          []string         `json:"insights"`
	LastUpdated       time.Time        `json:"lastUpdated"`
}

// Prediction is the scored outcome for one candidate condition set. It is
// built per call and never persisted.
type Prediction struct {
	UserID          string       `json:"userId"`
	Spot            string       `json:"spot"`
	PredictedScore  float64      `json:"predictedScore"`
	Confidence      float64      `json:"confidence"`
	Conditions      ConditionSet `json:"conditions"`
	Recommendations []string     `json:"recommendations"`
	Reasoning       string       `json:"reasoning"`
	GeneratedAt     time.Time    `json:"generatedAt"`
}

// FeedbackResult reports how an actual outcome compared to its prediction.
type FeedbackResult struct {
	PredictionError float64 `json:"predictionError"`
	NewConfidence   float64 `json:"newConfidence"`
}

// Float returns a pointer to v, a convenience for building condition sets.
func Float(v float64) *float64 {
	return &v
}
