package prediction

import (
	"fmt"
	"math"
	"time"

	apperrors "github.com/yanqian/surfai/pkg/errors"
)

// ScoringWeights distributes the six condition factors. They must sum to 1
// so the weighted factor sum stays in [0,1] before the ×10 scaling.
type ScoringWeights struct {
	WaveHeight    float64 `yaml:"waveHeight"`
	WaveDirection float64 `yaml:"waveDirection"`
	WindSpeed     float64 `yaml:"windSpeed"`
	WindDirection float64 `yaml:"windDirection"`
	WavePeriod    float64 `yaml:"wavePeriod"`
	TideHeight    float64 `yaml:"tideHeight"`
}

// DefaultScoringWeights returns the production weight distribution.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		WaveHeight:    0.25,
		WaveDirection: 0.20,
		WindSpeed:     0.20,
		WindDirection: 0.15,
		WavePeriod:    0.10,
		TideHeight:    0.10,
	}
}

func (w ScoringWeights) sum() float64 {
	return w.WaveHeight + w.WaveDirection + w.WindSpeed + w.WindDirection + w.WavePeriod + w.TideHeight
}

// Validate rejects negative factors and weight sets that do not sum to 1.
func (w ScoringWeights) Validate() error {
	for _, f := range []float64{w.WaveHeight, w.WaveDirection, w.WindSpeed, w.WindDirection, w.WavePeriod, w.TideHeight} {
		if f < 0 {
			return fmt.Errorf("weights cannot be negative")
		}
	}
	if math.Abs(w.sum()-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %.4f", w.sum())
	}
	return nil
}

// SpotCharacteristics is the slice of spot metadata the scorer consumes.
type SpotCharacteristics struct {
	Name                  string
	Latitude              float64
	Longitude             float64
	OptimalWindDirections []string
	OptimalWaveDirections []string
}

// SpotCatalog resolves a spot name to its characteristics.
type SpotCatalog interface {
	Characteristics(name string) (SpotCharacteristics, bool)
}

// neutralScore stands in for any factor the candidate set or the profile
// cannot inform, so the six weights always cover the full scale.
const neutralScore = 0.5

// waveHeightMargin is the deviation beyond which a targeted wave-size
// recommendation is added.
const waveHeightMargin = 0.5

// Score rates a candidate condition set against a learned profile on the
// 0-10 scale. Pure: identical inputs always produce identical output.
func Score(profile *UserProfile, conditions ConditionSet, spot SpotCharacteristics, weights ScoringWeights, now time.Time) (*Prediction, error) {
	if err := validateConditions(conditions); err != nil {
		return nil, err
	}
	if weights.sum() <= 0 {
		weights = DefaultScoringWeights()
	}

	waveScore := magnitudeScore(*conditions.WaveHeight,
		profile.WavePreferences.OptimalHeight.Value,
		halfRange(profile.WavePreferences.OptimalHeight.Range))

	windScore := magnitudeScore(*conditions.WindSpeed,
		profile.WindPreferences.OptimalSpeed.Value,
		profile.WindPreferences.Tolerance*profile.WindPreferences.OptimalSpeed.Value)

	waveDirScore := directionScore(conditions.WaveDirection,
		profile.WavePreferences.PreferredDirection, spot.OptimalWaveDirections)

	windDirScore := directionScore(conditions.WindDirection,
		profile.WindPreferences.PreferredDirection, spot.OptimalWindDirections)

	periodScore := neutralScore
	if conditions.WavePeriod != nil && profile.WavePreferences.OptimalPeriod.Value > 0 {
		periodScore = magnitudeScore(*conditions.WavePeriod,
			profile.WavePreferences.OptimalPeriod.Value,
			profile.WavePreferences.OptimalPeriod.Value)
	}

	tideScore := neutralScore
	if conditions.TideHeight != nil && profile.TidePreferences.Learned {
		tideScore = magnitudeScore(*conditions.TideHeight,
			profile.TidePreferences.OptimalHeight.Value,
			halfRange(profile.TidePreferences.OptimalHeight.Range))
	}

	total := waveScore*weights.WaveHeight +
		waveDirScore*weights.WaveDirection +
		windScore*weights.WindSpeed +
		windDirScore*weights.WindDirection +
		periodScore*weights.WavePeriod +
		tideScore*weights.TideHeight

	predicted := round1(clamp(total*10, 0, 10))
	return &Prediction{
		UserID:          profile.UserID,
		Spot:            spot.Name,
		PredictedScore:  predicted,
		Confidence:      PredictionConfidence(profile),
		Conditions:      conditions,
		Recommendations: recommendations(profile, conditions, predicted),
		Reasoning:       reasoning(profile, conditions, predicted),
		GeneratedAt:     now,
	}, nil
}

// PredictionConfidence blends profile reliability with data volume and
// expresses the result as a percentage.
func PredictionConfidence(profile *UserProfile) float64 {
	blended := profile.ReliabilityScore*0.8 + math.Min(1, float64(profile.TotalSessions)/50)*0.2
	return math.Round(clamp01(blended) * 100)
}

func validateConditions(conditions ConditionSet) error {
	if conditions.WaveHeight == nil {
		return apperrors.Wrap("invalid_conditions", "candidate conditions are missing waveHeight", nil)
	}
	if conditions.WindSpeed == nil {
		return apperrors.Wrap("invalid_conditions", "candidate conditions are missing windSpeed", nil)
	}
	return nil
}

func halfRange(r ValueRange) float64 {
	return (r.Max - r.Min) / 2
}

// magnitudeScore decays linearly from 1 at the optimum to 0 one tolerance
// away. A collapsed tolerance (every observation identical) only rewards an
// exact match.
func magnitudeScore(actual, optimal, tolerance float64) float64 {
	distance := math.Abs(actual - optimal)
	if tolerance <= 0 {
		if distance < 1e-9 {
			return 1
		}
		return 0
	}
	return math.Max(0, 1-distance/tolerance)
}

// directionScore rewards the user's own preference first, the spot's
// generically favorable directions second, and floors at 0.4 because a
// direction alone never guarantees a blown-out session.
func directionScore(actual, preferred string, optimal []string) float64 {
	if actual == "" {
		return neutralScore
	}
	if preferred != "" && actual == preferred {
		return 1.0
	}
	for _, d := range optimal {
		if actual == d {
			return 0.8
		}
	}
	return 0.4
}

func recommendations(profile *UserProfile, conditions ConditionSet, score float64) []string {
	recs := make([]string, 0, 2)
	switch {
	case score >= 8:
		recs = append(recs, "Exceptional conditions for you!")
	case score >= 6:
		recs = append(recs, "Good conditions, go for it!")
	case score >= 4:
		recs = append(recs, "Average conditions, fine for practice")
	default:
		recs = append(recs, "Difficult conditions, stay careful")
	}

	optimal := profile.WavePreferences.OptimalHeight.Value
	if diff := *conditions.WaveHeight - optimal; math.Abs(diff) > waveHeightMargin {
		if diff > 0 {
			recs = append(recs, "Waves bigger than your usual preference")
		} else {
			recs = append(recs, "Waves smaller than your usual preference")
		}
	}
	return recs
}

func reasoning(profile *UserProfile, conditions ConditionSet, score float64) string {
	return fmt.Sprintf(
		"Score based on your %d analyzed sessions: you usually prefer %.1fm waves with %.0f km/h wind, and the forecast (waves %.1fm, wind %.0f km/h) matches your preferences at %.0f%%.",
		profile.TotalSessions,
		profile.WavePreferences.OptimalHeight.Value,
		profile.WindPreferences.OptimalSpeed.Value,
		*conditions.WaveHeight,
		*conditions.WindSpeed,
		score/10*100,
	)
}
