package prediction

import (
	"fmt"
	"sort"
	"time"

	apperrors "github.com/yanqian/surfai/pkg/errors"
)

// AnalyzeProfile derives a user's preference profile from their normalized
// session history. The working set is every qualifying session rated good
// or better; central tendencies weight each session by its rating so the
// outings the user loved pull harder without discarding moderate ones.
func AnalyzeProfile(userID string, sessions []Session, minSessions int, now time.Time) (*UserProfile, error) {
	if minSessions <= 0 {
		minSessions = 3
	}
	qualifying := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Qualifies() {
			qualifying = append(qualifying, s)
		}
	}
	if len(qualifying) < minSessions {
		return nil, apperrors.Wrap("insufficient_data", fmt.Sprintf("at least %d rated sessions are required for analysis", minSessions), nil)
	}

	var working, excellent []Session
	for _, s := range qualifying {
		if s.Rating >= GoodRating {
			working = append(working, s)
		}
		if s.Rating >= ExcellentRating {
			excellent = append(excellent, s)
		}
	}
	if len(working) == 0 {
		return nil, apperrors.Wrap("no_qualifying_sessions", "no session rated 6 or above to learn from", nil)
	}

	profile := &UserProfile{
		UserID:            userID,
		WavePreferences:   analyzeWavePreferences(working),
		WindPreferences:   analyzeWindPreferences(working),
		TidePreferences:   analyzeTidePreferences(working),
		SpotPreferences:   analyzeSpotPreferences(working, now),
		TimePreferences:   analyzeTimePreferences(working),
		ReliabilityScore:  Reliability(qualifying, now),
		TotalSessions:     len(qualifying),
		GoodSessions:      len(working),
		ExcellentSessions: len(excellent),
		LastUpdated:       now,
	}
	profile.Insights = behavioralInsights(qualifying, excellent, profile)
	return profile, nil
}

// weightedSamples extracts (value, rating) pairs for one measurement.
func weightedSamples(sessions []Session, pick func(ConditionSet) *float64, keep func(float64) bool) (values, weights []float64) {
	for _, s := range sessions {
		v := pick(s.Conditions)
		if v == nil || !keep(*v) {
			continue
		}
		values = append(values, *v)
		weights = append(weights, s.Rating)
	}
	return values, weights
}

func positive(v float64) bool    { return v > 0 }
func nonNegative(v float64) bool { return v >= 0 }
func anyValue(float64) bool      { return true }

// learnOptimal builds an OptimalValue from rating-weighted samples. The
// reported value is clamped into the observed range so rounding can never
// push it outside the data that produced it.
func learnOptimal(values, weights []float64) OptimalValue {
	if len(values) == 0 {
		return OptimalValue{Confidence: 0.5}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	opt := OptimalValue{
		Range:      ValueRange{Min: round1(lo), Max: round1(hi)},
		Confidence: confidenceFor(values),
	}
	opt.Value = clamp(round1(weightedMean(values, weights)), opt.Range.Min, opt.Range.Max)
	return opt
}

func directions(sessions []Session, pick func(ConditionSet) string) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if d := pick(s.Conditions); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func analyzeWavePreferences(working []Session) WavePreferences {
	heights, heightWeights := weightedSamples(working, func(c ConditionSet) *float64 { return c.WaveHeight }, positive)
	periods, periodWeights := weightedSamples(working, func(c ConditionSet) *float64 { return c.WavePeriod }, positive)
	return WavePreferences{
		OptimalHeight:      learnOptimal(heights, heightWeights),
		PreferredDirection: mode(directions(working, func(c ConditionSet) string { return c.WaveDirection })),
		OptimalPeriod:      learnOptimal(periods, periodWeights),
	}
}

func analyzeWindPreferences(working []Session) WindPreferences {
	speeds, speedWeights := weightedSamples(working, func(c ConditionSet) *float64 { return c.WindSpeed }, nonNegative)
	return WindPreferences{
		OptimalSpeed:       learnOptimal(speeds, speedWeights),
		PreferredDirection: mode(directions(working, func(c ConditionSet) string { return c.WindDirection })),
		Tolerance:          windTolerance(speeds),
	}
}

// windTolerance is the observed speed variability capped at half the
// optimum, so one gusty outlier cannot make every forecast acceptable.
func windTolerance(speeds []float64) float64 {
	avg := mean(speeds)
	if len(speeds) < 2 || avg <= 0 {
		return 0.3
	}
	return clamp(stdDev(speeds)/avg, 0.1, 0.5)
}

func analyzeTidePreferences(working []Session) TidePreferences {
	heights, weights := weightedSamples(working, func(c ConditionSet) *float64 { return c.TideHeight }, anyValue)
	if len(heights) == 0 {
		return TidePreferences{}
	}
	return TidePreferences{OptimalHeight: learnOptimal(heights, weights), Learned: true}
}

const recencyWindow = 365 * 24 * time.Hour

func analyzeSpotPreferences(working []Session, now time.Time) []SpotPreference {
	type spotAgg struct {
		ratings []float64
		last    time.Time
	}
	bySpot := make(map[string]*spotAgg)
	for _, s := range working {
		if s.Spot == "" {
			continue
		}
		agg, ok := bySpot[s.Spot]
		if !ok {
			agg = &spotAgg{}
			bySpot[s.Spot] = agg
		}
		agg.ratings = append(agg.ratings, s.Rating)
		if s.Date.After(agg.last) {
			agg.last = s.Date
		}
	}

	prefs := make([]SpotPreference, 0, len(bySpot))
	for name, agg := range bySpot {
		avg := mean(agg.ratings)
		frequency := float64(len(agg.ratings)) / float64(len(working))
		consistency := clamp01(1 - variance(agg.ratings)/10)
		recency := 0.0
		if !agg.last.IsZero() {
			recency = clamp01(1 - now.Sub(agg.last).Hours()/recencyWindow.Hours())
		}
		prefs = append(prefs, SpotPreference{
			Name:          name,
			SessionsCount: len(agg.ratings),
			AverageRating: round1(avg),
			Score:         round1(0.4*avg + 0.3*(frequency*10) + 0.2*(consistency*5) + 0.1*(recency*2)),
		})
	}
	sort.Slice(prefs, func(i, j int) bool {
		if prefs[i].Score == prefs[j].Score {
			return prefs[i].Name < prefs[j].Name
		}
		return prefs[i].Score > prefs[j].Score
	})
	return prefs
}

func analyzeTimePreferences(working []Session) TimePreferences {
	hours := make([]int, 0, len(working))
	seasons := make([]string, 0, len(working))
	for _, s := range working {
		if s.Date.IsZero() {
			continue
		}
		hours = append(hours, s.Date.UTC().Hour())
		seasons = append(seasons, seasonOf(s.Date.UTC()))
	}
	return TimePreferences{
		PreferredHour:   modeInt(hours),
		PreferredSeason: mode(seasons),
	}
}

func seasonOf(t time.Time) string {
	switch t.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "autumn"
	default:
		return "winter"
	}
}

func behavioralInsights(qualifying, excellent []Session, profile *UserProfile) []string {
	insights := make([]string, 0, 4)

	if len(excellent) > 0 {
		heights, _ := weightedSamples(excellent, func(c ConditionSet) *float64 { return c.WaveHeight }, positive)
		if len(heights) > 0 {
			insights = append(insights, fmt.Sprintf("You excel in %.1fm waves on average", mean(heights)))
		}
	}

	if len(qualifying) > 5 {
		sorted := make([]Session, len(qualifying))
		copy(sorted, qualifying)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
		recent := ratingsOf(sorted[len(sorted)-5:])
		earlier := ratingsOf(sorted[:len(sorted)-5])
		if delta := mean(recent) - mean(earlier); delta > 0.5 {
			insights = append(insights, fmt.Sprintf("Your level is improving: +%.1f points on recent sessions", delta))
		}
	}

	ratings := ratingsOf(qualifying)
	if avg := mean(ratings); avg > 0 {
		switch consistency := 1 - stdDev(ratings)/avg; {
		case consistency > 0.8:
			insights = append(insights, "Your performances are very consistent")
		case consistency < 0.5:
			insights = append(insights, "Your performances vary a lot with conditions")
		}
	}

	if len(profile.SpotPreferences) > 0 {
		top := profile.SpotPreferences[0]
		insights = append(insights, fmt.Sprintf("Your favorite spot is %s (%.1f/10 over %d sessions)", top.Name, top.AverageRating, top.SessionsCount))
	}
	return insights
}

func ratingsOf(sessions []Session) []float64 {
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = s.Rating
	}
	return out
}
