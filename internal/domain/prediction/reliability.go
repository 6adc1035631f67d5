package prediction

import "time"

// Reliability scores how trustworthy an analysis over these sessions is.
// Four independently clamped factors are averaged: volume (caps at 20
// sessions), quality (share rated good or better), spot diversity (caps at
// 10 distinct spots) and recency (decays to zero over a year of
// inactivity). Averaging keeps each factor's ceiling at 0.25 of the total,
// so repeating one good spot cannot buy full reliability.
func Reliability(sessions []Session, now time.Time) float64 {
	if len(sessions) == 0 {
		return 0
	}

	good := 0
	spots := make(map[string]struct{}, len(sessions))
	var latest time.Time
	for _, s := range sessions {
		if s.Rating >= GoodRating {
			good++
		}
		if s.Spot != "" {
			spots[s.Spot] = struct{}{}
		}
		if s.Date.After(latest) {
			latest = s.Date
		}
	}

	recency := 0.0
	if !latest.IsZero() {
		recency = clamp01(1 - now.Sub(latest).Hours()/recencyWindow.Hours())
	}

	factors := []float64{
		clamp01(float64(len(sessions)) / 20),
		clamp01(float64(good) / float64(len(sessions))),
		clamp01(float64(len(spots)) / 10),
		recency,
	}
	sum := 0.0
	for _, f := range factors {
		sum += f
	}
	return clamp(sum/float64(len(factors)), 0, 1)
}
