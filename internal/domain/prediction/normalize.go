package prediction

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Direction accepts either a compass category ("NW") or numeric degrees and
// normalizes both to an upper-case compass point.
type Direction string

// UnmarshalJSON coerces strings and numbers into a compass category.
func (d *Direction) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*d = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ToUpper(strings.TrimSpace(s))
		if deg, err := strconv.ParseFloat(s, 64); err == nil {
			*d = Direction(CompassFromDegrees(deg))
			return nil
		}
		*d = Direction(s)
		return nil
	}
	var deg float64
	if err := json.Unmarshal(data, &deg); err != nil {
		return err
	}
	*d = Direction(CompassFromDegrees(deg))
	return nil
}

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassFromDegrees maps meteorological degrees onto the 8-point rose.
func CompassFromDegrees(deg float64) string {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int(math.Round(deg/45)) % len(compassPoints)
	return compassPoints[idx]
}

// RawConditions mirrors every measurement key the legacy payloads used.
// tideLevel and tideHeight are synonyms; tideLevel wins only when
// tideHeight is absent.
type RawConditions struct {
	WaveHeight    *float64  `json:"waveHeight"`
	WavePeriod    *float64  `json:"wavePeriod"`
	WaveDirection Direction `json:"waveDirection"`
	WindSpeed     *float64  `json:"windSpeed"`
	WindDirection Direction `json:"windDirection"`
	TideHeight    *float64  `json:"tideHeight"`
	TideLevel     *float64  `json:"tideLevel"`
}

// ToConditionSet collapses the raw measurement keys onto the canonical set.
func (rc *RawConditions) ToConditionSet() ConditionSet {
	if rc == nil {
		return ConditionSet{}
	}
	cs := ConditionSet{
		WaveHeight:    rc.WaveHeight,
		WavePeriod:    rc.WavePeriod,
		WaveDirection: string(rc.WaveDirection),
		WindSpeed:     rc.WindSpeed,
		WindDirection: string(rc.WindDirection),
		TideHeight:    rc.TideHeight,
	}
	if cs.TideHeight == nil {
		cs.TideHeight = rc.TideLevel
	}
	return cs
}

func (rc *RawConditions) empty() bool {
	if rc == nil {
		return true
	}
	return rc.WaveHeight == nil && rc.WavePeriod == nil && rc.WaveDirection == "" &&
		rc.WindSpeed == nil && rc.WindDirection == "" && rc.TideHeight == nil && rc.TideLevel == nil
}

type rawEssential struct {
	Spot   string   `json:"spot"`
	Date   string   `json:"date"`
	Rating *float64 `json:"rating"`
}

type rawAutoCompleted struct {
	Weather *RawConditions `json:"weather"`
}

// RawSession accepts the three historical session payload shapes: flat
// records with a nested conditions object, records with measurements
// inlined at the top level, and the essential/autoCompleted grouping.
type RawSession struct {
	RawConditions

	Spot          string            `json:"spot"`
	SpotName      string            `json:"spotName"`
	Rating        *float64          `json:"rating"`
	Date          string            `json:"date"`
	Timestamp     string            `json:"timestamp"`
	Conditions    *RawConditions    `json:"conditions"`
	Essential     *rawEssential     `json:"essential"`
	AutoCompleted *rawAutoCompleted `json:"autoCompleted"`
}

// Normalize maps heterogeneous raw records onto the canonical Session
// shape. It never fails: a record nothing maps onto comes through with
// empty conditions and is filtered out by the analyzer's qualifying check.
func Normalize(raw []RawSession) []Session {
	sessions := make([]Session, 0, len(raw))
	for _, r := range raw {
		sessions = append(sessions, r.normalize())
	}
	return sessions
}

func (r RawSession) normalize() Session {
	s := Session{
		Spot: strings.ToLower(strings.TrimSpace(firstOf(r.Spot, r.SpotName))),
		Date: parseSessionTime(firstOf(r.Date, r.Timestamp)),
	}
	rating := r.Rating
	if r.Essential != nil {
		if s.Spot == "" {
			s.Spot = strings.ToLower(strings.TrimSpace(r.Essential.Spot))
		}
		if s.Date.IsZero() {
			s.Date = parseSessionTime(r.Essential.Date)
		}
		if rating == nil {
			rating = r.Essential.Rating
		}
	}
	if rating != nil {
		s.Rating = *rating
	}

	switch {
	case !r.Conditions.empty():
		s.Conditions = r.Conditions.ToConditionSet()
	case r.AutoCompleted != nil && !r.AutoCompleted.Weather.empty():
		s.Conditions = r.AutoCompleted.Weather.ToConditionSet()
	case !r.RawConditions.empty():
		inline := r.RawConditions
		s.Conditions = inline.ToConditionSet()
	}
	return s
}

func firstOf(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var sessionTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseSessionTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range sessionTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
