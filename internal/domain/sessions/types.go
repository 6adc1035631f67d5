package sessions

import (
	"time"

	"github.com/yanqian/surfai/internal/domain/prediction"
)

// StoredSession is one persisted rated outing.
type StoredSession struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"userId"`
	SpotID          string                  `json:"spotId"`
	SpotName        string                  `json:"spotName"`
	Rating          float64                 `json:"rating"`
	Date            time.Time               `json:"date"`
	DurationMinutes int                     `json:"durationMinutes,omitempty"`
	Notes           string                  `json:"notes,omitempty"`
	Conditions      prediction.ConditionSet `json:"conditions"`
	Source          string                  `json:"source"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// Coordinates is an optional quick-entry location used to resolve the spot.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// QuickEntry is the minimal payload a user submits right after a session.
// Conditions are optional; when absent and a forecaster is configured they
// are auto-completed from the marine-weather provider.
type QuickEntry struct {
	SpotName        string                    `json:"spotName"`
	Coordinates     *Coordinates              `json:"coordinates,omitempty"`
	Rating          float64                   `json:"rating"`
	Date            string                    `json:"date,omitempty"`
	DurationMinutes int                       `json:"duration,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	Conditions      *prediction.RawConditions `json:"conditions,omitempty"`
}

// Stats summarizes a user's recorded history.
type Stats struct {
	TotalSessions int            `json:"totalSessions"`
	AverageRating float64        `json:"averageRating"`
	SpotCounts    map[string]int `json:"spotCounts"`
	LastSession   time.Time      `json:"lastSession"`
}
