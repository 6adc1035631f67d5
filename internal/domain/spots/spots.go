// Package spots holds the spot-characteristics table consumed by the
// prediction scorer and the quick-entry geolocation helpers.
package spots

import (
	"math"
	"sort"
	"strings"

	"github.com/yanqian/surfai/internal/domain/prediction"
)

// Spot describes one surf break and the directions that generically work
// for it.
type Spot struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Region                string   `json:"region"`
	Latitude              float64  `json:"lat"`
	Longitude             float64  `json:"lng"`
	Type                  string   `json:"type"`
	Difficulty            string   `json:"difficulty"`
	Popularity            int      `json:"popularity"`
	OptimalWindDirections []string `json:"optimalWindDirections"`
	OptimalWaveDirections []string `json:"optimalWaveDirections"`
}

// NearbySpot pairs a spot with its distance from a query point.
type NearbySpot struct {
	Spot
	DistanceKm float64 `json:"distanceKm"`
}

// Catalog is an in-memory spot table keyed by lower-cased id and name.
type Catalog struct {
	byKey []Spot
}

// NewCatalog builds a catalog over the given spots.
func NewCatalog(entries []Spot) *Catalog {
	return &Catalog{byKey: entries}
}

// NewFrenchAtlanticCatalog returns the built-in Nouvelle-Aquitaine table.
func NewFrenchAtlanticCatalog() *Catalog {
	// Atlantic coast breaks face west; offshore wind comes from the east.
	offshore := []string{"NE", "E", "SE"}
	swell := []string{"NW", "W", "SW"}
	return NewCatalog([]Spot{
		{ID: "biarritz", Name: "Biarritz - Grande Plage", Region: "Nouvelle-Aquitaine", Latitude: 43.4832, Longitude: -1.5586, Type: "beach_break", Difficulty: "beginner", Popularity: 9, OptimalWindDirections: offshore, OptimalWaveDirections: swell},
		{ID: "hossegor", Name: "Hossegor - La Nord", Region: "Nouvelle-Aquitaine", Latitude: 43.6615, Longitude: -1.4057, Type: "beach_break", Difficulty: "advanced", Popularity: 10, OptimalWindDirections: offshore, OptimalWaveDirections: swell},
		{ID: "anglet", Name: "Anglet - Les Cavaliers", Region: "Nouvelle-Aquitaine", Latitude: 43.4951, Longitude: -1.5240, Type: "beach_break", Difficulty: "intermediate", Popularity: 8, OptimalWindDirections: offshore, OptimalWaveDirections: swell},
		{ID: "hendaye", Name: "Hendaye", Region: "Nouvelle-Aquitaine", Latitude: 43.3739, Longitude: -1.7739, Type: "beach_break", Difficulty: "beginner", Popularity: 7, OptimalWindDirections: offshore, OptimalWaveDirections: swell},
		{ID: "lacanau", Name: "Lacanau Océan", Region: "Nouvelle-Aquitaine", Latitude: 45.0008, Longitude: -1.2024, Type: "beach_break", Difficulty: "intermediate", Popularity: 8, OptimalWindDirections: offshore, OptimalWaveDirections: swell},
	})
}

// Get resolves a spot by id or name, case-insensitively.
func (c *Catalog) Get(name string) (Spot, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Spot{}, false
	}
	for _, s := range c.byKey {
		if strings.ToLower(s.ID) == needle || strings.ToLower(s.Name) == needle {
			return s, true
		}
	}
	// Tolerate shorthand like "hossegor" against "Hossegor - La Nord".
	for _, s := range c.byKey {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			return s, true
		}
	}
	return Spot{}, false
}

// List returns every spot ordered by popularity.
func (c *Catalog) List() []Spot {
	out := make([]Spot, len(c.byKey))
	copy(out, c.byKey)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Popularity == out[j].Popularity {
			return out[i].Name < out[j].Name
		}
		return out[i].Popularity > out[j].Popularity
	})
	return out
}

// Nearest finds the closest spot within maxKm, if any.
func (c *Catalog) Nearest(lat, lng, maxKm float64) (NearbySpot, bool) {
	best := NearbySpot{DistanceKm: math.Inf(1)}
	found := false
	for _, s := range c.byKey {
		d := haversineKm(lat, lng, s.Latitude, s.Longitude)
		if d < best.DistanceKm && d <= maxKm {
			best = NearbySpot{Spot: s, DistanceKm: math.Round(d*100) / 100}
			found = true
		}
	}
	if !found {
		return NearbySpot{}, false
	}
	return best, true
}

// Nearby lists every spot within maxKm, closest first.
func (c *Catalog) Nearby(lat, lng, maxKm float64) []NearbySpot {
	out := make([]NearbySpot, 0, len(c.byKey))
	for _, s := range c.byKey {
		d := haversineKm(lat, lng, s.Latitude, s.Longitude)
		if d <= maxKm {
			out = append(out, NearbySpot{Spot: s, DistanceKm: math.Round(d*100) / 100})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// Characteristics implements prediction.SpotCatalog.
func (c *Catalog) Characteristics(name string) (prediction.SpotCharacteristics, bool) {
	spot, ok := c.Get(name)
	if !ok {
		return prediction.SpotCharacteristics{}, false
	}
	return prediction.SpotCharacteristics{
		Name:                  spot.Name,
		Latitude:              spot.Latitude,
		Longitude:             spot.Longitude,
		OptimalWindDirections: spot.OptimalWindDirections,
		OptimalWaveDirections: spot.OptimalWaveDirections,
	}, true
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

var _ prediction.SpotCatalog = (*Catalog)(nil)
