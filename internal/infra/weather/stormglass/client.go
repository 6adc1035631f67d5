// Package stormglass fetches marine forecasts from the Stormglass API and
// maps them onto the canonical condition set.
package stormglass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/surfai/internal/domain/prediction"
)

const defaultBaseURL = "https://api.stormglass.io/v2"

// forecastParams selects the measurement series the scorer consumes.
const forecastParams = "waveHeight,wavePeriod,waveDirection,windSpeed,windDirection,seaLevel"

// Client fetches point forecasts from Stormglass.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(baseURL, apiKey string) *Client {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(trimmed, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Fetch retrieves the forecast hour closest to the requested time.
func (c *Client) Fetch(ctx context.Context, lat, lng float64, at time.Time) (prediction.ConditionSet, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	query.Set("lng", strconv.FormatFloat(lng, 'f', 4, 64))
	query.Set("params", forecastParams)
	query.Set("start", strconv.FormatInt(at.Add(-time.Hour).Unix(), 10))
	query.Set("end", strconv.FormatInt(at.Add(time.Hour).Unix(), 10))
	query.Set("source", "sg")
	endpoint := c.baseURL + "/weather/point?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return prediction.ConditionSet{}, fmt.Errorf("build forecast request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return prediction.ConditionSet{}, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return prediction.ConditionSet{}, errors.New("stormglass quota exhausted, retry later")
		case http.StatusUnauthorized:
			return prediction.ConditionSet{}, errors.New("stormglass api key invalid or expired")
		case http.StatusUnprocessableEntity:
			return prediction.ConditionSet{}, errors.New("stormglass rejected the coordinates")
		}
		return prediction.ConditionSet{}, fmt.Errorf("forecast request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return prediction.ConditionSet{}, fmt.Errorf("read forecast response: %w", err)
	}

	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return prediction.ConditionSet{}, fmt.Errorf("decode forecast response: %w", err)
	}
	hour, ok := nearestHour(raw.Hours, at)
	if !ok {
		return prediction.ConditionSet{}, errors.New("no forecast data for the requested time")
	}
	return hour.toConditionSet(), nil
}

type apiResponse struct {
	Hours []hourEntry `json:"hours"`
}

type hourEntry struct {
	Time          string      `json:"time"`
	WaveHeight    sourceValue `json:"waveHeight"`
	WavePeriod    sourceValue `json:"wavePeriod"`
	WaveDirection sourceValue `json:"waveDirection"`
	WindSpeed     sourceValue `json:"windSpeed"`
	WindDirection sourceValue `json:"windDirection"`
	SeaLevel      sourceValue `json:"seaLevel"`
}

// sourceValue unwraps Stormglass' per-source measurement maps.
type sourceValue struct {
	SG *float64 `json:"sg"`
}

func nearestHour(hours []hourEntry, at time.Time) (hourEntry, bool) {
	best := hourEntry{}
	bestDelta := math.Inf(1)
	found := false
	for _, h := range hours {
		ts, err := time.Parse(time.RFC3339, h.Time)
		if err != nil {
			continue
		}
		delta := math.Abs(at.Sub(ts).Hours())
		if delta < bestDelta {
			best = h
			bestDelta = delta
			found = true
		}
	}
	return best, found
}

func (h hourEntry) toConditionSet() prediction.ConditionSet {
	cs := prediction.ConditionSet{
		WaveHeight: h.WaveHeight.SG,
		WavePeriod: h.WavePeriod.SG,
		TideHeight: h.SeaLevel.SG,
	}
	// Stormglass reports wind in m/s; the profiles learn km/h.
	if h.WindSpeed.SG != nil {
		kmh := *h.WindSpeed.SG * 3.6
		cs.WindSpeed = &kmh
	}
	if h.WaveDirection.SG != nil {
		cs.WaveDirection = prediction.CompassFromDegrees(*h.WaveDirection.SG)
	}
	if h.WindDirection.SG != nil {
		cs.WindDirection = prediction.CompassFromDegrees(*h.WindDirection.SG)
	}
	return cs
}

var _ prediction.Forecaster = (*Client)(nil)
