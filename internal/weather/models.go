package weather

import (
	"time"
)

// ConditionKind represents a normalized high-level weather condition.
type ConditionKind string

const (
	ConditionUnknown ConditionKind = "unknown"
	ConditionClear   ConditionKind = "clear"
	ConditionCloudy  ConditionKind = "cloudy"
	ConditionRain    ConditionKind = "rain"
	ConditionSnow    ConditionKind = "snow"
	ConditionStorm   ConditionKind = "storm"
	ConditionMist    ConditionKind = "mist"
)

// Condition describes the weather as reported by a provider.
type Condition struct {
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Icon        string        `json:"icon,omitempty"`
	IconURL     string        `json:"iconUrl,omitempty"`
	Kind        ConditionKind `json:"kind"`
}

// Location represents a logical place for which we fetch weather.
// City must be provided; Lat/Lon are optional and only used by
// coordinate-based providers.
type Location struct {
	City    string   `json:"city"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Query returns the free-text search term sent to name-based providers.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

// TemperatureRange holds the bounds reported for a forecast sample in °C.
type TemperatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ForecastSample is one timestamped forecast entry (typically 3-hourly).
type ForecastSample struct {
	Timestamp   time.Time        `json:"timestamp"`
	Date        CalendarDate     `json:"date"`
	Hour        int              `json:"hour"`
	Temperature TemperatureRange `json:"temperature"`
	Condition   Condition        `json:"condition"`
}

// NewForecastSample builds a sample from an instant already expressed in the
// source timezone. Date and Hour are derived from ts as given.
func NewForecastSample(ts time.Time, temp TemperatureRange, cond Condition) ForecastSample {
	return ForecastSample{
		Timestamp:   ts,
		Date:        DateOf(ts),
		Hour:        ts.Hour(),
		Temperature: temp,
		Condition:   cond,
	}
}

// CurrentConditions is the observation returned by the current-conditions query.
type CurrentConditions struct {
	LocationName string    `json:"locationName"`
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC float64   `json:"temperatureC"`
	Condition    Condition `json:"condition"`
}

// Forecast is the ordered sample sequence returned by the forecast query.
// Zone is the timezone the samples' dates and hours are expressed in.
type Forecast struct {
	Zone    *time.Location
	Samples []ForecastSample
}

// DailySummary is the per-day reduction of a group of forecast samples.
type DailySummary struct {
	Date           CalendarDate   `json:"date"`
	MaxTemperature float64        `json:"maxTemperature"`
	MinTemperature float64        `json:"minTemperature"`
	Representative ForecastSample `json:"representative"`
}

// Report is the result of one successful fetch cycle.
type Report struct {
	CycleID   string            `json:"cycleId"`
	Location  Location          `json:"location"`
	Provider  string            `json:"provider"`
	FetchedAt time.Time         `json:"fetchedAt"` // always UTC
	Current   CurrentConditions `json:"current"`
	Daily     []DailySummary    `json:"daily"`
}
