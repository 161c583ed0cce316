package httpapi

import (
	"math"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// reportView is the rendered form of a weather.Report.
type reportView struct {
	CycleID   string      `json:"cycleId"`
	Provider  string      `json:"provider"`
	FetchedAt time.Time   `json:"fetchedAt"`
	Location  string      `json:"location"`
	Current   currentView `json:"current"`
	Daily     []dailyView `json:"daily"`
}

type currentView struct {
	ObservedAt   time.Time `json:"observedAt"`
	Temperature  int       `json:"temperature"`
	TemperatureC float64   `json:"temperatureC"`
	Description  string    `json:"description"`
	Kind         string    `json:"kind"`
	IconURL      string    `json:"iconUrl,omitempty"`
}

type dailyView struct {
	Date               string  `json:"date"`
	Weekday            string  `json:"weekday,omitempty"`
	Max                int     `json:"max"`
	Min                int     `json:"min"`
	MaxTemperatureC    float64 `json:"maxTemperatureC"`
	MinTemperatureC    float64 `json:"minTemperatureC"`
	Description        string  `json:"description"`
	Kind               string  `json:"kind"`
	IconURL            string  `json:"iconUrl,omitempty"`
	RepresentativeHour int     `json:"representativeHour"`
}

func newReportView(r weather.Report) reportView {
	v := reportView{
		CycleID:   r.CycleID,
		Provider:  r.Provider,
		FetchedAt: r.FetchedAt,
		Location:  r.Current.LocationName,
		Current: currentView{
			ObservedAt:   r.Current.Timestamp,
			Temperature:  roundCurrentTemp(r.Current.TemperatureC),
			TemperatureC: r.Current.TemperatureC,
			Description:  r.Current.Condition.Description,
			Kind:         string(r.Current.Condition.Kind),
			IconURL:      r.Current.Condition.IconURL,
		},
		Daily: make([]dailyView, 0, len(r.Daily)),
	}

	for _, d := range r.Daily {
		rep := d.Representative
		dv := dailyView{
			Date:               d.Date.String(),
			Max:                roundTemp(d.MaxTemperature),
			Min:                roundTemp(d.MinTemperature),
			MaxTemperatureC:    d.MaxTemperature,
			MinTemperatureC:    d.MinTemperature,
			Description:        rep.Condition.Description,
			Kind:               string(rep.Condition.Kind),
			IconURL:            rep.Condition.IconURL,
			RepresentativeHour: rep.Hour,
		}
		if t, err := d.Date.Time(time.UTC); err == nil {
			dv.Weekday = t.Weekday().String()
		}
		v.Daily = append(v.Daily, dv)
	}
	return v
}

// roundTemp rounds daily values half up, so -2.5 becomes -2.
func roundTemp(c float64) int {
	return int(math.Floor(c + 0.5))
}

// roundCurrentTemp rounds the current temperature half away from zero, so
// -2.5 becomes -3.
func roundCurrentTemp(c float64) int {
	return int(math.Round(c))
}
