package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-forecast/internal/common"
	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	weatherAPITimeLayout = "2006-01-02 15:04"

	// Today plus five following days.
	weatherAPIForecastDays = weather.MaxForecastDays + 1
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
// Forecast samples are hourly and expressed in the location's own timezone.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	o := buildOptions("https://api.weatherapi.com/v1", opts)

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: o.backoff,
		},
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

func (p *WeatherAPIProvider) endpoint(path string, loc weather.Location, extra url.Values) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("weatherapi: %w", errNoAPIKey)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
	if loc.Lat != nil && loc.Lon != nil {
		values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
	} else {
		values.Set("q", loc.Query())
	}
	for k, vs := range extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}

	return fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode()), nil
}

func (p *WeatherAPIProvider) Current(ctx context.Context, loc weather.Location) (weather.CurrentConditions, error) {
	u, err := p.endpoint("current.json", loc, nil)
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload struct {
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		Current struct {
			LastUpdatedEpoch int64               `json:"last_updated_epoch"`
			TempC            float64             `json:"temp_c"`
			Condition        weatherAPICondition `json:"condition"`
		} `json:"current"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("weatherapi current: %w", err)
	}

	name := payload.Location.Name
	if name == "" {
		name = loc.City
	}

	return weather.CurrentConditions{
		LocationName: name,
		Timestamp:    time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC(),
		TemperatureC: payload.Current.TempC,
		Condition:    mapWeatherAPICondition(payload.Current.Condition),
	}, nil
}

func (p *WeatherAPIProvider) Forecast(ctx context.Context, loc weather.Location) (weather.Forecast, error) {
	extra := url.Values{}
	extra.Set("days", strconv.Itoa(weatherAPIForecastDays))

	u, err := p.endpoint("forecast.json", loc, extra)
	if err != nil {
		return weather.Forecast{}, err
	}

	var payload struct {
		Location struct {
			TzID           string `json:"tz_id"`
			LocalTimeEpoch int64  `json:"localtime_epoch"`
			LocalTime      string `json:"localtime"`
		} `json:"location"`
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch int64               `json:"time_epoch"`
					Time      string              `json:"time"`
					TempC     float64             `json:"temp_c"`
					Condition weatherAPICondition `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("weatherapi forecast: %w", err)
	}

	zone := weatherAPIZone(payload.Location.TzID, payload.Location.LocalTime, payload.Location.LocalTimeEpoch)

	var samples []weather.ForecastSample
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			ts, err := time.ParseInLocation(weatherAPITimeLayout, h.Time, zone)
			if err != nil {
				ts = time.Unix(h.TimeEpoch, 0).In(zone)
			}
			samples = append(samples, weather.NewForecastSample(
				ts,
				weather.TemperatureRange{Min: h.TempC, Max: h.TempC},
				mapWeatherAPICondition(h.Condition),
			))
		}
	}

	return weather.Forecast{Zone: zone, Samples: samples}, nil
}

// weatherAPIZone resolves the location's timezone. When tz_id cannot be
// loaded, a fixed zone is derived from the local wall time and its epoch.
func weatherAPIZone(tzID, localTime string, localEpoch int64) *time.Location {
	if tzID != "" {
		if z, err := time.LoadLocation(tzID); err == nil {
			return z
		}
	}
	if localTime == "" || localEpoch == 0 {
		return time.UTC
	}

	wall, err := time.ParseInLocation(weatherAPITimeLayout, localTime, time.UTC)
	if err != nil {
		return time.UTC
	}

	// localtime is truncated to the minute; offsets are whole quarter hours.
	offset := time.Duration(wall.Unix()-localEpoch) * time.Second
	offset = offset.Round(15 * time.Minute)

	name := tzID
	if name == "" {
		name = "UTC"
	}
	return time.FixedZone(name, int(offset.Seconds()))
}

func mapWeatherAPICondition(c weatherAPICondition) weather.Condition {
	cond := weather.Condition{
		Description: c.Text,
		Icon:        c.Icon,
	}
	if c.Code != 0 {
		cond.Code = strconv.Itoa(c.Code)
	}
	if strings.HasPrefix(c.Icon, "//") {
		cond.IconURL = "https:" + c.Icon
	} else {
		cond.IconURL = c.Icon
	}

	text := strings.ToLower(c.Text)
	switch {
	case text == "":
		cond.Kind = weather.ConditionUnknown
	case common.HasAny(text, "thunder", "storm"):
		cond.Kind = weather.ConditionStorm
	case common.HasAny(text, "snow", "sleet", "blizzard", "ice"):
		cond.Kind = weather.ConditionSnow
	case common.HasAny(text, "rain", "shower", "drizzle"):
		cond.Kind = weather.ConditionRain
	case common.HasAny(text, "mist", "fog", "haze"):
		cond.Kind = weather.ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		cond.Kind = weather.ConditionCloudy
	case common.HasAny(text, "sunny", "clear"):
		cond.Kind = weather.ConditionClear
	default:
		cond.Kind = weather.ConditionUnknown
	}
	return cond
}
