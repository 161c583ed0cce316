package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	openMeteoTimeLayout   = "2006-01-02T15:04"
	openMeteoVariables    = "temperature_2m,weather_code"
	openMeteoForecastDays = weather.MaxForecastDays + 2
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo is queried by coordinates; locations without them are geocoded
// once and the result is reused.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder Geocoder
}

func NewOpenMeteoProvider(client *http.Client, geocoder Geocoder, opts ...Option) *OpenMeteoProvider {
	o := buildOptions("https://api.open-meteo.com/v1/forecast", opts)

	if geocoder != nil {
		geocoder = newCachingGeocoder(geocoder)
	}

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: o.baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: o.backoff,
		},
		circuit:  newCircuitBreaker("openmeteo"),
		geocoder: geocoder,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) endpoint(ctx context.Context, loc weather.Location, extra url.Values) (string, error) {
	lat, lon, err := coordinates(ctx, p.geocoder, loc)
	if err != nil {
		return "", fmt.Errorf("openmeteo: %w", err)
	}

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("timezone", "auto")
	for k, vs := range extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}

	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil
}

// openMeteoZone returns the fixed zone Open-Meteo used for its local times.
func openMeteoZone(name string, offsetSeconds int) *time.Location {
	if name == "" {
		name = "UTC"
	}
	return time.FixedZone(name, offsetSeconds)
}

func (p *OpenMeteoProvider) Current(ctx context.Context, loc weather.Location) (weather.CurrentConditions, error) {
	u, err := p.endpoint(ctx, loc, url.Values{"current": {openMeteoVariables}})
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload struct {
		Timezone         string `json:"timezone"`
		UTCOffsetSeconds int    `json:"utc_offset_seconds"`
		Current          struct {
			Time          string  `json:"time"`
			Temperature2m float64 `json:"temperature_2m"`
			WeatherCode   int     `json:"weather_code"`
		} `json:"current"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("openmeteo current: %w", err)
	}

	zone := openMeteoZone(payload.Timezone, payload.UTCOffsetSeconds)
	ts, err := time.ParseInLocation(openMeteoTimeLayout, payload.Current.Time, zone)
	if err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("openmeteo current: parse time %q: %w", payload.Current.Time, err)
	}

	return weather.CurrentConditions{
		LocationName: loc.City,
		Timestamp:    ts.UTC(),
		TemperatureC: payload.Current.Temperature2m,
		Condition:    mapOpenMeteoCondition(payload.Current.WeatherCode),
	}, nil
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, loc weather.Location) (weather.Forecast, error) {
	u, err := p.endpoint(ctx, loc, url.Values{
		"hourly":        {openMeteoVariables},
		"forecast_days": {strconv.Itoa(openMeteoForecastDays)},
	})
	if err != nil {
		return weather.Forecast{}, err
	}

	var payload struct {
		Timezone         string `json:"timezone"`
		UTCOffsetSeconds int    `json:"utc_offset_seconds"`
		Hourly           struct {
			Time          []string  `json:"time"`
			Temperature2m []float64 `json:"temperature_2m"`
			WeatherCode   []int     `json:"weather_code"`
		} `json:"hourly"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("openmeteo forecast: %w", err)
	}

	zone := openMeteoZone(payload.Timezone, payload.UTCOffsetSeconds)
	h := payload.Hourly
	n := min(len(h.Time), len(h.Temperature2m), len(h.WeatherCode))

	samples := make([]weather.ForecastSample, 0, n)
	for i := 0; i < n; i++ {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, h.Time[i], zone)
		if err != nil {
			continue
		}
		temp := h.Temperature2m[i]
		samples = append(samples, weather.NewForecastSample(
			ts,
			weather.TemperatureRange{Min: temp, Max: temp},
			mapOpenMeteoCondition(h.WeatherCode[i]),
		))
	}

	return weather.Forecast{Zone: zone, Samples: samples}, nil
}

// wmoDescriptions holds WMO weather interpretation codes used by Open-Meteo.
var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	56: "light freezing drizzle",
	57: "dense freezing drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	66: "light freezing rain",
	67: "heavy freezing rain",
	71: "slight snow fall",
	73: "moderate snow fall",
	75: "heavy snow fall",
	77: "snow grains",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	85: "slight snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with slight hail",
	99: "thunderstorm with heavy hail",
}

func mapOpenMeteoCondition(code int) weather.Condition {
	cond := weather.Condition{
		Code:        strconv.Itoa(code),
		Description: wmoDescriptions[code],
	}

	// Mapping based on Open-Meteo weather codes (simplified).
	switch {
	case code == 0:
		cond.Kind = weather.ConditionClear
	case code >= 1 && code <= 3:
		cond.Kind = weather.ConditionCloudy
	case code == 45 || code == 48:
		cond.Kind = weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		cond.Kind = weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		cond.Kind = weather.ConditionSnow
	case code >= 95:
		cond.Kind = weather.ConditionStorm
	default:
		cond.Kind = weather.ConditionUnknown
	}
	return cond
}
