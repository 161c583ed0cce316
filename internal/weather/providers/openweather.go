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
	openWeatherIconURL = "https://openweathermap.org/img/wn/%s@2x.png"

	// dt_txt is reported in UTC.
	openWeatherTimeLayout = "2006-01-02 15:04:05"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap
// using the current weather and 5 day / 3 hour forecast endpoints.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	o := buildOptions("https://api.openweathermap.org/data/2.5", opts)

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: o.backoff,
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (p *OpenWeatherProvider) endpoint(path string, loc weather.Location) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("openweather: %w", errNoAPIKey)
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("q", loc.Query())

	return fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode()), nil
}

func (p *OpenWeatherProvider) Current(ctx context.Context, loc weather.Location) (weather.CurrentConditions, error) {
	u, err := p.endpoint("weather", loc)
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload struct {
		Name string `json:"name"`
		Dt   int64  `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []openWeatherCondition `json:"weather"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("openweather current: %w", err)
	}

	name := payload.Name
	if name == "" {
		name = loc.City
	}

	return weather.CurrentConditions{
		LocationName: name,
		Timestamp:    time.Unix(payload.Dt, 0).UTC(),
		TemperatureC: payload.Main.Temp,
		Condition:    mapOpenWeatherCondition(payload.Weather),
	}, nil
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, loc weather.Location) (weather.Forecast, error) {
	u, err := p.endpoint("forecast", loc)
	if err != nil {
		return weather.Forecast{}, err
	}

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				TempMin float64 `json:"temp_min"`
				TempMax float64 `json:"temp_max"`
			} `json:"main"`
			Weather []openWeatherCondition `json:"weather"`
			DtTxt   string                 `json:"dt_txt"`
		} `json:"list"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("openweather forecast: %w", err)
	}

	samples := make([]weather.ForecastSample, 0, len(payload.List))
	for _, item := range payload.List {
		ts, err := time.ParseInLocation(openWeatherTimeLayout, item.DtTxt, time.UTC)
		if err != nil {
			ts = time.Unix(item.Dt, 0).UTC()
		}
		samples = append(samples, weather.NewForecastSample(
			ts,
			weather.TemperatureRange{Min: item.Main.TempMin, Max: item.Main.TempMax},
			mapOpenWeatherCondition(item.Weather),
		))
	}

	return weather.Forecast{Zone: time.UTC, Samples: samples}, nil
}

func mapOpenWeatherCondition(items []openWeatherCondition) weather.Condition {
	if len(items) == 0 {
		return weather.Condition{Kind: weather.ConditionUnknown}
	}
	item := items[0]

	cond := weather.Condition{
		Code:        strconv.Itoa(item.ID),
		Description: item.Description,
		Icon:        item.Icon,
	}
	if item.Icon != "" {
		cond.IconURL = fmt.Sprintf(openWeatherIconURL, item.Icon)
	}

	switch item.Main {
	case "Clear":
		cond.Kind = weather.ConditionClear
	case "Clouds":
		cond.Kind = weather.ConditionCloudy
	case "Rain", "Drizzle":
		cond.Kind = weather.ConditionRain
	case "Snow":
		cond.Kind = weather.ConditionSnow
	case "Thunderstorm":
		cond.Kind = weather.ConditionStorm
	case "Mist", "Fog", "Haze", "Smoke", "Dust":
		cond.Kind = weather.ConditionMist
	default:
		cond.Kind = weather.ConditionUnknown
	}
	return cond
}
