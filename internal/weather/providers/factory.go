package providers

import (
	"fmt"
	"net/http"

	"github.com/i474232898/weather-forecast/internal/weather"
)

const (
	OpenWeather = "openweather"
	WeatherAPI  = "weatherapi"
	OpenMeteo   = "openmeteo"
)

// Settings selects and configures the provider built by New.
type Settings struct {
	Name              string
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string
	MaxRetries        int
}

// New builds the provider named in s.
func New(client *http.Client, s Settings) (weather.Provider, error) {
	opts := []Option{WithMaxRetries(s.MaxRetries)}

	switch s.Name {
	case OpenWeather, "":
		return NewOpenWeatherProvider(client, s.OpenWeatherAPIKey, opts...), nil
	case WeatherAPI:
		return NewWeatherAPIProvider(client, s.WeatherAPIKey, opts...), nil
	case OpenMeteo:
		var g Geocoder
		if s.GeocoderAPIKey != "" {
			g = NewGoogleGeocoder(s.GeocoderAPIKey)
		}
		return NewOpenMeteoProvider(client, g, opts...), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", s.Name)
	}
}
