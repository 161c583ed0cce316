package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-forecast/internal/logger"
	"github.com/i474232898/weather-forecast/internal/weather"
)

type AppConfig struct {
	// Provider selects the weather backend: openweather, weatherapi or openmeteo.
	Provider          string `yaml:"provider" default:"openweather" validate:"oneof=openweather weatherapi openmeteo"`
	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
	WeatherAPIKey     string `yaml:"weatherapi_api_key"`
	GeocoderAPIKey    string `yaml:"geocoder_api_key"`

	HTTPTimeout time.Duration `yaml:"http_timeout" default:"10s" validate:"gt=0"`
	MaxRetries  int           `yaml:"max_retries" validate:"gte=0,lte=5"`

	// FetchInterval controls how often we refresh each configured location.
	FetchInterval time.Duration `yaml:"fetch_interval" default:"15m" validate:"gte=1m"`

	// Locations refreshed by the scheduler.
	Locations []weather.Location `yaml:"locations"`

	// In-memory store retention.
	StoreMaxHistory int           `yaml:"store_max_history" default:"96"` // max number of reports per location (0 = unlimited)
	StoreMaxAge     time.Duration `yaml:"store_max_age" default:"24h"`    // max age of reports (0 = unlimited)

	// SQLitePath enables fetch cycle history when set.
	SQLitePath string `yaml:"sqlite_path"`

	Port string `yaml:"port" default:"8080" validate:"required,numeric"`

	Log logger.Config `yaml:"log"`
}

var defaultLocation = weather.Location{City: "Guarulhos", Country: "BR"}

var validate = validator.New()

// Load reads configuration from .env, the YAML file named by CONFIG_FILE
// (default config.yaml, optional) and the environment, in that order of
// increasing precedence.
func Load() (*AppConfig, error) {
	return LoadFrom(getenvDefault("CONFIG_FILE", "config.yaml"))
}

// LoadFrom is Load with an explicit YAML path.
func LoadFrom(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &AppConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if len(cfg.Locations) == 0 {
		cfg.Locations = []weather.Location{defaultLocation}
	}
	for i, loc := range cfg.Locations {
		if strings.TrimSpace(loc.City) == "" {
			return nil, fmt.Errorf("location %d: city is required", i)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	setString(&cfg.Provider, "WEATHER_PROVIDER")
	setString(&cfg.OpenWeatherAPIKey, "OPENWEATHER_API_KEY")
	setString(&cfg.WeatherAPIKey, "WEATHERAPI_API_KEY")
	setString(&cfg.GeocoderAPIKey, "GEOCODER_API_KEY")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Port, "PORT")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Log.Output, "LOG_OUTPUT")

	for key, dst := range map[string]*time.Duration{
		"HTTP_TIMEOUT":   &cfg.HTTPTimeout,
		"FETCH_INTERVAL": &cfg.FetchInterval,
		"STORE_MAX_AGE":  &cfg.StoreMaxAge,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	for key, dst := range map[string]*int{
		"STORE_MAX_HISTORY": &cfg.StoreMaxHistory,
		"MAX_RETRIES":       &cfg.MaxRetries,
	} {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	locs, err := loadLocations()
	if err != nil {
		return err
	}
	if len(locs) > 0 {
		cfg.Locations = locs
	}
	return nil
}

// loadLocations reads WEATHER_LOCATION_CITY and WEATHER_LOCATION_COUNTRY as
// parallel comma-separated lists. The country list may be omitted.
func loadLocations() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	if city == "" {
		return nil, nil
	}
	cities := strings.Split(city, ",")

	var countries []string
	if country := os.Getenv("WEATHER_LOCATION_COUNTRY"); country != "" {
		countries = strings.Split(country, ",")
		if len(cities) != len(countries) {
			return nil, fmt.Errorf("number of cities and countries must be the same")
		}
	}

	locs := make([]weather.Location, 0, len(cities))
	for i := range cities {
		loc := weather.Location{City: strings.TrimSpace(cities[i])}
		if countries != nil {
			loc.Country = strings.TrimSpace(countries[i])
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
