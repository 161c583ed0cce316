package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// Geocoder resolves a location name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc weather.Location) (lat, lon float64, err error)
}

// GoogleGeocoder resolves locations through the Google Geocoding API.
// The underlying client keeps its API key in package state, so calls are
// serialized.
type GoogleGeocoder struct {
	apiKey string
}

var geocoderMu sync.Mutex

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, loc weather.Location) (float64, float64, error) {
	if g.apiKey == "" {
		return 0, 0, fmt.Errorf("geocoder: %w", errNoAPIKey)
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	geocoderMu.Lock()
	defer geocoderMu.Unlock()

	geocoder.ApiKey = g.apiKey
	res, err := geocoder.Geocoding(geocoder.Address{
		City:    loc.City,
		Country: loc.Country,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %s: %w", loc.Query(), err)
	}
	return res.Latitude, res.Longitude, nil
}

var errNoCoordinates = errors.New("location has no coordinates and no geocoder is configured")

// coordinates returns loc's coordinates, geocoding it when they are missing.
func coordinates(ctx context.Context, g Geocoder, loc weather.Location) (float64, float64, error) {
	if loc.Lat != nil && loc.Lon != nil {
		return *loc.Lat, *loc.Lon, nil
	}
	if g == nil {
		return 0, 0, errNoCoordinates
	}
	return g.Geocode(ctx, loc)
}

type coordinatePair struct {
	lat, lon float64
}

// cachingGeocoder memoizes successful lookups per location. Lookups for the
// same cache are serialized, so the two queries of a fetch cycle resolve a
// location once.
type cachingGeocoder struct {
	next Geocoder

	mu    sync.Mutex
	cache map[string]coordinatePair
}

func newCachingGeocoder(next Geocoder) *cachingGeocoder {
	return &cachingGeocoder{next: next, cache: make(map[string]coordinatePair)}
}

func (g *cachingGeocoder) Geocode(ctx context.Context, loc weather.Location) (float64, float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := loc.Key()
	if c, ok := g.cache[key]; ok {
		return c.lat, c.lon, nil
	}

	lat, lon, err := g.next.Geocode(ctx, loc)
	if err != nil {
		return 0, 0, err
	}
	g.cache[key] = coordinatePair{lat: lat, lon: lon}
	return lat, lon, nil
}
