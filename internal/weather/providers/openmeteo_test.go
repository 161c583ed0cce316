package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/i474232898/weather-forecast/internal/weather"
)

type fixedGeocoder struct {
	lat, lon float64
	calls    int
}

func (g *fixedGeocoder) Geocode(context.Context, weather.Location) (float64, float64, error) {
	g.calls++
	return g.lat, g.lon, nil
}

func TestOpenMeteoProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "-23.46" || q.Get("longitude") != "-46.53" {
			t.Errorf("unexpected coordinates %s,%s", q.Get("latitude"), q.Get("longitude"))
		}
		w.Header().Set("Content-Type", "application/json")
		if q.Get("current") != "" {
			_, _ = w.Write([]byte(`{
				"timezone": "America/Sao_Paulo",
				"utc_offset_seconds": -10800,
				"current": {"time": "2024-05-01T22:00", "temperature_2m": 19.2, "weather_code": 61}
			}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"timezone": "America/Sao_Paulo",
			"utc_offset_seconds": -10800,
			"hourly": {
				"time": ["2024-05-01T23:00", "2024-05-02T11:00", "2024-05-02T13:00"],
				"temperature_2m": [18.0, 21.5, 23.0],
				"weather_code": [3, 0, 95]
			}
		}`))
	}))
	defer srv.Close()

	geo := &fixedGeocoder{lat: -23.46, lon: -46.53}
	p := NewOpenMeteoProvider(srv.Client(), geo, WithBaseURL(srv.URL))

	cur, err := p.Current(context.Background(), guarulhos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cur.TemperatureC != 19.2 || cur.Condition.Kind != weather.ConditionRain {
		t.Fatalf("unexpected current conditions %+v", cur)
	}

	fc, err := p.Forecast(context.Background(), guarulhos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(fc.Samples))
	}

	// 22:00 local is already 01:00 UTC on the next day; the date must be
	// derived in the source zone.
	currentDate := weather.DateIn(cur.Timestamp, fc.Zone)
	if currentDate != "2024-05-01" {
		t.Fatalf("expected local current date 2024-05-01, got %s", currentDate)
	}

	daily := weather.AggregateDaily(fc.Samples, currentDate)
	if len(daily) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(daily))
	}
	// 11:00 and 13:00 tie; the earlier sample wins.
	if daily[0].Representative.Hour != 11 || daily[0].Representative.Condition.Kind != weather.ConditionClear {
		t.Fatalf("unexpected representative %+v", daily[0].Representative)
	}
	if daily[0].MaxTemperature != 23.0 || daily[0].MinTemperature != 21.5 {
		t.Fatalf("unexpected extrema %+v", daily[0])
	}
	if geo.calls != 1 {
		t.Fatalf("expected a single geocoding lookup for both queries, got %d", geo.calls)
	}
}

type flakyGeocoder struct {
	calls int
	err   error
}

func (g *flakyGeocoder) Geocode(context.Context, weather.Location) (float64, float64, error) {
	g.calls++
	if g.err != nil {
		return 0, 0, g.err
	}
	return 1.5, 2.5, nil
}

func TestCachingGeocoder(t *testing.T) {
	inner := &flakyGeocoder{err: errors.New("quota exceeded")}
	g := newCachingGeocoder(inner)
	ctx := context.Background()

	if _, _, err := g.Geocode(ctx, guarulhos); err == nil {
		t.Fatal("expected error from inner geocoder")
	}

	inner.err = nil
	for i := 0; i < 3; i++ {
		lat, lon, err := g.Geocode(ctx, guarulhos)
		if err != nil || lat != 1.5 || lon != 2.5 {
			t.Fatalf("unexpected result %v,%v (%v)", lat, lon, err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected failures to be retried and successes cached, got %d calls", inner.calls)
	}

	if _, _, err := g.Geocode(ctx, weather.Location{City: "Paris", Country: "FR"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected a separate lookup per location, got %d calls", inner.calls)
	}
}

func TestOpenMeteoUsesExplicitCoordinates(t *testing.T) {
	lat, lon := 48.85, 2.35
	loc := weather.Location{City: "Paris", Lat: &lat, Lon: &lon}

	got, gotLon, err := coordinates(context.Background(), nil, loc)
	if err != nil || got != lat || gotLon != lon {
		t.Fatalf("unexpected coordinates %v,%v (%v)", got, gotLon, err)
	}

	if _, _, err := coordinates(context.Background(), nil, guarulhos); !errors.Is(err, errNoCoordinates) {
		t.Fatalf("expected errNoCoordinates, got %v", err)
	}
}

func TestMapOpenMeteoCondition(t *testing.T) {
	cases := map[int]weather.ConditionKind{
		0:  weather.ConditionClear,
		2:  weather.ConditionCloudy,
		45: weather.ConditionMist,
		63: weather.ConditionRain,
		75: weather.ConditionSnow,
		99: weather.ConditionStorm,
		30: weather.ConditionUnknown,
	}
	for code, want := range cases {
		if got := mapOpenMeteoCondition(code).Kind; got != want {
			t.Errorf("code %d: expected %s, got %s", code, want, got)
		}
	}
}
