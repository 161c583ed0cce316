package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/i474232898/weather-forecast/internal/weather"
)

func TestObserveCycle(t *testing.T) {
	r := New()

	r.ObserveCycle("openweathermap", weather.CycleOK, 200*time.Millisecond, 5)
	r.ObserveCycle("openweathermap", weather.CycleFailed, 50*time.Millisecond, 0)
	r.ObserveCycle("openweathermap", weather.CycleSuperseded, 10*time.Millisecond, 0)

	if got := testutil.ToFloat64(r.cycles.WithLabelValues("openweathermap", "ok")); got != 1 {
		t.Fatalf("expected 1 ok cycle, got %v", got)
	}
	if got := testutil.ToFloat64(r.superseded); got != 1 {
		t.Fatalf("expected 1 superseded cycle, got %v", got)
	}
	if got := testutil.ToFloat64(r.dailyDays.WithLabelValues("openweathermap")); got != 5 {
		t.Fatalf("expected 5 daily summaries, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.ObserveCycle("weatherapi", weather.CycleOK, time.Second, 3)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `weather_fetch_cycles_total{provider="weatherapi",status="ok"} 1`) {
		t.Fatalf("metrics output missing cycle counter:\n%s", body)
	}
}
