package weather

import (
	"math/rand"
	"testing"
	"time"
)

func sampleAt(t *testing.T, ts string, min, max float64, code string) ForecastSample {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", ts, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", ts, err)
	}
	return NewForecastSample(parsed, TemperatureRange{Min: min, Max: max}, Condition{Code: code})
}

func TestAggregateDailyEmpty(t *testing.T) {
	got := AggregateDaily(nil, "2024-05-01")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
}

func TestAggregateDailyOnlyCurrentDay(t *testing.T) {
	samples := []ForecastSample{
		sampleAt(t, "2024-05-01 09:00:00", 10, 12, "a"),
		sampleAt(t, "2024-05-01 12:00:00", 11, 15, "b"),
	}
	if got := AggregateDaily(samples, "2024-05-01"); len(got) != 0 {
		t.Fatalf("expected no summaries, got %d", len(got))
	}
}

func TestAggregateDailyNoonTieKeepsFirst(t *testing.T) {
	samples := []ForecastSample{
		sampleAt(t, "2024-05-02 00:00:00", 10, 11, "h0"),
		sampleAt(t, "2024-05-02 09:00:00", 12, 14, "h9"),
		sampleAt(t, "2024-05-02 15:00:00", 13, 18, "h15"),
		sampleAt(t, "2024-05-02 21:00:00", 9, 12, "h21"),
	}

	got := AggregateDaily(samples, "2024-05-01")
	if len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
	if got[0].Representative.Hour != 9 || got[0].Representative.Condition.Code != "h9" {
		t.Fatalf("expected hour 9 to win the tie, got hour %d (%s)", got[0].Representative.Hour, got[0].Representative.Condition.Code)
	}
	if got[0].MaxTemperature != 18 || got[0].MinTemperature != 9 {
		t.Fatalf("unexpected extrema max=%v min=%v", got[0].MaxTemperature, got[0].MinTemperature)
	}
}

func TestAggregateDailyNoonTieOrderDependent(t *testing.T) {
	samples := []ForecastSample{
		sampleAt(t, "2024-05-02 15:00:00", 13, 18, "h15"),
		sampleAt(t, "2024-05-02 09:00:00", 12, 14, "h9"),
	}

	got := AggregateDaily(samples, "2024-05-01")
	if got[0].Representative.Hour != 15 {
		t.Fatalf("expected first encountered sample (hour 15), got %d", got[0].Representative.Hour)
	}
}

func TestAggregateDailyExactNoonWins(t *testing.T) {
	samples := []ForecastSample{
		sampleAt(t, "2024-05-02 09:00:00", 12, 14, "h9"),
		sampleAt(t, "2024-05-02 12:00:00", 12, 14, "h12"),
		sampleAt(t, "2024-05-02 15:00:00", 13, 18, "h15"),
	}

	got := AggregateDaily(samples, "2024-05-01")
	if got[0].Representative.Hour != 12 {
		t.Fatalf("expected hour 12, got %d", got[0].Representative.Hour)
	}
}

func TestAggregateDailySixFutureDays(t *testing.T) {
	var samples []ForecastSample
	// Current day plus six following days, 3-hourly.
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour += 3 {
			ts := base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
			samples = append(samples, NewForecastSample(
				ts,
				TemperatureRange{Min: float64(day*10 + hour), Max: float64(day*10 + hour + 5)},
				Condition{},
			))
		}
	}

	got := AggregateDaily(samples, "2024-05-01")
	if len(got) != MaxForecastDays {
		t.Fatalf("expected %d summaries, got %d", MaxForecastDays, len(got))
	}

	wantDates := []CalendarDate{"2024-05-02", "2024-05-03", "2024-05-04", "2024-05-05", "2024-05-06"}
	for i, d := range got {
		if d.Date != wantDates[i] {
			t.Fatalf("summary %d: expected date %s, got %s", i, wantDates[i], d.Date)
		}
		day := i + 1
		if want := float64(day * 10); d.MinTemperature != want {
			t.Errorf("%s: expected min %v, got %v", d.Date, want, d.MinTemperature)
		}
		if want := float64(day*10 + 21 + 5); d.MaxTemperature != want {
			t.Errorf("%s: expected max %v, got %v", d.Date, want, d.MaxTemperature)
		}
		if d.Representative.Hour != 12 {
			t.Errorf("%s: expected representative hour 12, got %d", d.Date, d.Representative.Hour)
		}
	}
}

func TestAggregateDailySortsUnorderedInput(t *testing.T) {
	samples := []ForecastSample{
		sampleAt(t, "2024-05-04 12:00:00", 1, 2, ""),
		sampleAt(t, "2024-05-02 12:00:00", 1, 2, ""),
		sampleAt(t, "2024-04-30 12:00:00", 1, 2, ""),
		sampleAt(t, "2024-05-03 12:00:00", 1, 2, ""),
	}

	got := AggregateDaily(samples, "2024-05-01")
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date >= got[i].Date {
			t.Fatalf("summaries not strictly ascending: %s then %s", got[i-1].Date, got[i].Date)
		}
	}
	if got[0].Date != "2024-05-02" {
		t.Fatalf("expected first date 2024-05-02, got %s", got[0].Date)
	}
}

// TestAggregateDailyInvariants checks the output invariants over random sample sets.
func TestAggregateDailyInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC)
	current := DateOf(base.AddDate(0, 0, 2))

	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(60)
		samples := make([]ForecastSample, 0, n)
		for i := 0; i < n; i++ {
			ts := base.Add(time.Duration(rng.Intn(10*24)) * time.Hour)
			lo := rng.Float64()*40 - 10
			samples = append(samples, NewForecastSample(ts, TemperatureRange{Min: lo, Max: lo + rng.Float64()*8}, Condition{}))
		}

		groups := make(map[CalendarDate][]ForecastSample)
		for _, s := range samples {
			if s.Date > current {
				groups[s.Date] = append(groups[s.Date], s)
			}
		}

		got := AggregateDaily(samples, current)

		if len(got) > MaxForecastDays || len(got) > len(groups) {
			t.Fatalf("iter %d: too many summaries: %d (future dates %d)", iter, len(got), len(groups))
		}
		if want := min(len(groups), MaxForecastDays); len(got) != want {
			t.Fatalf("iter %d: expected %d summaries, got %d", iter, want, len(got))
		}

		for i, d := range got {
			if d.Date <= current {
				t.Fatalf("iter %d: summary for non-future date %s", iter, d.Date)
			}
			if i > 0 && got[i-1].Date >= d.Date {
				t.Fatalf("iter %d: dates not strictly ascending", iter)
			}

			group := groups[d.Date]
			wantMax, wantMin := group[0].Temperature.Max, group[0].Temperature.Min
			bestDist := noonDistance(group[0].Hour)
			for _, s := range group {
				wantMax = max(wantMax, s.Temperature.Max)
				wantMin = min(wantMin, s.Temperature.Min)
				bestDist = min(bestDist, noonDistance(s.Hour))
			}
			if d.MaxTemperature != wantMax || d.MinTemperature != wantMin {
				t.Fatalf("iter %d: %s extrema got (%v,%v) want (%v,%v)", iter, d.Date, d.MinTemperature, d.MaxTemperature, wantMin, wantMax)
			}
			if noonDistance(d.Representative.Hour) != bestDist {
				t.Fatalf("iter %d: %s representative hour %d is not closest to noon", iter, d.Date, d.Representative.Hour)
			}
			if d.Representative.Date != d.Date {
				t.Fatalf("iter %d: representative from another day", iter)
			}
		}
	}
}

func TestDateInUsesZone(t *testing.T) {
	ts := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	if got := DateIn(ts, nil); got != "2024-05-01" {
		t.Fatalf("expected UTC date 2024-05-01, got %s", got)
	}
	if got := DateIn(ts, saoPaulo); got != "2024-05-01" {
		t.Fatalf("expected BRT date 2024-05-01, got %s", got)
	}
	if got := DateIn(ts.Add(4*time.Hour), saoPaulo); got != "2024-05-02" {
		t.Fatalf("expected BRT date 2024-05-02, got %s", got)
	}
}
