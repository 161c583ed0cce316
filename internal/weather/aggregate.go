package weather

import "sort"

const (
	// MaxForecastDays caps the number of daily summaries produced.
	MaxForecastDays = 5

	// representativeHour is the hour a day's representative sample is chosen closest to.
	representativeHour = 12
)

// AggregateDaily groups forecast samples by calendar date and reduces each
// group into a DailySummary. Samples on or before currentDate are dropped.
// The result is sorted by date and holds at most MaxForecastDays entries.
//
// The representative sample is the one whose hour is closest to noon; on a
// tie the sample that appears first in samples wins.
func AggregateDaily(samples []ForecastSample, currentDate CalendarDate) []DailySummary {
	groups := make(map[CalendarDate][]ForecastSample)
	for _, s := range samples {
		if s.Date <= currentDate {
			continue
		}
		groups[s.Date] = append(groups[s.Date], s)
	}

	dates := make([]CalendarDate, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	if len(dates) > MaxForecastDays {
		dates = dates[:MaxForecastDays]
	}

	daily := make([]DailySummary, 0, len(dates))
	for _, d := range dates {
		daily = append(daily, summarizeDay(d, groups[d]))
	}
	return daily
}

// summarizeDay folds a non-empty group of samples sharing the same date.
func summarizeDay(date CalendarDate, group []ForecastSample) DailySummary {
	first := group[0]
	summary := DailySummary{
		Date:           date,
		MaxTemperature: first.Temperature.Max,
		MinTemperature: first.Temperature.Min,
		Representative: first,
	}
	bestDistance := noonDistance(first.Hour)

	for _, s := range group[1:] {
		if s.Temperature.Max > summary.MaxTemperature {
			summary.MaxTemperature = s.Temperature.Max
		}
		if s.Temperature.Min < summary.MinTemperature {
			summary.MinTemperature = s.Temperature.Min
		}
		// Strict comparison keeps the earliest sample on ties.
		if dist := noonDistance(s.Hour); dist < bestDistance {
			bestDistance = dist
			summary.Representative = s
		}
	}

	return summary
}

func noonDistance(hour int) int {
	d := hour - representativeHour
	if d < 0 {
		return -d
	}
	return d
}
