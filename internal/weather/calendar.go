package weather

import "time"

const dateLayout = "2006-01-02"

// CalendarDate is a YYYY-MM-DD date in the timezone of the upstream source.
// Zero-padded formatting makes lexical order match chronological order.
type CalendarDate string

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate(t.Format(dateLayout))
}

// DateIn returns the calendar date of t in zone. A nil zone means UTC.
func DateIn(t time.Time, zone *time.Location) CalendarDate {
	if zone == nil {
		zone = time.UTC
	}
	return DateOf(t.In(zone))
}

// Time parses the date as midnight in zone.
func (d CalendarDate) Time(zone *time.Location) (time.Time, error) {
	if zone == nil {
		zone = time.UTC
	}
	return time.ParseInLocation(dateLayout, string(d), zone)
}

func (d CalendarDate) String() string {
	return string(d)
}
