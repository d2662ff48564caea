package temporal

import "time"

type Granularity string

const (
	GranularityDay  Granularity = "day"
	GranularityYear Granularity = "year"
	GranularityDate Granularity = "date"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// Classify picks the display resolution from the domain bounds. Calendar fields are read in UTC.
func Classify(d Domain) Granularity {
	lo, hi := toTime(d.Min), toTime(d.Max)
	dayDelta := hi.Day() - lo.Day()
	yearDelta := hi.Year() - lo.Year()
	if dayDelta == 0 && d.Max-d.Min < dayMillis {
		return GranularityDay
	}
	if yearDelta == 0 {
		return GranularityYear
	}
	return GranularityDate
}

func toTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
