package temporal

import (
	"fmt"
	"strings"
	"time"

	"github.com/senseyeio/duration"
)

const maxExpandedInstants = 100000

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseInstant reads an ISO-8601 instant. Values without a zone are taken as UTC.
func ParseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable instant %q", ErrInvalidDomain, raw)
}

// ParseOGCRange expands an OGC time dimension extent into sorted, unique epoch milliseconds.
// Each entry is an instant, a comma separated list, a start/end pair or a start/end/period
// triple expanded inclusively.
func ParseOGCRange(entries []string) ([]int64, error) {
	var out []int64
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			values, err := parseExtent(part)
			if err != nil {
				return nil, err
			}
			out = append(out, values...)
			if len(out) > maxExpandedInstants {
				return nil, fmt.Errorf("%w: range expands past %d instants", ErrInvalidDomain, maxExpandedInstants)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty range", ErrInvalidDomain)
	}
	d, err := NewDomain(0, 0, out, false, 0)
	if err != nil {
		return nil, err
	}
	return d.DiscreteValues, nil
}

func parseExtent(part string) ([]int64, error) {
	fields := strings.Split(part, "/")
	switch len(fields) {
	case 1:
		t, err := ParseInstant(fields[0])
		if err != nil {
			return nil, err
		}
		return []int64{Millis(t)}, nil
	case 2, 3:
		start, err := ParseInstant(fields[0])
		if err != nil {
			return nil, err
		}
		end, err := ParseInstant(fields[1])
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, fmt.Errorf("%w: extent %q ends before it starts", ErrInvalidDomain, part)
		}
		if len(fields) == 2 {
			return []int64{Millis(start), Millis(end)}, nil
		}
		period, err := ParsePeriod(fields[2])
		if err != nil {
			return nil, err
		}
		return period.expand(start, end)
	default:
		return nil, fmt.Errorf("%w: malformed extent %q", ErrInvalidDomain, part)
	}
}

// Period is an ISO-8601 duration applied with calendar semantics.
type Period struct {
	duration.Duration
}

// ParsePeriod reads PnYnMnWnDTnHnMnS with whole-number components.
func ParsePeriod(raw string) (Period, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if strings.HasSuffix(raw, "T") {
		return Period{}, fmt.Errorf("%w: unparsable period %q", ErrInvalidDomain, raw)
	}
	d, err := duration.ParseISO8601(raw)
	if err != nil {
		return Period{}, fmt.Errorf("%w: period %q: %v", ErrInvalidDomain, raw, err)
	}
	if d == (duration.Duration{}) {
		return Period{}, fmt.Errorf("%w: zero period %q", ErrInvalidDomain, raw)
	}
	return Period{Duration: d}, nil
}

// at is start shifted by i whole periods.
func (p Period) at(start time.Time, i int) time.Time {
	scaled := duration.Duration{
		Y:  i * p.Y,
		M:  i * p.M,
		W:  i * p.W,
		D:  i * p.D,
		TH: i * p.TH,
		TM: i * p.TM,
		TS: i * p.TS,
	}
	return scaled.Shift(start)
}

// expand steps from start by whole periods. Each instant is computed from start so month
// lengths do not accumulate drift.
func (p Period) expand(start, end time.Time) ([]int64, error) {
	var out []int64
	for i := 0; ; i++ {
		t := p.at(start, i)
		if t.After(end) {
			return out, nil
		}
		if i >= maxExpandedInstants {
			return nil, fmt.Errorf("%w: period expands past %d instants", ErrInvalidDomain, maxExpandedInstants)
		}
		out = append(out, Millis(t))
	}
}
