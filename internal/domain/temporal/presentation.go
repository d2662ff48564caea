package temporal

import (
	"strconv"
	"strings"
)

const summaryLayout = "2006-01-02T15:04:05"

// Summary is the one-line description shown in the layer list. It is empty while filtering
// is off.
func Summary(w Window) string {
	if !w.Filtering || len(w.Values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(w.Values))
	for _, v := range w.Values {
		parts = append(parts, toTime(v).Format(summaryLayout))
	}
	return strings.Join(parts, " - ")
}

// Heading decorates the field alias with the date (day granularity) or the year (year
// granularity) of the reference value.
func Heading(alias string, g Granularity, reference int64) string {
	switch g {
	case GranularityDay:
		return alias + " (" + toTime(reference).Format("2006-01-02") + ")"
	case GranularityYear:
		return alias + " (" + strconv.Itoa(toTime(reference).Year()) + ")"
	default:
		return alias
	}
}

// LockTooltipKey names the message for the lock button: which handle the lock pins depends
// on the direction.
func LockTooltipKey(w Window) string {
	switch {
	case w.Reversed && w.Locked:
		return "timeSlider.slider.unlockRight"
	case w.Reversed:
		return "timeSlider.slider.lockRight"
	case w.Locked:
		return "timeSlider.slider.unlockLeft"
	default:
		return "timeSlider.slider.lockLeft"
	}
}

func ValueLabels(values []int64, g Granularity) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, FormatLabel(v, g))
	}
	return out
}
