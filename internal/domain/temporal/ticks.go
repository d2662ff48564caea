package temporal

import "math"

type Tick struct {
	Position int64  `json:"position"`
	Label    string `json:"label"`
}

// FormatLabel renders a timestamp for ticks and handle values alike.
func FormatLabel(ts int64, g Granularity) string {
	t := toTime(ts)
	switch g {
	case GranularityDay:
		return t.Format("15:04:05")
	case GranularityYear:
		return t.Format("01-02")
	default:
		return t.Format("2006-01-02")
	}
}

// TickMarks returns labelled positions in increasing order.
func TickMarks(d Domain, g Granularity) []Tick {
	positions := tickPositions(d)
	out := make([]Tick, 0, len(positions))
	for _, p := range positions {
		out = append(out, Tick{Position: p, Label: FormatLabel(p, g)})
	}
	return out
}

func tickPositions(d Domain) []int64 {
	n := len(d.DiscreteValues)
	switch {
	case n == 0 || n < 4:
		return evenPositions(d.Min, d.Max)
	case n < 6 || d.SingleHandle:
		return append([]int64(nil), d.DiscreteValues...)
	default:
		return []int64{
			d.Min,
			d.DiscreteValues[roundHalfUp(float64(n)/4)],
			d.DiscreteValues[roundHalfUp(float64(n)/2)],
			d.DiscreteValues[roundHalfUp(3*float64(n)/4)],
			d.Max,
		}
	}
}

// evenPositions splits [min, max] into four equal intervals. These anchors are display only.
func evenPositions(min, max int64) []int64 {
	span := max - min
	out := make([]int64, 0, 5)
	for i := int64(0); i < 4; i++ {
		out = append(out, min+span*i/4)
	}
	return append(out, max)
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
