package temporal

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidDomain = errors.New("invalid time domain")

// Domain is the queryable time range of one layer. Timestamps are epoch milliseconds.
type Domain struct {
	Min            int64   `json:"min"`
	Max            int64   `json:"max"`
	DiscreteValues []int64 `json:"discrete_values,omitempty"`
	SingleHandle   bool    `json:"single_handle"`
	Step           int64   `json:"step,omitempty"`
}

// NewDomain sorts and deduplicates discrete values. When discrete values are given they define
// the bounds; min and max are only used for continuous domains.
func NewDomain(min, max int64, discrete []int64, singleHandle bool, step int64) (Domain, error) {
	d := Domain{Min: min, Max: max, SingleHandle: singleHandle}
	if len(discrete) > 0 {
		values := append([]int64(nil), discrete...)
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		out := values[:1]
		for _, v := range values[1:] {
			if v != out[len(out)-1] {
				out = append(out, v)
			}
		}
		d.DiscreteValues = out
		d.Min = out[0]
		d.Max = out[len(out)-1]
		return d, nil
	}
	if min > max {
		return Domain{}, fmt.Errorf("%w: min %d after max %d", ErrInvalidDomain, min, max)
	}
	if step < 0 {
		return Domain{}, fmt.Errorf("%w: negative step %d", ErrInvalidDomain, step)
	}
	d.Step = step
	return d, nil
}

func (d Domain) Discrete() bool {
	return len(d.DiscreteValues) > 0
}

func (d Domain) Span() int64 {
	return d.Max - d.Min
}

func (d Domain) Handles() int {
	if d.SingleHandle {
		return 1
	}
	return 2
}

func (d Domain) Contains(v int64) bool {
	return v >= d.Min && v <= d.Max
}

func (d Domain) Clamp(v int64) int64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

// Snap clamps v and moves it onto the grid: the nearest discrete value, or the nearest
// multiple of Step from Min for continuous domains. Max always stays reachable.
// Ties resolve to the earlier value.
func (d Domain) Snap(v int64) int64 {
	v = d.Clamp(v)
	if !d.Discrete() {
		if d.Step <= 0 || v == d.Max {
			return v
		}
		k := (v - d.Min) / d.Step
		if (v-d.Min)%d.Step*2 > d.Step {
			k++
		}
		return d.Clamp(d.Min + k*d.Step)
	}
	i := sort.Search(len(d.DiscreteValues), func(i int) bool { return d.DiscreteValues[i] >= v })
	if i < len(d.DiscreteValues) && d.DiscreteValues[i] == v {
		return v
	}
	if i == 0 {
		return d.DiscreteValues[0]
	}
	if i == len(d.DiscreteValues) {
		return d.DiscreteValues[len(d.DiscreteValues)-1]
	}
	below, above := d.DiscreteValues[i-1], d.DiscreteValues[i]
	if v-below <= above-v {
		return below
	}
	return above
}

// IndexOf returns the position of v in the discrete values, or -1.
func (d Domain) IndexOf(v int64) int {
	i := sort.Search(len(d.DiscreteValues), func(i int) bool { return d.DiscreteValues[i] >= v })
	if i < len(d.DiscreteValues) && d.DiscreteValues[i] == v {
		return i
	}
	return -1
}
