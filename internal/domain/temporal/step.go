package temporal

// Strategy is the stepping rule picked for one step from the domain and window flags.
type Strategy string

const (
	StrategyDiscreteSingle   Strategy = "discrete_single"
	StrategyContinuousSingle Strategy = "continuous_single"
	StrategyIntervalFree     Strategy = "interval_free"
	// Locked, not reversed: the left handle is pinned and the right one moves.
	StrategyIntervalLockedForward Strategy = "interval_locked_forward"
	// Locked and reversed: the right handle is pinned and the left one moves.
	StrategyIntervalLockedReversed Strategy = "interval_locked_reversed"
)

type Direction int

const (
	Forward Direction = iota
	Back
)

func (d Direction) String() string {
	if d == Back {
		return "back"
	}
	return "forward"
}

// AnimationDirection is the direction play advances in.
func AnimationDirection(reversed bool) Direction {
	if reversed {
		return Back
	}
	return Forward
}

func SelectStrategy(d Domain, w Window) Strategy {
	switch {
	case d.SingleHandle && d.Discrete():
		return StrategyDiscreteSingle
	case d.SingleHandle:
		return StrategyContinuousSingle
	case w.Locked && w.Reversed:
		return StrategyIntervalLockedReversed
	case w.Locked:
		return StrategyIntervalLockedForward
	default:
		return StrategyIntervalFree
	}
}

type stepper interface {
	forward(d Domain, values []int64, sc StepContext) ([]int64, StepContext)
	back(d Domain, values []int64, sc StepContext) ([]int64, StepContext)
}

var steppers = map[Strategy]stepper{
	StrategyDiscreteSingle:         discreteSingle{},
	StrategyContinuousSingle:       continuousSingle{},
	StrategyIntervalFree:           intervalFree{},
	StrategyIntervalLockedForward:  intervalLockedForward{},
	StrategyIntervalLockedReversed: intervalLockedReversed{},
}

// Step computes the next window values. It never fails: a window whose cardinality does not
// match the domain, or a domain with no span, comes back clamped but otherwise unchanged.
func Step(d Domain, w Window, sc StepContext, dir Direction) (Strategy, []int64, StepContext) {
	strategy := SelectStrategy(d, w)
	if len(w.Values) != d.Handles() || d.Span() == 0 {
		return strategy, Normalize(d, w.Values), sc
	}
	s := steppers[strategy]
	values := append([]int64(nil), w.Values...)
	if dir == Back {
		values, sc = s.back(d, values, sc)
	} else {
		values, sc = s.forward(d, values, sc)
	}
	return strategy, clampWindow(d, values), sc
}

func StepForward(d Domain, w Window, sc StepContext) ([]int64, StepContext) {
	_, values, next := Step(d, w, sc, Forward)
	return values, next
}

func StepBack(d Domain, w Window, sc StepContext) ([]int64, StepContext) {
	_, values, next := Step(d, w, sc, Back)
	return values, next
}

type discreteSingle struct{}

func (discreteSingle) forward(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	v := d.Snap(values[0])
	i := d.IndexOf(v)
	last := len(d.DiscreteValues) - 1
	if i == last || v == d.Max {
		return []int64{d.DiscreteValues[0]}, sc
	}
	return []int64{d.DiscreteValues[i+1]}, sc
}

func (discreteSingle) back(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	v := d.Snap(values[0])
	i := d.IndexOf(v)
	last := len(d.DiscreteValues) - 1
	if i == 0 || v == d.Min {
		return []int64{d.DiscreteValues[last]}, sc
	}
	return []int64{d.DiscreteValues[i-1]}, sc
}

type continuousSingle struct{}

func (continuousSingle) increment(d Domain) int64 {
	return atLeastOne(d.Span() / 20)
}

func (c continuousSingle) forward(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	next := values[0] + c.increment(d)
	if next > d.Max {
		next = d.Min
	}
	return []int64{next}, sc
}

func (c continuousSingle) back(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	next := values[0] - c.increment(d)
	if next < d.Min {
		next = d.Max
	}
	return []int64{next}, sc
}

// prepareInterval handles the two rules shared by every interval strategy. A window spanning
// the whole domain zooms in to a tenth of it and the step is done. Otherwise the width is
// memoized on first use so that repeated steps keep it.
func prepareInterval(d Domain, left, right int64, sc StepContext, dir Direction) ([]int64, StepContext, bool) {
	if right-left == d.Span() {
		sc.WindowWidth = atLeastOne(d.Span() / 10)
		if dir == Back {
			return []int64{right - sc.WindowWidth, right}, sc, true
		}
		return []int64{left, left + sc.WindowWidth}, sc, true
	}
	if sc.WindowWidth == 0 {
		sc.WindowWidth = atLeastOne(right - left)
	}
	return nil, sc, false
}

type intervalFree struct{}

func (intervalFree) back(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	left, right := values[0], values[1]
	if out, sc, done := prepareInterval(d, left, right, sc, Back); done {
		return out, sc
	}
	w := sc.WindowWidth
	if sc.AnchorSet && right > sc.Anchor && left == sc.Anchor {
		right = sc.Anchor
	} else {
		right -= w
	}
	if right <= d.Min {
		right = d.Max
	}
	left = right - w
	if left < d.Min {
		left = d.Min
	}
	if sc.AnchorSet && left < sc.Anchor && right > sc.Anchor {
		left = sc.Anchor
	}
	return []int64{left, right}, sc
}

func (intervalFree) forward(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	left, right := values[0], values[1]
	if out, sc, done := prepareInterval(d, left, right, sc, Forward); done {
		return out, sc
	}
	w := sc.WindowWidth
	if sc.AnchorSet && left < sc.Anchor && right == sc.Anchor {
		left = sc.Anchor
	} else {
		left += w
	}
	if left >= d.Max {
		left = d.Min
	}
	right = left + w
	if right > d.Max {
		right = d.Max
	}
	if sc.AnchorSet && right > sc.Anchor && left < sc.Anchor {
		right = sc.Anchor
	}
	return []int64{left, right}, sc
}

type intervalLockedForward struct{}

func (intervalLockedForward) back(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	left, right := values[0], values[1]
	if out, sc, done := prepareInterval(d, left, right, sc, Back); done {
		return out, sc
	}
	right -= sc.WindowWidth
	if right < left {
		right = left
	}
	// A collapsed window snaps back open to the end of the domain.
	if right == left {
		right = d.Max
	}
	return []int64{left, right}, sc
}

func (intervalLockedForward) forward(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	left, right := values[0], values[1]
	if out, sc, done := prepareInterval(d, left, right, sc, Forward); done {
		return out, sc
	}
	if right == d.Max {
		right = left
	}
	right += sc.WindowWidth
	if right > d.Max {
		right = d.Max
	}
	return []int64{left, right}, sc
}

type intervalLockedReversed struct{}

func (intervalLockedReversed) back(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	left, right := values[0], values[1]
	if out, sc, done := prepareInterval(d, left, right, sc, Back); done {
		return out, sc
	}
	if left == d.Min {
		left = right
	}
	left -= sc.WindowWidth
	if left < d.Min {
		left = d.Min
	}
	return []int64{left, right}, sc
}

func (intervalLockedReversed) forward(d Domain, values []int64, sc StepContext) ([]int64, StepContext) {
	left, right := values[0], values[1]
	if out, sc, done := prepareInterval(d, left, right, sc, Forward); done {
		return out, sc
	}
	left += sc.WindowWidth
	if left >= right {
		left = d.Min
	}
	return []int64{left, right}, sc
}

func clampWindow(d Domain, values []int64) []int64 {
	for i, v := range values {
		values[i] = d.Clamp(v)
	}
	if len(values) == 2 && values[0] > values[1] {
		values[0] = values[1]
	}
	return values
}

func atLeastOne(v int64) int64 {
	if v < 1 {
		return 1
	}
	return v
}
