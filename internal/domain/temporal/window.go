package temporal

import "time"

const DefaultDelay = 1000 * time.Millisecond

// DelayChoices are the delays offered to the user.
var DelayChoices = []time.Duration{
	500 * time.Millisecond,
	750 * time.Millisecond,
	1000 * time.Millisecond,
	1500 * time.Millisecond,
	2000 * time.Millisecond,
	3000 * time.Millisecond,
	5000 * time.Millisecond,
}

type Window struct {
	Values    []int64       `json:"values"`
	Locked    bool          `json:"locked"`
	Reversed  bool          `json:"reversed"`
	Delay     time.Duration `json:"-"`
	Filtering bool          `json:"filtering"`
	Playing   bool          `json:"playing"`
}

func (w Window) Clone() Window {
	w.Values = append([]int64(nil), w.Values...)
	return w
}

// LeadingValue is the handle an action anchors on: the right handle when reversed.
func (w Window) LeadingValue() int64 {
	if w.Reversed && len(w.Values) > 1 {
		return w.Values[1]
	}
	return w.Values[0]
}

// StepContext survives between steps of one animation or button run.
// A zero WindowWidth means the width has not been memoized yet.
type StepContext struct {
	WindowWidth int64
	Anchor      int64
	AnchorSet   bool
}

func (sc StepContext) WithAnchor(v int64) StepContext {
	sc.Anchor = v
	sc.AnchorSet = true
	return sc
}

// Normalize recovers out-of-domain values: handles are snapped into the domain and ordered.
// The cardinality is not touched.
func Normalize(d Domain, values []int64) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = d.Snap(v)
	}
	if len(out) == 2 && out[0] > out[1] {
		out[0], out[1] = out[1], out[0]
	}
	return out
}
