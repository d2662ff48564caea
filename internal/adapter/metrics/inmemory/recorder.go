package inmemory

import (
	"sync"

	"timeslider/internal/domain/temporal"
)

type Snapshot struct {
	StepTotal       uint64            `json:"step_total"`
	StepsByStrategy map[string]uint64 `json:"steps_by_strategy"`
	TimersArmed     uint64            `json:"timers_armed"`
	TimersCancelled uint64            `json:"timers_cancelled"`
	PublishFailures uint64            `json:"publish_failures"`
}

type Recorder struct {
	mu         sync.Mutex
	byStrategy map[string]uint64
	armed      uint64
	cancelled  uint64
	failures   uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byStrategy: map[string]uint64{},
	}
}

func (r *Recorder) RecordStep(strategy temporal.Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byStrategy[string(strategy)]++
}

func (r *Recorder) RecordTimerArmed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed++
}

func (r *Recorder) RecordTimerCancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled++
}

func (r *Recorder) RecordPublishFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		TimersArmed:     r.armed,
		TimersCancelled: r.cancelled,
		PublishFailures: r.failures,
		StepsByStrategy: make(map[string]uint64, len(r.byStrategy)),
	}
	for k, v := range r.byStrategy {
		out.StepsByStrategy[k] = v
		out.StepTotal += v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
