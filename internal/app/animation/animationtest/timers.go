// Package animationtest provides a manually driven AfterFunc for scheduler tests.
package animationtest

import (
	"sync"
	"time"

	"timeslider/internal/app/animation"
)

type Timers struct {
	mu      sync.Mutex
	pending []*timer
	armed   int
}

type timer struct {
	owner   *Timers
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *timer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func New() *Timers {
	return &Timers{}
}

func (m *Timers) AfterFunc(d time.Duration, f func()) animation.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &timer{owner: m, delay: d, fn: f}
	m.pending = append(m.pending, t)
	m.armed++
	return t
}

// Pending counts timers that were neither stopped nor fired.
func (m *Timers) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (m *Timers) Armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

// LastDelay is the delay of the most recently armed timer.
func (m *Timers) LastDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return 0
	}
	return m.pending[len(m.pending)-1].delay
}

// FireNext runs the oldest live timer on the calling goroutine. It reports false when none is
// left.
func (m *Timers) FireNext() bool {
	m.mu.Lock()
	var next *timer
	for _, t := range m.pending {
		if !t.stopped && !t.fired {
			next = t
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	m.mu.Unlock()
	if next == nil {
		return false
	}
	next.fn()
	return true
}

// FireStale runs a timer callback even though it was stopped, the way a real timer that
// already went off races a Stop call.
func (m *Timers) FireStale(i int) {
	m.mu.Lock()
	t := m.pending[i]
	m.mu.Unlock()
	t.fn()
}
