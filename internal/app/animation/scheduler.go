// Package animation owns the per-layer one-shot timers that drive slider playback.
package animation

import (
	"sync"
	"time"
)

type State int

const (
	Idle State = iota
	Scheduled
	Cancelled
)

func (s State) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a one-shot timer. time.AfterFunc satisfies it through RealAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Token identifies one armed timer. A fired callback must present it to Claim; tokens of
// cancelled or replaced timers are rejected.
type Token uint64

type slot struct {
	timer Timer
	token Token
	state State
}

// Scheduler keeps at most one pending timer per key. Arming a key always cancels the timer it
// replaces first.
type Scheduler struct {
	mu     sync.Mutex
	after  AfterFunc
	slots  map[string]*slot
	next   Token
	closed bool
}

func NewScheduler(after AfterFunc) *Scheduler {
	if after == nil {
		after = RealAfterFunc
	}
	return &Scheduler{after: after, slots: map[string]*slot{}}
}

// Arm replaces any pending timer for key with a new one firing fn(token) after delay.
// It reports whether a previous timer was cancelled. A closed scheduler arms nothing.
func (s *Scheduler) Arm(key string, delay time.Duration, fn func(Token)) (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	sl := s.slot(key)
	replaced := s.cancelLocked(sl)
	s.next++
	token := s.next
	sl.token = token
	sl.state = Scheduled
	sl.timer = s.after(delay, func() { fn(token) })
	return token, replaced
}

// Claim marks the timer identified by token as fired. It returns false when the timer was
// cancelled or replaced after it went off, in which case the callback must do nothing.
func (s *Scheduler) Claim(key string, token Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[key]
	if !ok || sl.token != token || sl.state != Scheduled {
		return false
	}
	sl.state = Idle
	sl.timer = nil
	return true
}

// Cancel stops the pending timer for key and reports whether there was one.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[key]
	if !ok {
		return false
	}
	return s.cancelLocked(sl)
}

func (s *Scheduler) Pending(key string) bool {
	return s.State(key) == Scheduled
}

func (s *Scheduler) State(key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[key]; ok {
		return sl.state
	}
	return Idle
}

// Forget cancels and drops the slot of a removed key.
func (s *Scheduler) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[key]; ok {
		s.cancelLocked(sl)
		delete(s.slots, key)
	}
}

// Close cancels every pending timer. Later Arm calls are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.slots {
		s.cancelLocked(sl)
	}
	s.closed = true
}

func (s *Scheduler) slot(key string) *slot {
	sl, ok := s.slots[key]
	if !ok {
		sl = &slot{}
		s.slots[key] = sl
	}
	return sl
}

func (s *Scheduler) cancelLocked(sl *slot) bool {
	if sl.state != Scheduled {
		return false
	}
	if sl.timer != nil {
		sl.timer.Stop()
	}
	sl.timer = nil
	sl.state = Cancelled
	s.next++
	sl.token = s.next
	return true
}
