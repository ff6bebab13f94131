package clock

import (
	"time"

	"github.com/samber/lo"
)

// Manual is a virtual Clock for tests and simulations. Time only moves when
// Advance or Step is called, and due callbacks run synchronously in time order.
type Manual struct {
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

// NewManual creates a manual clock reading start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type manualTimer struct {
	clock  *Manual
	at     time.Time
	seq    uint64
	every  time.Duration
	f      func()
	active bool
}

func (t *manualTimer) Stop() bool {
	if !t.active {
		return false
	}
	t.clock.drop(t)
	return true
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	return m.schedule(d, 0, f)
}

func (m *Manual) Every(d time.Duration, f func()) (stop func()) {
	if d <= 0 {
		return func() {}
	}
	t := m.schedule(d, d, f)
	return func() { t.Stop() }
}

// Post runs f immediately.
func (m *Manual) Post(f func()) {
	f()
}

func (m *Manual) schedule(d, every time.Duration, f func()) *manualTimer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{
		clock:  m,
		at:     m.now.Add(d),
		seq:    m.seq,
		every:  every,
		f:      f,
		active: true,
	}
	m.timers = append(m.timers, t)
	return t
}

func (m *Manual) drop(t *manualTimer) {
	t.active = false
	m.timers = lo.Without(m.timers, t)
}

// next returns the earliest pending timer, ties broken by scheduling order.
func (m *Manual) next() (*manualTimer, bool) {
	if len(m.timers) == 0 {
		return nil, false
	}
	return lo.MinBy(m.timers, func(a, b *manualTimer) bool {
		if a.at.Equal(b.at) {
			return a.seq < b.seq
		}
		return a.at.Before(b.at)
	}), true
}

func (m *Manual) fire(t *manualTimer) {
	m.now = t.at
	if t.every > 0 {
		m.seq++
		t.at = t.at.Add(t.every)
		t.seq = m.seq
	} else {
		m.drop(t)
	}
	t.f()
}

// Advance moves the clock forward by d, firing every timer that falls due,
// including timers armed by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	target := m.now.Add(d)
	for {
		t, ok := m.next()
		if !ok || t.at.After(target) {
			break
		}
		m.fire(t)
	}
	m.now = target
}

// Step jumps to the earliest pending timer and fires it.
// It reports false when nothing is pending.
func (m *Manual) Step() bool {
	t, ok := m.next()
	if !ok {
		return false
	}
	m.fire(t)
	return true
}

// Pending returns the number of armed timers, periodic ones included.
func (m *Manual) Pending() int {
	return len(m.timers)
}

// Until returns the time left before the earliest pending timer.
func (m *Manual) Until() (time.Duration, bool) {
	t, ok := m.next()
	if !ok {
		return 0, false
	}
	return t.at.Sub(m.now), true
}
