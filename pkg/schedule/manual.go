package schedule

import (
	"sort"
	"time"
)

// Manual is a Scheduler driven by an explicit virtual clock.
// It is not safe for concurrent use; tests drive it from one goroutine.
type Manual struct {
	now      time.Time
	seq      uint64
	timers   []*manualTimer
	posted   []func()
	draining bool
}

// NewManual creates a scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	return m.now
}

// Post runs fn immediately, unless a callback is already running, in which
// case fn runs as soon as that callback returns.
func (m *Manual) Post(fn func()) {
	m.posted = append(m.posted, fn)
	m.drain()
}

func (m *Manual) drain() {
	if m.draining {
		return
	}
	m.draining = true
	defer func() { m.draining = false }()

	for len(m.posted) > 0 {
		fn := m.posted[0]
		m.posted = m.posted[1:]
		fn()
	}
}

// AfterFunc schedules fn at Now()+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	return m.add(d, 0, fn)
}

// Every schedules fn at every multiple of d from Now().
func (m *Manual) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) *manualTimer {
	m.seq++
	t := &manualTimer{
		owner:  m,
		at:     m.now.Add(d),
		seq:    m.seq,
		period: period,
		fn:     fn,
	}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that falls due,
// in time order, with the clock set to each timer's due time.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		t := m.next(target)
		if t == nil {
			break
		}
		m.now = t.at
		if t.period > 0 {
			m.seq++
			t.at = t.at.Add(t.period)
			t.seq = m.seq
		} else {
			m.remove(t)
		}
		m.Post(t.fn)
	}
	m.now = target
}

func (m *Manual) next(limit time.Time) *manualTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	if m.timers[0].at.After(limit) {
		return nil
	}
	return m.timers[0]
}

func (m *Manual) remove(t *manualTimer) {
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// Pending returns the number of armed timers.
func (m *Manual) Pending() int {
	return len(m.timers)
}

type manualTimer struct {
	owner  *Manual
	at     time.Time
	seq    uint64
	period time.Duration
	fn     func()
}

func (t *manualTimer) Stop() {
	t.owner.remove(t)
}
