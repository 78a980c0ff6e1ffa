package testhelpers

import (
	"sort"
	"sync"
	"time"
)

// ManualFacility is a deterministic timer facility driven by Advance.
// Due callbacks run synchronously on the caller's goroutine in deadline order.
type ManualFacility struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at       time.Time
	seq      int
	fn       func()
	canceled bool
	fired    bool
}

func NewManualFacility(start time.Time) *ManualFacility {
	return &ManualFacility{now: start.UTC()}
}

// Now is the facility's clock; pass it as the service clock.
func (f *ManualFacility) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *ManualFacility) AfterFunc(at time.Time, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	timer := &manualTimer{at: at.UTC(), seq: f.seq, fn: fn}
	f.timers = append(f.timers, timer)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		timer.canceled = true
	}
}

// Advance moves the clock forward by d, firing every due callback.
func (f *ManualFacility) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()
	f.AdvanceTo(target)
}

// AdvanceTo moves the clock to target, firing every due callback. Callbacks
// armed by a firing callback run too if they fall due before target.
func (f *ManualFacility) AdvanceTo(target time.Time) {
	for {
		f.mu.Lock()
		next := f.nextDueLocked(target)
		if next == nil {
			if target.After(f.now) {
				f.now = target
			}
			f.mu.Unlock()
			return
		}
		if next.at.After(f.now) {
			f.now = next.at
		}
		next.fired = true
		f.mu.Unlock()

		next.fn()
	}
}

func (f *ManualFacility) nextDueLocked(target time.Time) *manualTimer {
	live := f.timers[:0]
	for _, t := range f.timers {
		if !t.canceled && !t.fired {
			live = append(live, t)
		}
	}
	f.timers = live
	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].at.Equal(f.timers[j].at) {
			return f.timers[i].seq < f.timers[j].seq
		}
		return f.timers[i].at.Before(f.timers[j].at)
	})
	if len(f.timers) == 0 || f.timers[0].at.After(target) {
		return nil
	}
	return f.timers[0]
}

// Pending reports timers neither fired nor cancelled.
func (f *ManualFacility) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.canceled && !t.fired {
			n++
		}
	}
	return n
}
