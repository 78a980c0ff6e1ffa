package scheduling

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"testadmin/internal/metrics"
)

// Kind distinguishes the two lifecycle timers a test can own.
type Kind string

const (
	KindStart Kind = "start"
	KindEnd   Kind = "end"
)

type timerKey struct {
	testID string
	kind   Kind
}

type pendingTimer struct {
	token    uint64
	deadline time.Time
	cancel   func()
	// dropped marks an entry already unlinked from the registry.
	dropped bool
}

// Registry holds at most one pending timer per (test, kind). Arming a key
// that is already armed supersedes the earlier timer. A fired timer removes
// its own entry before running, and a callback whose entry was replaced or
// cancelled in the meantime does nothing. The facility is never called with
// the registry lock held.
type Registry struct {
	facility Facility
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[timerKey]*pendingTimer
	seq     uint64
}

func NewRegistry(facility Facility, logger *zap.Logger) *Registry {
	return &Registry{
		facility: facility,
		logger:   logger,
		pending:  make(map[timerKey]*pendingTimer),
	}
}

// Arm schedules action at deadline for the given test and kind.
func (r *Registry) Arm(testID string, kind Kind, deadline time.Time, action func()) {
	key := timerKey{testID: testID, kind: kind}

	r.mu.Lock()
	stopOld, _ := r.removeLocked(key, "superseded")
	r.seq++
	token := r.seq
	timer := &pendingTimer{token: token, deadline: deadline.UTC()}
	r.pending[key] = timer
	metrics.TimersPending.WithLabelValues(string(kind)).Inc()
	metrics.TimerEvents.WithLabelValues(string(kind), "armed").Inc()
	r.mu.Unlock()

	if stopOld != nil {
		stopOld()
	}
	r.logger.Debug("Lifecycle timer armed",
		zap.String("testId", testID),
		zap.String("kind", string(kind)),
		zap.Time("deadline", timer.deadline))

	cancel := r.facility.AfterFunc(timer.deadline, func() {
		if !r.claim(key, token) {
			return
		}
		r.logger.Info("Lifecycle timer fired",
			zap.String("testId", testID),
			zap.String("kind", string(kind)))
		action()
	})

	r.mu.Lock()
	dropped := timer.dropped
	if !dropped {
		timer.cancel = cancel
	}
	r.mu.Unlock()
	if dropped {
		cancel()
	}
}

func (r *Registry) claim(key timerKey, token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	timer, ok := r.pending[key]
	if !ok || timer.token != token {
		return false
	}
	delete(r.pending, key)
	timer.dropped = true
	metrics.TimersPending.WithLabelValues(string(key.kind)).Dec()
	metrics.TimerEvents.WithLabelValues(string(key.kind), "fired").Inc()
	return true
}

// removeLocked unlinks the entry for key and returns its facility cancel,
// which the caller invokes once the lock is released. The cancel is nil while
// Arm has not bound it yet; Arm then cancels on its own.
func (r *Registry) removeLocked(key timerKey, event string) (func(), bool) {
	timer, ok := r.pending[key]
	if !ok {
		return nil, false
	}
	delete(r.pending, key)
	timer.dropped = true
	metrics.TimersPending.WithLabelValues(string(key.kind)).Dec()
	metrics.TimerEvents.WithLabelValues(string(key.kind), event).Inc()
	return timer.cancel, true
}

// Cancel drops the pending timer for the given test and kind, if any.
func (r *Registry) Cancel(testID string, kind Kind) bool {
	r.mu.Lock()
	cancel, ok := r.removeLocked(timerKey{testID: testID, kind: kind}, "cancelled")
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return ok
}

// CancelAll drops both timers of a test. Unknown ids are a no-op.
func (r *Registry) CancelAll(testID string) {
	start := r.Cancel(testID, KindStart)
	end := r.Cancel(testID, KindEnd)
	if start || end {
		r.logger.Debug("Lifecycle timers cancelled",
			zap.String("testId", testID),
			zap.Bool("start", start),
			zap.Bool("end", end))
	}
}

// Pending returns the deadline of the armed timer, if any.
func (r *Registry) Pending(testID string, kind Kind) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timer, ok := r.pending[timerKey{testID: testID, kind: kind}]
	if !ok {
		return time.Time{}, false
	}
	return timer.deadline, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
