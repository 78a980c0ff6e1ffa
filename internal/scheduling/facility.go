package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Facility runs fn once at an absolute instant. fn may run on any goroutine,
// including synchronously inside AfterFunc when at has already passed. The
// returned cancel func is safe to call any number of times, before or after
// the function ran.
type Facility interface {
	AfterFunc(at time.Time, fn func()) (cancel func())
}

// CronFacility is the process-wide deferred task executor. Every armed
// function gets its own cron entry with a one-shot schedule; cron's run loop
// owns the wake-ups and each job runs on its own goroutine.
type CronFacility struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewCronFacility(logger *zap.Logger) *CronFacility {
	cronLogger := zapCronLogger{sugar: logger.Sugar()}
	return &CronFacility{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger)),
		),
		logger: logger,
	}
}

// Start must be called before the first AfterFunc.
func (f *CronFacility) Start() {
	f.cron.Start()
	f.logger.Info("Timer facility started")
}

// Stop halts the run loop; the returned context is done once running jobs finish.
func (f *CronFacility) Stop() context.Context {
	ctx := f.cron.Stop()
	f.logger.Info("Timer facility stopped")
	return ctx
}

// Entries reports how many one-shot entries cron still tracks.
func (f *CronFacility) Entries() int {
	return len(f.cron.Entries())
}

func (f *CronFacility) AfterFunc(at time.Time, fn func()) func() {
	handle := &cronHandle{facility: f}
	schedule := &onceSchedule{at: at.UTC()}

	id := f.cron.Schedule(schedule, cron.FuncJob(func() {
		if !handle.begin() {
			return
		}
		fn()
	}))
	handle.bind(id)

	return handle.cancel
}

// cronHandle tracks one entry. The job may start before Schedule returns the
// entry id, so removal happens whichever of bind/begin/cancel sees both halves.
type cronHandle struct {
	facility *CronFacility

	mu       sync.Mutex
	id       cron.EntryID
	bound    bool
	started  bool
	canceled bool
	removed  bool
}

func (h *cronHandle) bind(id cron.EntryID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.id = id
	h.bound = true
	if h.started || h.canceled {
		h.removeLocked()
	}
}

// begin reports whether the job may run and drops its cron entry.
func (h *cronHandle) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.canceled || h.started {
		return false
	}
	h.started = true
	if h.bound {
		h.removeLocked()
	}
	return true
}

func (h *cronHandle) cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.canceled = true
	if h.bound {
		h.removeLocked()
	}
}

func (h *cronHandle) removeLocked() {
	if h.removed {
		return
	}
	h.removed = true
	h.facility.cron.Remove(h.id)
}

// onceSchedule yields its instant until cron has asked for the follow-up
// activation, then the zero time so the entry never runs again.
type onceSchedule struct {
	mu    sync.Mutex
	at    time.Time
	armed bool
}

func (s *onceSchedule) Next(now time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Before(s.at) || !s.armed {
		s.armed = true
		return s.at
	}
	return time.Time{}
}

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw("cron: "+msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
