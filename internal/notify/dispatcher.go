package notify

import (
	"context"
	"sync"
	"time"

	"testadmin/internal/metrics"
	"testadmin/internal/models"

	"go.uber.org/zap"
)

// Sink delivers one event. Errors are logged by the dispatcher and dropped.
type Sink interface {
	Publish(ctx context.Context, kind models.EventKind, payload any) error
}

type DispatcherConfig struct {
	Workers        int
	QueueSize      int
	PublishTimeout time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{Workers: 2, QueueSize: 256, PublishTimeout: 5 * time.Second}
}

type envelope struct {
	kind    models.EventKind
	payload any
}

// Dispatcher hands events to a Sink from a small worker pool. Notify never
// blocks: when the queue is full the event is dropped and counted.
type Dispatcher struct {
	sink    Sink
	logger  *zap.Logger
	timeout time.Duration
	queue   chan envelope
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sink Sink, logger *zap.Logger, cfg DispatcherConfig) *Dispatcher {
	def := DefaultDispatcherConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = def.PublishTimeout
	}

	d := &Dispatcher{
		sink:    sink,
		logger:  logger,
		timeout: cfg.PublishTimeout,
		queue:   make(chan envelope, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

func (d *Dispatcher) Notify(kind models.EventKind, payload any) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Dispatcher closed; dropping notification", zap.String("event", string(kind)))
		metrics.Notifications.WithLabelValues(string(kind), "dropped").Inc()
		return
	}

	select {
	case d.queue <- envelope{kind: kind, payload: payload}:
	default:
		d.logger.Warn("Notification queue full; dropping notification", zap.String("event", string(kind)))
		metrics.Notifications.WithLabelValues(string(kind), "dropped").Inc()
	}
}

// Close stops accepting events and waits for queued ones to be published.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for env := range d.queue {
		d.publish(env)
	}
}

func (d *Dispatcher) publish(env envelope) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Notification sink panicked", zap.String("event", string(env.kind)), zap.Any("panic", r))
			metrics.Notifications.WithLabelValues(string(env.kind), "failed").Inc()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sink.Publish(ctx, env.kind, env.payload); err != nil {
		d.logger.Error("Failed to publish notification", zap.String("event", string(env.kind)), zap.Error(err))
		metrics.Notifications.WithLabelValues(string(env.kind), "failed").Inc()
		return
	}
	metrics.Notifications.WithLabelValues(string(env.kind), "published").Inc()
}
