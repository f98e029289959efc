package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/logger"
)

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

const (
	defaultQueueSize = 256
	defaultWorkers   = 2
	defaultTimeout   = 10 * time.Second
)

// DispatcherOptions sizes the queue and bounds each delivery. Zero values
// fall back to the defaults.
type DispatcherOptions struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

type queuedEvent struct {
	ctx   context.Context
	event domain.Event
}

// Dispatcher queues events and delivers them to next on background workers,
// so Notify returns without waiting on SMTP or Redis. Each delivery runs
// under its own timeout, detached from the request's cancellation.
type Dispatcher struct {
	next    domain.Notifier
	timeout time.Duration
	queue   chan queuedEvent
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(next domain.Notifier, opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	d := &Dispatcher{
		next:    next,
		timeout: opts.Timeout,
		queue:   make(chan queuedEvent, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.work()
	}
	return d
}

// Notify enqueues the event. It never blocks: a full queue drops the event
// and reports ErrQueueFull.
func (d *Dispatcher) Notify(ctx context.Context, event domain.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for q := range d.queue {
		d.deliver(q)
	}
}

func (d *Dispatcher) deliver(q queuedEvent) {
	ctx, cancel := context.WithTimeout(q.ctx, d.timeout)
	defer cancel()

	if err := d.next.Notify(ctx, q.event); err != nil {
		logger.Log.WarnContext(ctx, "Failed to deliver notification",
			"event", q.event.Type, "posting_id", q.event.PostingID, "error", err)
	}
}

// Close stops accepting events and waits for queued ones to be delivered,
// or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
