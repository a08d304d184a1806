// Package notification runs the side effects of committed bookings (emails, audit rows and
// live agenda events) off the request path.
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saeid-a/ClinicAgendaBack/internal/metrics"
	"github.com/saeid-a/ClinicAgendaBack/pkg/logger"
	"github.com/sirupsen/logrus"
)

const defaultTaskTimeout = 30 * time.Second

var ErrDispatcherClosed = errors.New("dispatcher is closed")

type Task struct {
	ID   uuid.UUID
	Kind string
	Run  func(ctx context.Context) error
}

// Dispatcher drains a bounded queue with a fixed pool of workers. Tasks never inherit a
// request context; each gets its own timeout.
type Dispatcher struct {
	tasks   chan Task
	timeout time.Duration
	log     *logrus.Entry

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(workers, queueSize int, log *logger.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	d := &Dispatcher{
		tasks:   make(chan Task, queueSize),
		timeout: defaultTaskTimeout,
		log:     log.WithComponent("dispatcher"),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Enqueue schedules run without blocking. It reports false when the task was dropped
// because the queue is full or the dispatcher is shutting down.
func (d *Dispatcher) Enqueue(kind string, run func(ctx context.Context) error) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.WithField("kind", kind).Warn("task dropped: dispatcher closed")
		metrics.NotificationDropped(kind)
		return false
	}

	task := Task{ID: uuid.New(), Kind: kind, Run: run}
	select {
	case d.tasks <- task:
		metrics.SetNotificationQueueDepth(len(d.tasks))
		return true
	default:
		d.log.WithFields(logrus.Fields{"kind": kind, "task_id": task.ID}).Warn("task dropped: queue full")
		metrics.NotificationDropped(kind)
		return false
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for task := range d.tasks {
		metrics.SetNotificationQueueDepth(len(d.tasks))
		d.run(task)
	}
}

func (d *Dispatcher) run(task Task) {
	entry := d.log.WithFields(logrus.Fields{"kind": task.Kind, "task_id": task.ID})
	defer func() {
		if r := recover(); r != nil {
			entry.WithField("panic", r).Error("task panicked")
			metrics.NotificationProcessed(task.Kind, errors.New("panic"))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := task.Run(ctx)
	metrics.NotificationProcessed(task.Kind, err)
	if err != nil {
		entry.WithError(err).Error("task failed")
		return
	}
	entry.Debug("task done")
}

// Shutdown stops accepting tasks and waits for the queued ones until ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	close(d.tasks)
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
