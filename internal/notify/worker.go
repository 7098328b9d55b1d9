package notify

import (
	"context"
	"log"
	"time"

	"hostel-occupancy-backend/internal/metrics"
)

// WorkerPool manages a pool of workers for publishing occupancy events.
// Delivery is at-most-once: a full queue drops the event, and publish
// failures are logged and swallowed. Nothing here ever reaches back into
// the caller-visible operation.
type WorkerPool struct {
	size      int
	jobs      chan Event
	publisher Publisher
	timeout   time.Duration
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size, queueSize int, publisher Publisher, timeout time.Duration) *WorkerPool {
	if queueSize <= 0 {
		queueSize = size
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &WorkerPool{
		size:      size,
		jobs:      make(chan Event, queueSize),
		publisher: publisher,
		timeout:   timeout,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notify worker %d started", id)
	for {
		select {
		case event := <-wp.jobs:
			wp.publish(ctx, event)
		case <-ctx.Done():
			log.Printf("notify worker %d shutting down", id)
			return
		}
	}
}

// Dispatch enqueues an event without blocking. When the queue is full the
// event is dropped; the state change it describes has already committed.
func (wp *WorkerPool) Dispatch(event Event) {
	select {
	case wp.jobs <- event:
	default:
		metrics.EventsDropped.Inc()
		log.Printf("notify queue full, dropping event for room %s", event.RoomID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

func (wp *WorkerPool) publish(ctx context.Context, event Event) {
	pubCtx, cancel := context.WithTimeout(ctx, wp.timeout)
	defer cancel()

	if err := wp.publisher.Publish(pubCtx, event); err != nil {
		metrics.EventsDropped.Inc()
		log.Printf("error publishing event for room %s: %v", event.RoomID, err)
		return
	}
	metrics.EventsPublished.Inc()
}
