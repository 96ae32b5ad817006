package notification

import (
	"context"
	"log"
	"time"
)

// Event kinds.
const (
	KindAssigned = "assigned"
	KindDeleted  = "deleted"
)

// AssignmentEvent describes a committed change of a room assignment.
type AssignmentEvent struct {
	Kind          string    `json:"kind"`
	AssignmentID  int64     `json:"assignmentId"`
	ReservationID int64     `json:"reservationId"`
	RoomID        int64     `json:"roomId"`
	RoomName      string    `json:"roomName"`
	Arrival       time.Time `json:"arrival"`
	Departure     time.Time `json:"departure"`
	Guests        int       `json:"guests"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Sink receives every dispatched event.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev AssignmentEvent) error
}

// WorkerPool manages a pool of workers fanning events out to the sinks.
type WorkerPool struct {
	size  int
	jobs  chan AssignmentEvent
	sinks []Sink
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, sinks ...Sink) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:  size,
		jobs:  make(chan AssignmentEvent, size*16),
		sinks: sinks,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			wp.deliver(ctx, ev)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

func (wp *WorkerPool) deliver(ctx context.Context, ev AssignmentEvent) {
	for _, sink := range wp.sinks {
		if err := sink.Deliver(ctx, ev); err != nil {
			log.Printf("Error delivering %s event for assignment %d to %s: %v", ev.Kind, ev.AssignmentID, sink.Name(), err)
		}
	}
}

// Dispatch queues an event. It never blocks the caller; when the queue is
// full the event is dropped and false is returned.
func (wp *WorkerPool) Dispatch(ev AssignmentEvent) bool {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	select {
	case wp.jobs <- ev:
		return true
	default:
		log.Printf("Warning: notification queue full, dropping %s event for assignment %d", ev.Kind, ev.AssignmentID)
		return false
	}
}
