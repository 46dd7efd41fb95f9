// Package changefeed carries insert events out of the engine to interested
// consumers, decoupled from the insert path itself.
package changefeed

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrQueueClosed is returned when enqueueing to a closed queue.
	ErrQueueClosed = errors.New("change-feed queue is closed")

	// ErrInvalidEvent is returned for nil or table-less events.
	ErrInvalidEvent = errors.New("invalid change event")
)

// Event is one appended record: which table log it went to, the serialized
// record text and when the append happened.
type Event struct {
	TableID   string    `json:"table_id"`
	Record    string    `json:"record"`
	Timestamp time.Time `json:"timestamp"`
}

// Queue is the transport for change events. Enqueue is called on the insert
// path and must not block it; Dequeue is consumed by the drainer.
type Queue interface {
	// Enqueue adds an event to the queue.
	Enqueue(ctx context.Context, event *Event) error

	// Dequeue retrieves up to batchSize events in FIFO order. An empty
	// slice means no events are available.
	Dequeue(ctx context.Context, batchSize int) ([]*Event, error)

	// Size returns the number of events currently queued, where the
	// backend can tell.
	Size() int

	// Close closes the queue and releases resources.
	Close() error
}
