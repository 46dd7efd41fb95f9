package changefeed

import (
	"context"
	"errors"
	"sync"
)

// MemoryQueue implements Queue over a buffered channel. It backs tests and
// single-node deployments where events never leave the process.
type MemoryQueue struct {
	queue  chan *Event
	mu     sync.RWMutex
	closed bool
}

// NewMemoryQueue creates an in-memory queue. bufferSize is the maximum
// number of events held before Enqueue starts failing.
func NewMemoryQueue(bufferSize int) *MemoryQueue {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &MemoryQueue{queue: make(chan *Event, bufferSize)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, event *Event) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	if event == nil || event.TableID == "" {
		return ErrInvalidEvent
	}

	select {
	case q.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("change-feed queue is full")
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, batchSize int) ([]*Event, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	events := make([]*Event, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		select {
		case event := <-q.queue:
			if event == nil {
				// Channel closed.
				return events, nil
			}
			events = append(events, event)
		case <-ctx.Done():
			return events, ctx.Err()
		default:
			return events, nil
		}
	}
	return events, nil
}

func (q *MemoryQueue) Size() int {
	return len(q.queue)
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}
