package changefeed

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemoryQueue(10)
	defer q.Close()
	ctx := context.Background()

	for _, table := range []string{"t1", "t2", "t3"} {
		err := q.Enqueue(ctx, &Event{TableID: table, Record: "r", Timestamp: time.Now()})
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	if q.Size() != 3 {
		t.Fatalf("Size = %d, want 3", q.Size())
	}

	events, err := q.Dequeue(ctx, 2)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if len(events) != 2 || events[0].TableID != "t1" || events[1].TableID != "t2" {
		t.Fatalf("events = %+v, want t1 then t2", events)
	}

	rest, err := q.Dequeue(ctx, 10)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if len(rest) != 1 || rest[0].TableID != "t3" {
		t.Fatalf("rest = %+v, want t3", rest)
	}
}

func TestMemoryQueueEmptyDequeueDoesNotBlock(t *testing.T) {
	q := NewMemoryQueue(10)
	defer q.Close()

	events, err := q.Dequeue(context.Background(), 5)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %+v, want none", events)
	}
}

func TestMemoryQueueInvalidEvent(t *testing.T) {
	q := NewMemoryQueue(10)
	defer q.Close()
	ctx := context.Background()

	if err := q.Enqueue(ctx, nil); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("nil event error = %v, want ErrInvalidEvent", err)
	}
	if err := q.Enqueue(ctx, &Event{Record: "r"}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("table-less event error = %v, want ErrInvalidEvent", err)
	}
}

func TestMemoryQueueClosed(t *testing.T) {
	q := NewMemoryQueue(10)
	q.Close()
	err := q.Enqueue(context.Background(), &Event{TableID: "t1"})
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("error = %v, want ErrQueueClosed", err)
	}
}

func TestMemoryQueueFull(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()
	ctx := context.Background()

	if err := q.Enqueue(ctx, &Event{TableID: "t1"}); err != nil {
		t.Fatalf("first Enqueue failed: %v", err)
	}
	if err := q.Enqueue(ctx, &Event{TableID: "t2"}); err == nil {
		t.Fatalf("Enqueue on a full queue should fail rather than block")
	}
}
