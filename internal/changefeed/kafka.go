package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaQueue implements Queue over an Apache Kafka topic so change events
// survive restarts and can fan out to external consumers.
type KafkaQueue struct {
	writer *kafka.Writer
	reader *kafka.Reader
	topic  string
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

// KafkaConfig holds the connection settings for the change-feed topic.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	GroupID      string
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	MinBytes     int
	MaxBytes     int
	MaxWait      time.Duration
	RequiredAcks int
}

// NewKafkaQueue creates a Kafka-backed change feed.
func NewKafkaQueue(config KafkaConfig) (*KafkaQueue, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("Kafka topic is required")
	}
	if config.GroupID == "" {
		config.GroupID = "chatql-changefeed"
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = 10e6
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    config.BatchSize,
		BatchTimeout: config.BatchTimeout,
		WriteTimeout: config.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(config.RequiredAcks),
		MaxAttempts:  3,
		Async:        false,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     config.Brokers,
		Topic:       config.Topic,
		GroupID:     config.GroupID,
		MinBytes:    config.MinBytes,
		MaxBytes:    config.MaxBytes,
		MaxWait:     config.MaxWait,
		StartOffset: kafka.FirstOffset,
	})

	logger := slog.Default()
	logger.Info("kafka change feed initialized",
		"brokers", config.Brokers, "topic", config.Topic, "group", config.GroupID)

	return &KafkaQueue{
		writer: writer,
		reader: reader,
		topic:  config.Topic,
		logger: logger,
	}, nil
}

// Enqueue publishes one event, keyed by table ID so a table's events stay
// ordered within a partition.
func (q *KafkaQueue) Enqueue(ctx context.Context, event *Event) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	if event == nil || event.TableID == "" {
		return ErrInvalidEvent
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.TableID),
		Value: payload,
		Time:  event.Timestamp,
	}
	if err := q.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// Dequeue reads up to batchSize events. It returns early once the fetch
// would block, so the drainer never stalls on a quiet topic.
func (q *KafkaQueue) Dequeue(ctx context.Context, batchSize int) ([]*Event, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, ErrQueueClosed
	}
	q.mu.RUnlock()

	if batchSize <= 0 {
		batchSize = 100
	}

	events := make([]*Event, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		fetchCtx, cancel := context.WithTimeout(ctx, time.Second)
		message, err := q.reader.ReadMessage(fetchCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return events, ctx.Err()
			}
			// Timeout means an empty topic, not a failure.
			return events, nil
		}

		var event Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			q.logger.Warn("skipping undecodable change event",
				"topic", q.topic, "offset", message.Offset, "error", err)
			continue
		}
		events = append(events, &event)
	}
	return events, nil
}

// Size is unknown for Kafka; consumers should drain until Dequeue returns
// an empty batch.
func (q *KafkaQueue) Size() int {
	return -1
}

func (q *KafkaQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true

	var errs []error
	if err := q.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close writer: %w", err))
	}
	if err := q.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close reader: %w", err))
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
