package chatql

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/chatql/chatql/internal/changefeed"
)

// EventHandler consumes drained change events. Returning an error leaves
// the event behind; the drainer logs and moves on.
type EventHandler func(ctx context.Context, event *changefeed.Event) error

// DrainerConfig tunes the background change-feed consumer.
type DrainerConfig struct {
	// DrainRate is the maximum number of events handled per second.
	DrainRate int

	// BatchSize is how many events to dequeue at once.
	BatchSize int

	// PollInterval is how often to check for new events when the queue is
	// empty.
	PollInterval time.Duration
}

// DefaultDrainerConfig returns sensible defaults for the drainer.
func DefaultDrainerConfig() DrainerConfig {
	return DrainerConfig{
		DrainRate:    50,
		BatchSize:    100,
		PollInterval: 100 * time.Millisecond,
	}
}

// Drainer reads change events from the queue in the background and hands
// them to the handler at a controlled rate, keeping downstream consumers
// off the insert path.
type Drainer struct {
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	queue   changefeed.Queue
	handler EventHandler
	config  DrainerConfig
	logger  *slog.Logger
}

// NewDrainer creates a drainer. A nil handler gets a logging no-op.
func NewDrainer(queue changefeed.Queue, handler EventHandler, config DrainerConfig, logger *slog.Logger) *Drainer {
	defaults := DefaultDrainerConfig()
	if config.DrainRate <= 0 {
		config.DrainRate = defaults.DrainRate
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	if handler == nil {
		handler = func(_ context.Context, event *changefeed.Event) error {
			logger.Debug("change event", "table", event.TableID, "at", event.Timestamp)
			return nil
		}
	}

	return &Drainer{
		queue:   queue,
		handler: handler,
		config:  config,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins the drainer goroutine. Non-blocking; call Stop to shut it
// down.
func (d *Drainer) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.mu.Unlock()

	go d.run(ctx)
	d.logger.Info("change-feed drainer started", "rate", d.config.DrainRate)
}

// Stop shuts the drainer down, waiting for the in-flight batch to finish.
func (d *Drainer) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	close(d.stopCh)
	<-d.doneCh
	d.logger.Info("change-feed drainer stopped")
}

// IsRunning reports whether the drainer loop is live.
func (d *Drainer) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

func (d *Drainer) run(ctx context.Context) {
	defer close(d.doneCh)

	limiter := rate.NewLimiter(rate.Limit(d.config.DrainRate), 1)

	for {
		select {
		case <-d.stopCh:
			return
		case <-ctx.Done():
			return
		default:
			events, err := d.queue.Dequeue(ctx, d.config.BatchSize)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				d.logger.Error("change-feed dequeue failed", "error", err)
				time.Sleep(d.config.PollInterval)
				continue
			}
			if len(events) == 0 {
				time.Sleep(d.config.PollInterval)
				continue
			}

			for _, event := range events {
				if event == nil {
					continue
				}
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				if err := d.handler(ctx, event); err != nil {
					d.logger.Error("change event handler failed",
						"table", event.TableID, "error", err)
				}
			}
		}
	}
}
