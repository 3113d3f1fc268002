package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/evalink-api/internal/observability"
)

const activityRecordTimeout = 5 * time.Second

// EventPublisher forwards serialized activity events to a message broker.
// *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// ActivityEnqueuer accepts activity entries without waiting for them to be stored.
type ActivityEnqueuer interface {
	Enqueue(entry ActivityEntry) bool
}

type activityEvent struct {
	Activity interface{} `json:"activity"`
	SentAt   time.Time   `json:"sent_at"`
}

// ActivityDispatcher persists activity entries on its own goroutine. Callers hand
// entries off through Enqueue and never observe recording or publishing failures;
// those are reported through the dispatcher's logger and metrics only.
type ActivityDispatcher struct {
	recorder  ActivityRecorder
	publisher EventPublisher
	subject   string
	queue     chan ActivityEntry
	done      chan struct{}
	logger    zerolog.Logger

	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
}

// NewActivityDispatcher builds a dispatcher with a queue of the given capacity.
// The publisher is optional.
func NewActivityDispatcher(recorder ActivityRecorder, publisher EventPublisher, subject string, buffer int, logger zerolog.Logger) *ActivityDispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &ActivityDispatcher{
		recorder:  recorder,
		publisher: publisher,
		subject:   subject,
		queue:     make(chan ActivityEntry, buffer),
		done:      make(chan struct{}),
		logger:    logger.With().Str("component", "activity_dispatcher").Logger(),
	}
}

// Start launches the worker goroutine. Calling it more than once has no effect.
func (d *ActivityDispatcher) Start() {
	d.startOnce.Do(func() {
		go d.run()
	})
}

// Enqueue hands an entry to the worker. It never blocks: when the queue is full or
// the dispatcher is closed the entry is dropped and false is returned.
func (d *ActivityDispatcher) Enqueue(entry ActivityEntry) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		observability.ActivityEvents().WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case d.queue <- entry:
		observability.ActivityEvents().WithLabelValues("queued").Inc()
		return true
	default:
		observability.ActivityEvents().WithLabelValues("dropped").Inc()
		d.logger.Warn().Str("action", entry.Action).Msg("activity queue full, dropping entry")
		return false
	}
}

// Close stops accepting entries and waits until queued entries are drained or ctx ends.
func (d *ActivityDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.Start()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *ActivityDispatcher) run() {
	defer close(d.done)
	for entry := range d.queue {
		d.handle(entry)
	}
}

func (d *ActivityDispatcher) handle(entry ActivityEntry) {
	defer func() {
		if r := recover(); r != nil {
			observability.ActivityEvents().WithLabelValues("failed").Inc()
			d.logger.Error().Interface("panic", r).Str("action", entry.Action).Msg("activity recorder panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), activityRecordTimeout)
	defer cancel()

	recorded, err := d.recorder.Record(ctx, entry)
	if err != nil {
		observability.ActivityEvents().WithLabelValues("failed").Inc()
		d.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to record activity")
		return
	}
	observability.ActivityEvents().WithLabelValues("recorded").Inc()

	if d.publisher == nil || d.subject == "" {
		return
	}

	payload, err := json.Marshal(activityEvent{Activity: recorded, SentAt: time.Now().UTC()})
	if err != nil {
		d.logger.Warn().Err(err).Msg("failed to encode activity event")
		return
	}
	if err := d.publisher.Publish(d.subject, payload); err != nil {
		observability.ActivityEvents().WithLabelValues("publish_failed").Inc()
		d.logger.Warn().Err(err).Str("subject", d.subject).Msg("failed to publish activity event")
	}
}
