package notifier

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/exchops/panelledger/internal/domain"
)

// Notifier fans ledger events out to in-process subscribers.
// Publish never blocks; events are dropped when the buffer is full so
// that transaction processing is never held up by a slow consumer.
type Notifier struct {
	events  chan domain.LedgerEvent
	logger  zerolog.Logger
	dropped atomic.Int64

	mu   sync.RWMutex
	subs []chan domain.LedgerEvent
}

// Config for Notifier.
type Config struct {
	Logger     zerolog.Logger
	BufferSize int // Size of the publish buffer
}

// New creates a new Notifier.
func New(cfg Config) *Notifier {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = 256
	}

	return &Notifier{
		events: make(chan domain.LedgerEvent, cfg.BufferSize),
		logger: cfg.Logger,
	}
}

// Publish enqueues an event for delivery. It never blocks: when the
// buffer is full the event is counted as dropped and discarded.
func (n *Notifier) Publish(event domain.LedgerEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	select {
	case n.events <- event:
	default:
		n.dropped.Add(1)
	}
}

// Subscribe registers a new subscriber channel. The returned channel is
// closed when the notifier shuts down.
func (n *Notifier) Subscribe(buffer int) <-chan domain.LedgerEvent {
	if buffer <= 0 {
		buffer = 16
	}

	ch := make(chan domain.LedgerEvent, buffer)

	n.mu.Lock()
	n.subs = append(n.subs, ch)
	n.mu.Unlock()

	return ch
}

// Dropped reports how many events were discarded because the buffer was
// full.
func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

// Start begins the delivery loop. It runs continuously until the
// context is cancelled, then closes all subscriber channels.
func (n *Notifier) Start(ctx context.Context) error {
	n.logger.Info().Int("buffer", cap(n.events)).Msg("notifier started")

	for {
		select {
		case <-ctx.Done():
			n.logger.Info().
				Int64("dropped", n.dropped.Load()).
				Msg("notifier shutting down")
			n.closeSubscribers()
			return ctx.Err()
		case event := <-n.events:
			n.deliver(event)
		}
	}
}

func (n *Notifier) deliver(event domain.LedgerEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, sub := range n.subs {
		select {
		case sub <- event:
		default:
			n.dropped.Add(1)
			n.logger.Debug().
				Str("event_type", event.Type).
				Str("entity_id", event.EntityID).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

func (n *Notifier) closeSubscribers() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, sub := range n.subs {
		close(sub)
	}
	n.subs = nil
}

// LogSubscriber drains a subscription and logs every event. It is the
// default consumer when no external real-time layer is attached.
func LogSubscriber(logger zerolog.Logger, events <-chan domain.LedgerEvent) {
	for event := range events {
		logger.Info().
			Str("event_type", event.Type).
			Str("entity_type", event.EntityType).
			Str("entity_id", event.EntityID).
			Str("ledger_date", event.LedgerDate).
			Str("reference_type", event.ReferenceType).
			Str("reference_id", event.ReferenceID).
			Msg("ledger event")
	}
}
