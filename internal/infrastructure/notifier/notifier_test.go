package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/exchops/panelledger/internal/domain"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	n := New(Config{Logger: zerolog.Nop()})

	sub := n.Subscribe(4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = n.Start(ctx)
		close(done)
	}()

	n.Publish(domain.LedgerEvent{
		Type:     domain.EventTypeLedgerUpdated,
		EntityID: "panel-1",
	})

	select {
	case event := <-sub:
		if event.Type != domain.EventTypeLedgerUpdated {
			t.Fatalf("unexpected event type %q", event.Type)
		}
		if event.EntityID != "panel-1" {
			t.Fatalf("unexpected entity ID %q", event.EntityID)
		}
		if event.OccurredAt.IsZero() {
			t.Fatalf("expected occurred_at to be stamped")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}

	cancel()
	<-done
}

func TestPublishNeverBlocks(t *testing.T) {
	n := New(Config{Logger: zerolog.Nop(), BufferSize: 1})

	// No Start loop running, so the buffer fills after one event.
	n.Publish(domain.LedgerEvent{Type: domain.EventTypeLedgerUpdated})
	n.Publish(domain.LedgerEvent{Type: domain.EventTypeLedgerUpdated})
	n.Publish(domain.LedgerEvent{Type: domain.EventTypeLedgerUpdated})

	if got := n.Dropped(); got != 2 {
		t.Fatalf("expected 2 dropped events, got %d", got)
	}
}

func TestSlowSubscriberDropsWithoutBlocking(t *testing.T) {
	n := New(Config{Logger: zerolog.Nop()})

	// Subscriber with a full buffer that is never drained.
	sub := n.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = n.Start(ctx)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		n.Publish(domain.LedgerEvent{Type: domain.EventTypeLedgerUpdated})
	}

	// The delivery loop must keep making progress even though the
	// subscriber buffer holds only one event.
	deadline := time.After(time.Second)
	for n.Dropped() < 1 {
		select {
		case <-deadline:
			t.Fatalf("expected drops for slow subscriber, got %d", n.Dropped())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done

	// Drain the buffered event; the channel must then be closed.
	<-sub
	if _, ok := <-sub; ok {
		t.Fatalf("expected subscriber channel to be closed")
	}
}

func TestStartReturnsContextError(t *testing.T) {
	n := New(Config{Logger: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.Start(ctx); err == nil {
		t.Fatalf("expected context error from Start")
	}
}
