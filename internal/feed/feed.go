// Package feed delivers live booking snapshots to dashboard consumers.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Osaseye/SECURE-STAY/internal/domain"
)

// SnapshotFunc receives the full booking list, newest first, each time
// a booking is created or its status changes.
type SnapshotFunc func(bookings []*domain.Booking)

// Feed bridges the event bus and the repository: every change event
// triggers a fresh query so consumers always see a complete,
// consistently ordered snapshot rather than incremental patches.
type Feed struct {
	repo domain.Repository
	bus  domain.EventBus
}

// New creates a booking change feed.
func New(repo domain.Repository, bus domain.EventBus) *Feed {
	return &Feed{
		repo: repo,
		bus:  bus,
	}
}

// Subscription is an active feed subscription.
type Subscription struct {
	mu   sync.Mutex
	subs []domain.Subscription
}

// Unsubscribe releases the underlying bus subscriptions. No snapshots
// are delivered after it returns.
func (s *Subscription) Unsubscribe() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.subs = nil
	return firstErr
}

// Subscribe delivers an immediate snapshot of all bookings, then a
// fresh snapshot after every create or status change. Snapshots for a
// single subscriber are delivered sequentially, never concurrently.
func (f *Feed) Subscribe(ctx context.Context, fn SnapshotFunc) (*Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("snapshot callback is required")
	}

	// Serialize deliveries per subscriber.
	var deliverMu sync.Mutex
	deliver := func(ctx context.Context) error {
		deliverMu.Lock()
		defer deliverMu.Unlock()

		bookings, err := f.repo.ListBookings(ctx)
		if err != nil {
			return fmt.Errorf("failed to query bookings: %w", err)
		}
		fn(bookings)
		return nil
	}

	handler := func(ctx context.Context, msg *domain.Message) error {
		if err := deliver(ctx); err != nil {
			slog.Error("feed snapshot delivery failed",
				"topic", msg.Topic,
				"message_id", msg.ID,
				"error", err,
			)
			return err
		}
		return nil
	}

	sub := &Subscription{}
	for _, topic := range []string{domain.TopicBookingCreated, domain.TopicBookingUpdated} {
		busSub, err := f.bus.Subscribe(ctx, topic, handler)
		if err != nil {
			_ = sub.Unsubscribe()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		sub.subs = append(sub.subs, busSub)
	}

	// Initial snapshot after the bus subscriptions are live, so no
	// change can slip between the first query and the first event.
	if err := deliver(ctx); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}

	return sub, nil
}
