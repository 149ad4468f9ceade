// Package pipeline runs the booking risk evaluation flow: signal
// extraction, external scoring, status resolution, persistence, and
// change notification.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/Osaseye/SECURE-STAY/internal/domain"
	"github.com/Osaseye/SECURE-STAY/internal/signals"
	"github.com/Osaseye/SECURE-STAY/internal/status"
)

// ErrInvalidRequest marks a submission rejected before evaluation.
var ErrInvalidRequest = errors.New("invalid booking request")

// Service orchestrates the pipeline. Every stage after persistence is
// best effort: a failed event publish is logged, never surfaced to the
// guest.
type Service struct {
	extractor *signals.Extractor
	scorer    domain.Scorer
	repo      domain.Repository
	bus       domain.EventBus

	// reference generates guest-facing booking references.
	// Overridable in tests.
	reference func() string
}

// New creates the pipeline service.
func New(extractor *signals.Extractor, scorer domain.Scorer, repo domain.Repository, bus domain.EventBus) *Service {
	return &Service{
		extractor: extractor,
		scorer:    scorer,
		repo:      repo,
		bus:       bus,
		reference: newReference,
	}
}

// newReference returns a reference in the REF-###### form guests see
// on their confirmation. Six random digits; collisions are tolerated
// and resolved at lookup time (earliest record wins).
func newReference() string {
	return fmt.Sprintf("REF-%d", 100000+rand.IntN(900000))
}

// BookingEvent is the payload of booking.created and booking.updated
// messages.
type BookingEvent struct {
	RecordID  string               `json:"recordId"`
	Reference string               `json:"reference"`
	Status    domain.BookingStatus `json:"status"`
	Score     int                  `json:"score"`
}

// SubmitBooking evaluates and persists a guest submission.
//
// The stages run in a fixed order: extract signals, score, resolve
// status, persist, notify. Scoring degrades to the fallback score on
// outage, so the only failure the guest can see is a persistence
// failure, in which case no record and no event are produced.
func (s *Service) SubmitBooking(ctx context.Context, req *domain.BookingRequest) (*domain.Booking, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	sig, deviceID := s.extractor.Extract(ctx, signals.AttemptInput{
		Amount:         req.Amount,
		Country:        req.Country,
		BillingCountry: req.BillingCountry,
	})

	score := s.scorer.Score(ctx, sig)
	bookingStatus, reasons := status.Resolve(score, sig)

	channel := req.Channel
	if channel == "" {
		channel = "Web"
	}

	booking := &domain.Booking{
		Reference: s.reference(),
		GuestName: req.GuestName,
		Email:     req.Email,
		Phone:     req.Phone,
		HotelName: req.HotelName,
		RoomType:  req.RoomType,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Amount:    req.Amount,
		Channel:   channel,
		IPAddress: req.IPAddress,
		DeviceID:  deviceID,
		Signals:   sig,
		Score:     score,
		Status:    bookingStatus,
		Reasons:   reasons,
	}

	stored, err := s.repo.CreateBooking(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	slog.Info("booking evaluated",
		"record_id", stored.RecordID,
		"reference", stored.Reference,
		"score", stored.Score,
		"status", stored.Status,
	)

	s.publish(ctx, domain.TopicBookingCreated, stored)

	return stored, nil
}

// OverrideStatus applies an admin decision to a booking under review.
// Only Confirmed and Rejected are valid targets, and only bookings
// still transitionable accept them; the repository enforces both.
func (s *Service) OverrideStatus(ctx context.Context, recordID string, target domain.BookingStatus) (*domain.Booking, error) {
	if err := s.repo.UpdateBookingStatus(ctx, recordID, target); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, recordID)
	if err != nil {
		return nil, err
	}

	slog.Info("booking status overridden",
		"record_id", booking.RecordID,
		"reference", booking.Reference,
		"status", booking.Status,
	)

	s.publish(ctx, domain.TopicBookingUpdated, booking)

	return booking, nil
}

// publish emits a change event. Failures are logged and swallowed:
// the write already happened and must not be rolled back for a
// notification problem.
func (s *Service) publish(ctx context.Context, topic string, b *domain.Booking) {
	event := BookingEvent{
		RecordID:  b.RecordID,
		Reference: b.Reference,
		Status:    b.Status,
		Score:     b.Score,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal booking event",
			"topic", topic,
			"record_id", b.RecordID,
			"error", err,
		)
		return
	}

	if err := s.bus.Publish(ctx, topic, payload); err != nil {
		slog.Error("failed to publish booking event",
			"topic", topic,
			"record_id", b.RecordID,
			"error", err,
		)
	}
}

func validateRequest(req *domain.BookingRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request body is required", ErrInvalidRequest)
	}
	if req.GuestName == "" {
		return fmt.Errorf("%w: guestName is required", ErrInvalidRequest)
	}
	if req.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}
	if req.HotelName == "" {
		return fmt.Errorf("%w: hotelName is required", ErrInvalidRequest)
	}
	if req.RoomType == "" {
		return fmt.Errorf("%w: roomType is required", ErrInvalidRequest)
	}
	if req.CheckIn == "" || req.CheckOut == "" {
		return fmt.Errorf("%w: checkIn and checkOut are required", ErrInvalidRequest)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	return nil
}
