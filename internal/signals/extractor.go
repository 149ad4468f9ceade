// Package signals derives the fixed-shape feature vector from a booking
// attempt and the device-scoped client state.
package signals

import (
	"context"
	"log/slog"
	"time"

	"github.com/Osaseye/SECURE-STAY/internal/domain"
)

// HighValueThreshold is the booking amount above which the high_value
// signal trips (currency-minor-unit agnostic).
const HighValueThreshold = 500_000

// RapidAttemptWindow is the maximum elapsed time since the previous
// attempt for the rapid_attempts signal to trip.
const RapidAttemptWindow = 10 * time.Minute

// Odd-hour boundaries: local wall-clock hour >= 23 or <= 6.
const (
	oddHourStart = 23
	oddHourEnd   = 6
)

// AttemptInput is the slice of the submission the extractor looks at.
type AttemptInput struct {
	Amount         int64
	Country        string
	BillingCountry string
}

// Extractor computes BookingSignals. The clock is injected so that the
// time-dependent signals (odd_hour, rapid_attempts) are deterministic
// under test.
type Extractor struct {
	state domain.StateStore
	now   func() time.Time
}

// New creates an extractor over the given state store. A nil clock
// defaults to time.Now.
func New(state domain.StateStore, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{state: state, now: now}
}

// Extract derives the signal vector for one attempt and returns the
// device identifier it was derived for. Side effect: the device's
// last-attempt timestamp is always overwritten, regardless of what the
// rest of the pipeline decides.
//
// State-store failures degrade to zero-valued signals rather than
// blocking the booking; extraction itself never fails.
func (e *Extractor) Extract(ctx context.Context, in AttemptInput) (domain.BookingSignals, string) {
	now := e.now()

	s := domain.BookingSignals{
		CountryMismatch:  in.Country != in.BillingCountry,
		OddHour:          isOddHour(now.Hour()),
		HighValueBooking: in.Amount > HighValueThreshold,
		// device_change and ip_risk are never computed in this design;
		// the scorer still expects them in the vector shape.
		DeviceChange: false,
		IPRisk:       false,
	}

	deviceID, err := e.state.DeviceID(ctx)
	if err != nil {
		slog.Warn("state store unavailable, skipping velocity signal", "error", err)
		return s, ""
	}

	last, ok, err := e.state.LastAttempt(ctx, deviceID)
	if err != nil {
		slog.Warn("failed to read last attempt", "device_id", deviceID, "error", err)
	} else if ok && now.Sub(last) < RapidAttemptWindow {
		s.RapidAttempts = true
	}

	if err := e.state.TouchAttempt(ctx, deviceID, now); err != nil {
		slog.Warn("failed to record attempt timestamp", "device_id", deviceID, "error", err)
	}

	return s, deviceID
}

func isOddHour(hour int) bool {
	return hour >= oddHourStart || hour <= oddHourEnd
}
