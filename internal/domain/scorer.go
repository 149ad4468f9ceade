package domain

import (
	"context"
	"time"
)

// Scorer obtains a 0-100 risk score for a signal vector. Implementations
// must always succeed from the caller's point of view: transport
// failures, timeouts, and malformed responses resolve to FallbackScore
// so that a scoring outage never blocks checkout.
type Scorer interface {
	Score(ctx context.Context, signals BookingSignals) int
}

// ScorerConfig holds configuration for the scoring service client.
type ScorerConfig struct {
	// BaseURL of the scoring microservice; the client POSTs to /predict.
	BaseURL string

	// Timeout is the per-attempt deadline. Zero means the default (5s).
	Timeout time.Duration

	// Retries is the number of additional attempts after the first
	// failure. The design allows exactly one retry before falling back.
	Retries int
}
