package domain

import (
	"context"
	"time"
)

// StateStore is the device-scoped client state behind the rapid-attempt
// signal. Two keys per device: a random identifier generated once and
// reused, and the timestamp of the most recent booking attempt.
// Supports in-memory (Community) or Redis (Pro) backends.
type StateStore interface {
	// DeviceID returns the stored device identifier, generating and
	// persisting a new one on first use.
	DeviceID(ctx context.Context) (string, error)

	// LastAttempt returns the previous attempt timestamp for the device,
	// with ok=false when no attempt has been recorded.
	LastAttempt(ctx context.Context, deviceID string) (t time.Time, ok bool, err error)

	// TouchAttempt overwrites the last-attempt timestamp. Called on every
	// submission regardless of outcome.
	TouchAttempt(ctx context.Context, deviceID string, t time.Time) error

	Ping(ctx context.Context) error
	Close() error
}

// StateStoreConfig holds configuration for state store initialization.
type StateStoreConfig struct {
	// Type is the store type: "memory" or "redis"
	Type string

	// Redis settings (Pro tier)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}
