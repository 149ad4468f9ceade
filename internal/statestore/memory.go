package statestore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a thread-safe in-memory state store.
// Used as the Community tier backend and in tests.
type MemoryStore struct {
	mu       sync.Mutex
	deviceID string
	attempts map[string]time.Time
}

// NewMemoryStore creates an empty in-memory state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make(map[string]time.Time),
	}
}

// DeviceID returns the device identifier, generating one on first use.
func (s *MemoryStore) DeviceID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deviceID == "" {
		s.deviceID = uuid.New().String()
	}
	return s.deviceID, nil
}

// LastAttempt returns the previous attempt timestamp for the device.
func (s *MemoryStore) LastAttempt(ctx context.Context, deviceID string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.attempts[deviceID]
	return t, ok, nil
}

// TouchAttempt overwrites the last-attempt timestamp.
func (s *MemoryStore) TouchAttempt(ctx context.Context, deviceID string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[deviceID] = t
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close releases nothing; present to satisfy the interface.
func (s *MemoryStore) Close() error {
	return nil
}
