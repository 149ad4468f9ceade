// Package statestore provides device-scoped client state backends.
package statestore

import (
	"fmt"

	"github.com/Osaseye/SECURE-STAY/internal/domain"
)

// New creates a state store based on configuration.
// For Community tier: returns the in-memory store.
// For Pro tier: returns the Redis-backed store.
func New(cfg domain.StateStoreConfig) (domain.StateStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil

	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported state store type: %s", cfg.Type)
	}
}
