package statestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyDeviceID    = "securestay:device:id"
	keyLastAttempt = "securestay:device:%s:last_attempt"

	// Attempt timestamps only matter inside the rapid-attempt window;
	// a day of retention is generous.
	attemptTTL = 24 * time.Hour
)

// RedisStore is the Redis-backed state store used in the Pro tier,
// where multiple frontends share the same device state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed state store.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// DeviceID returns the stored device identifier, generating one atomically
// on first use via SETNX.
func (s *RedisStore) DeviceID(ctx context.Context) (string, error) {
	id := uuid.New().String()

	set, err := s.client.SetNX(ctx, keyDeviceID, id, 0).Result()
	if err != nil {
		return "", err
	}
	if set {
		return id, nil
	}

	return s.client.Get(ctx, keyDeviceID).Result()
}

// LastAttempt returns the previous attempt timestamp for the device.
func (s *RedisStore) LastAttempt(ctx context.Context, deviceID string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, fmt.Sprintf(keyLastAttempt, deviceID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt last-attempt value %q: %w", val, err)
	}
	return time.UnixMilli(millis).UTC(), true, nil
}

// TouchAttempt overwrites the last-attempt timestamp.
func (s *RedisStore) TouchAttempt(ctx context.Context, deviceID string, t time.Time) error {
	key := fmt.Sprintf(keyLastAttempt, deviceID)
	return s.client.Set(ctx, key, strconv.FormatInt(t.UnixMilli(), 10), attemptTTL).Err()
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
