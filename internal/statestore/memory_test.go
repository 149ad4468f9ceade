package statestore

import (
	"context"
	"testing"
	"time"

	"github.com/Osaseye/SECURE-STAY/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("DeviceIDStable", func(t *testing.T) {
		first, err := store.DeviceID(ctx)
		if err != nil {
			t.Fatalf("DeviceID failed: %v", err)
		}
		if first == "" {
			t.Fatal("expected a generated device ID")
		}

		second, err := store.DeviceID(ctx)
		if err != nil {
			t.Fatalf("DeviceID failed: %v", err)
		}
		if second != first {
			t.Errorf("expected stable device ID, got %s then %s", first, second)
		}
	})

	t.Run("NoAttemptRecorded", func(t *testing.T) {
		_, ok, err := store.LastAttempt(ctx, "device-x")
		if err != nil {
			t.Fatalf("LastAttempt failed: %v", err)
		}
		if ok {
			t.Error("expected ok=false before any attempt")
		}
	})

	t.Run("TouchOverwrites", func(t *testing.T) {
		t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		t2 := t1.Add(5 * time.Minute)

		if err := store.TouchAttempt(ctx, "device-x", t1); err != nil {
			t.Fatalf("TouchAttempt failed: %v", err)
		}
		if err := store.TouchAttempt(ctx, "device-x", t2); err != nil {
			t.Fatalf("TouchAttempt failed: %v", err)
		}

		got, ok, err := store.LastAttempt(ctx, "device-x")
		if err != nil {
			t.Fatalf("LastAttempt failed: %v", err)
		}
		if !ok {
			t.Fatal("expected a recorded attempt")
		}
		if !got.Equal(t2) {
			t.Errorf("expected last attempt %v, got %v", t2, got)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func TestUnsupportedStateStoreType(t *testing.T) {
	_, err := New(domain.StateStoreConfig{Type: "dynamo"})
	if err == nil {
		t.Error("expected error for unsupported state store type")
	}
}
