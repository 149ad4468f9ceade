package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Osaseye/SECURE-STAY/internal/bus"
	"github.com/Osaseye/SECURE-STAY/internal/domain"
	"github.com/Osaseye/SECURE-STAY/internal/repository"
	"github.com/Osaseye/SECURE-STAY/internal/scorer"
	"github.com/Osaseye/SECURE-STAY/internal/signals"
	"github.com/Osaseye/SECURE-STAY/internal/statestore"
)

func newTestRepo(t *testing.T) *repository.SQLRepository {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "securestay-pipeline-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

// scoringServer returns a scoring service stub that always responds
// with the given probability.
func scoringServer(t *testing.T, probability float64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"risk_score": %g}`, probability)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, scorerURL string) (*Service, *bus.ChannelBus) {
	t.Helper()

	repo := newTestRepo(t)
	eventBus := bus.NewChannelBus(100)
	t.Cleanup(func() { eventBus.Close() })

	extractor := signals.New(statestore.NewMemoryStore(), func() time.Time {
		// Mid-afternoon, outside the odd-hour window.
		return time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	})

	client := scorer.New(domain.ScorerConfig{
		BaseURL: scorerURL,
		Timeout: time.Second,
		Retries: 1,
	})

	return New(extractor, client, repo, eventBus), eventBus
}

func validRequest() *domain.BookingRequest {
	return &domain.BookingRequest{
		GuestName:      "Ada Obi",
		Email:          "ada@example.com",
		Phone:          "+2348012345678",
		HotelName:      "Grand Horizon Hotel",
		RoomType:       "Standard Room",
		CheckIn:        "2026-03-04",
		CheckOut:       "2026-03-06",
		Amount:         120_000,
		Country:        "NG",
		BillingCountry: "NG",
	}
}

func TestSubmitBookingLowRisk(t *testing.T) {
	srv := scoringServer(t, 0.05)
	svc, eventBus := newTestService(t, srv.URL)
	ctx := context.Background()

	var published atomic.Int32
	eventBus.Subscribe(ctx, domain.TopicBookingCreated, func(ctx context.Context, msg *domain.Message) error {
		var event BookingEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			t.Errorf("failed to unmarshal event: %v", err)
			return nil
		}
		if event.Status != domain.StatusConfirmed {
			t.Errorf("event status = %q, want Confirmed", event.Status)
		}
		published.Add(1)
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	booking, err := svc.SubmitBooking(ctx, validRequest())
	if err != nil {
		t.Fatalf("SubmitBooking failed: %v", err)
	}

	if booking.Score != 5 {
		t.Errorf("expected score 5, got %d", booking.Score)
	}
	if booking.Status != domain.StatusConfirmed {
		t.Errorf("expected Confirmed, got %q", booking.Status)
	}
	if booking.RecordID == "" {
		t.Error("expected persisted record ID")
	}
	if matched, _ := regexp.MatchString(`^REF-\d{6}$`, booking.Reference); !matched {
		t.Errorf("reference %q does not match REF-######", booking.Reference)
	}
	if len(booking.Reasons) == 0 {
		t.Error("expected at least one reason")
	}

	time.Sleep(50 * time.Millisecond)
	if published.Load() != 1 {
		t.Errorf("expected 1 created event, got %d", published.Load())
	}
}

func TestSubmitBookingHighRisk(t *testing.T) {
	srv := scoringServer(t, 0.85)
	svc, _ := newTestService(t, srv.URL)

	req := validRequest()
	req.BillingCountry = "US"

	booking, err := svc.SubmitBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("SubmitBooking failed: %v", err)
	}

	if booking.Score != 85 {
		t.Errorf("expected score 85, got %d", booking.Score)
	}
	if booking.Status != domain.StatusRejected {
		t.Errorf("expected Rejected, got %q", booking.Status)
	}
	if !booking.Signals.CountryMismatch {
		t.Error("expected country mismatch signal")
	}
}

func TestSubmitBookingScorerDown(t *testing.T) {
	// Point the client at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc, _ := newTestService(t, srv.URL)

	booking, err := svc.SubmitBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("SubmitBooking must not fail on scoring outage: %v", err)
	}

	if booking.Score != domain.FallbackScore {
		t.Errorf("expected fallback score %d, got %d", domain.FallbackScore, booking.Score)
	}
	if booking.Status != domain.StatusConfirmed {
		t.Errorf("expected Confirmed at fallback score, got %q", booking.Status)
	}
	if booking.RecordID == "" {
		t.Error("booking must still be persisted during a scoring outage")
	}
}

func TestSubmitBookingValidation(t *testing.T) {
	srv := scoringServer(t, 0.05)
	svc, _ := newTestService(t, srv.URL)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*domain.BookingRequest)
	}{
		{"MissingGuestName", func(r *domain.BookingRequest) { r.GuestName = "" }},
		{"MissingEmail", func(r *domain.BookingRequest) { r.Email = "" }},
		{"MissingHotel", func(r *domain.BookingRequest) { r.HotelName = "" }},
		{"MissingRoomType", func(r *domain.BookingRequest) { r.RoomType = "" }},
		{"MissingCheckIn", func(r *domain.BookingRequest) { r.CheckIn = "" }},
		{"ZeroAmount", func(r *domain.BookingRequest) { r.Amount = 0 }},
		{"NegativeAmount", func(r *domain.BookingRequest) { r.Amount = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := svc.SubmitBooking(ctx, req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}

	t.Run("NilRequest", func(t *testing.T) {
		_, err := svc.SubmitBooking(ctx, nil)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got: %v", err)
		}
	})
}

func TestOverrideStatus(t *testing.T) {
	srv := scoringServer(t, 0.5) // Under Review
	svc, eventBus := newTestService(t, srv.URL)
	ctx := context.Background()

	var updated atomic.Int32
	eventBus.Subscribe(ctx, domain.TopicBookingUpdated, func(ctx context.Context, msg *domain.Message) error {
		updated.Add(1)
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	booking, err := svc.SubmitBooking(ctx, validRequest())
	if err != nil {
		t.Fatalf("SubmitBooking failed: %v", err)
	}
	if booking.Status != domain.StatusUnderReview {
		t.Fatalf("expected Under Review, got %q", booking.Status)
	}

	t.Run("ConfirmUnderReview", func(t *testing.T) {
		got, err := svc.OverrideStatus(ctx, booking.RecordID, domain.StatusConfirmed)
		if err != nil {
			t.Fatalf("OverrideStatus failed: %v", err)
		}
		if got.Status != domain.StatusConfirmed {
			t.Errorf("expected Confirmed, got %q", got.Status)
		}

		time.Sleep(50 * time.Millisecond)
		if updated.Load() != 1 {
			t.Errorf("expected 1 updated event, got %d", updated.Load())
		}
	})

	t.Run("TerminalStatusRejectsOverride", func(t *testing.T) {
		_, err := svc.OverrideStatus(ctx, booking.RecordID, domain.StatusRejected)
		if !errors.Is(err, repository.ErrNotTransitionable) {
			t.Errorf("expected ErrNotTransitionable, got: %v", err)
		}

		time.Sleep(50 * time.Millisecond)
		if updated.Load() != 1 {
			t.Errorf("no event expected for a failed override, got %d", updated.Load())
		}
	})

	t.Run("MissingRecord", func(t *testing.T) {
		_, err := svc.OverrideStatus(ctx, "nonexistent", domain.StatusConfirmed)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestReferenceFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^REF-\d{6}$`)
	for i := 0; i < 100; i++ {
		ref := newReference()
		if !pattern.MatchString(ref) {
			t.Fatalf("reference %q does not match REF-######", ref)
		}
	}
}
