package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Osaseye/SECURE-STAY/internal/domain"
)

func newTestClient(url string, retries int) *Client {
	return New(domain.ScorerConfig{
		BaseURL: url,
		Timeout: 2 * time.Second,
		Retries: retries,
	})
}

func scoringServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestScoreSuccess(t *testing.T) {
	tests := []struct {
		risk float64
		want int
	}{
		{0.05, 5},
		{0.85, 85},
		{0.0, 0},
		{1.0, 100},
		{0.205, 21}, // rounds to nearest
	}

	for _, tt := range tests {
		srv := scoringServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/predict" {
				t.Errorf("expected POST /predict, got %s %s", r.Method, r.URL.Path)
			}
			fmt.Fprintf(w, `{"risk_score": %v}`, tt.risk)
		})

		got := newTestClient(srv.URL, 0).Score(context.Background(), domain.BookingSignals{})
		if got != tt.want {
			t.Errorf("risk_score %v: score = %d, want %d", tt.risk, got, tt.want)
		}
	}
}

func TestScoreSendsSignalVector(t *testing.T) {
	var received map[string]int
	srv := scoringServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		fmt.Fprint(w, `{"risk_score": 0.5}`)
	})

	signals := domain.BookingSignals{
		CountryMismatch:  true,
		OddHour:          true,
		HighValueBooking: true,
	}
	newTestClient(srv.URL, 0).Score(context.Background(), signals)

	want := map[string]int{
		"country_mismatch":   1,
		"rapid_attempts":     0,
		"odd_hour":           1,
		"high_value_booking": 1,
		"device_change":      0,
		"ip_risk":            0,
	}
	for k, v := range want {
		if received[k] != v {
			t.Errorf("field %s = %d, want %d", k, received[k], v)
		}
	}
	if len(received) != 6 {
		t.Errorf("expected exactly 6 fields, got %d", len(received))
	}
}

func TestScoreFallback(t *testing.T) {
	t.Run("Non200Status", func(t *testing.T) {
		srv := scoringServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		})

		got := newTestClient(srv.URL, 0).Score(context.Background(), domain.BookingSignals{})
		if got != domain.FallbackScore {
			t.Errorf("score = %d, want fallback %d", got, domain.FallbackScore)
		}
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv := scoringServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"risk_score": "not a number"`)
		})

		got := newTestClient(srv.URL, 0).Score(context.Background(), domain.BookingSignals{})
		if got != domain.FallbackScore {
			t.Errorf("score = %d, want fallback %d", got, domain.FallbackScore)
		}
	})

	t.Run("MissingField", func(t *testing.T) {
		srv := scoringServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"probability": 0.9}`)
		})

		got := newTestClient(srv.URL, 0).Score(context.Background(), domain.BookingSignals{})
		if got != domain.FallbackScore {
			t.Errorf("score = %d, want fallback %d", got, domain.FallbackScore)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		srv := scoringServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"risk_score": 3.5}`)
		})

		got := newTestClient(srv.URL, 0).Score(context.Background(), domain.BookingSignals{})
		if got != domain.FallbackScore {
			t.Errorf("score = %d, want fallback %d", got, domain.FallbackScore)
		}
	})

	t.Run("ServiceDown", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close() // connection refused from here on

		got := newTestClient(url, 1).Score(context.Background(), domain.BookingSignals{})
		if got != domain.FallbackScore {
			t.Errorf("score = %d, want fallback %d", got, domain.FallbackScore)
		}
	})
}

func TestScoreRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := scoringServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "transient", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"risk_score": 0.42}`)
	})

	got := newTestClient(srv.URL, 1).Score(context.Background(), domain.BookingSignals{})
	if got != 42 {
		t.Errorf("score = %d, want 42 from retried call", got)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestScoreRespectsContextCancellation(t *testing.T) {
	var calls atomic.Int32
	srv := scoringServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "slow", http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := newTestClient(srv.URL, 3).Score(ctx, domain.BookingSignals{})
	if got != domain.FallbackScore {
		t.Errorf("score = %d, want fallback %d", got, domain.FallbackScore)
	}
	if calls.Load() > 1 {
		t.Errorf("cancelled context must stop retries, saw %d attempts", calls.Load())
	}
}
