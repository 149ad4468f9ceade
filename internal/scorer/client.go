// Package scorer provides the client for the external risk scoring
// microservice.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/Osaseye/SECURE-STAY/internal/domain"
)

const (
	predictPath    = "/predict"
	defaultTimeout = 5 * time.Second

	// Response bodies are a single small JSON object; anything bigger is
	// already malformed.
	maxResponseBytes = 1 << 16
)

// Client calls the scoring endpoint over HTTP. Score never fails from
// the caller's point of view: every transport or decode problem resolves
// to the fallback score after the configured retries are exhausted.
type Client struct {
	baseURL string
	http    *http.Client
	retries int
}

// predictRequest mirrors the model's training vector: six 0/1 integers.
type predictRequest struct {
	CountryMismatch  int `json:"country_mismatch"`
	RapidAttempts    int `json:"rapid_attempts"`
	OddHour          int `json:"odd_hour"`
	HighValueBooking int `json:"high_value_booking"`
	DeviceChange     int `json:"device_change"`
	IPRisk           int `json:"ip_risk"`
}

type predictResponse struct {
	RiskScore *float64 `json:"risk_score"`
}

// New creates a scoring client.
func New(cfg domain.ScorerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		retries: cfg.Retries,
	}
}

// Score obtains a risk score in [0,100] for the signal vector. The call
// is bounded by the configured per-attempt timeout and retried once on
// failure; after that it returns domain.FallbackScore.
func (c *Client) Score(ctx context.Context, signals domain.BookingSignals) int {
	v := signals.Vector()
	body, err := json.Marshal(predictRequest{
		CountryMismatch:  v[0],
		RapidAttempts:    v[1],
		OddHour:          v[2],
		HighValueBooking: v[3],
		DeviceChange:     v[4],
		IPRisk:           v[5],
	})
	if err != nil {
		// Cannot happen for a fixed struct; fall back anyway.
		return domain.FallbackScore
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		score, err := c.predict(ctx, body)
		if err == nil {
			return score
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	slog.Warn("scoring service unavailable, using fallback score",
		"error", lastErr,
		"fallback", domain.FallbackScore,
	)
	return domain.FallbackScore
}

func (c *Client) predict(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return 0, fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return 0, fmt.Errorf("malformed scoring response: %w", err)
	}
	if out.RiskScore == nil {
		return 0, fmt.Errorf("scoring response missing risk_score field")
	}

	p := *out.RiskScore
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("risk_score %v out of range [0,1]", p)
	}

	return int(math.Round(p * 100)), nil
}
