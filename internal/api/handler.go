package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Osaseye/SECURE-STAY/internal/aggregate"
	"github.com/Osaseye/SECURE-STAY/internal/domain"
	"github.com/Osaseye/SECURE-STAY/internal/feed"
	"github.com/Osaseye/SECURE-STAY/internal/pipeline"
	"github.com/Osaseye/SECURE-STAY/internal/repository"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	pipeline *pipeline.Service
	repo     domain.Repository
	state    domain.StateStore
	bus      domain.EventBus
	feed     *feed.Feed
	version  string

	// reviewDelay pauses the guest-facing response after the booking is
	// already persisted. Zero disables it.
	reviewDelay time.Duration
}

// NewHandler creates a new API handler.
func NewHandler(svc *pipeline.Service, repo domain.Repository, state domain.StateStore, bus domain.EventBus, liveFeed *feed.Feed, version string, reviewDelay time.Duration) *Handler {
	return &Handler{
		pipeline:    svc,
		repo:        repo,
		state:       state,
		bus:         bus,
		feed:        liveFeed,
		version:     version,
		reviewDelay: reviewDelay,
	}
}

// StatusRequest is the request body for POST /admin/bookings/{id}/status.
type StatusRequest struct {
	Status domain.BookingStatus `json:"status"`
}

// CreateBooking handles POST /bookings: the guest checkout path.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	booking, err := h.pipeline.SubmitBooking(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	// The record is already persisted and visible to the dashboard;
	// this only paces the guest-facing confirmation screen.
	if h.reviewDelay > 0 {
		select {
		case <-time.After(h.reviewDelay):
		case <-ctx.Done():
			return
		}
	}

	writeJSON(w, http.StatusCreated, booking)
}

// GetBookingByReference handles GET /bookings/{ref}: guest-side lookup
// by the REF-###### identifier from the confirmation screen.
func (h *Handler) GetBookingByReference(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "booking reference is required",
		})
		return
	}

	booking, err := h.repo.GetBookingByReference(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// ListBookings handles GET /admin/bookings: the full stream, newest first.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.repo.ListBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking handles GET /admin/bookings/{id}: lookup by record ID.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if recordID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "booking id is required",
		})
		return
	}

	booking, err := h.repo.GetBooking(r.Context(), recordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// UpdateStatus handles POST /admin/bookings/{id}/status: the admin
// decision on a booking under review.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if recordID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "booking id is required",
		})
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	booking, err := h.pipeline.OverrideStatus(r.Context(), recordID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// Dashboard handles GET /admin/dashboard: a one-shot aggregate snapshot.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.repo.ListBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, aggregate.Compute(bookings))
}

// Stream handles GET /admin/stream: a Server-Sent Events stream of
// aggregate snapshots, one event per booking change.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "streaming not supported",
		})
		return
	}

	ctx := r.Context()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub, err := h.feed.Subscribe(ctx, func(bookings []*domain.Booking) {
		snap := aggregate.Compute(bookings)
		data, err := json.Marshal(snap)
		if err != nil {
			slog.Error("failed to marshal dashboard snapshot", "error", err)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	})
	if err != nil {
		slog.Error("failed to subscribe to booking feed", "error", err)
		return
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	if h.state != nil {
		if err := h.state.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest),
		errors.Is(err, repository.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "booking not found",
		})
	case errors.Is(err, repository.ErrNotTransitionable):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "booking status can no longer be changed",
		})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
