// Package domain defines the core types and interfaces for SecureStay.
package domain

import (
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	// StatusConfirmed means the booking passed risk evaluation (score <= 20).
	StatusConfirmed BookingStatus = "Confirmed"

	// StatusUnderReview means the booking needs manual review (20 < score <= 80).
	StatusUnderReview BookingStatus = "Under Review"

	// StatusRejected means the booking was blocked (score > 80).
	StatusRejected BookingStatus = "Rejected"

	// StatusPending is a legacy value still present on old records.
	// Treated like Under Review for admin transitions.
	StatusPending BookingStatus = "Pending"
)

// Risk score thresholds. score <= ThresholdConfirm is Confirmed,
// score > ThresholdReject is Rejected, everything between is Under Review.
const (
	ThresholdConfirm = 20
	ThresholdReject  = 80
)

// FallbackScore is assigned when the scoring service is unreachable.
// Kept low so a scoring outage never blocks checkout.
const FallbackScore = 10

// Booking is the aggregate root of the risk-evaluation pipeline.
// RecordID is the storage identity; Reference is the human-readable
// identifier handed to the guest (REF-######). CreatedAt is assigned by
// the repository at write time, never by the caller.
type Booking struct {
	RecordID  string `json:"recordId"`
	Reference string `json:"reference"`

	// Guest identity
	GuestName string `json:"guestName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	// Stay details
	HotelName string `json:"hotelName"`
	RoomType  string `json:"roomType"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
	Amount    int64  `json:"amount"`

	Channel   string `json:"channel"`
	IPAddress string `json:"ipAddress,omitempty"`
	DeviceID  string `json:"deviceId,omitempty"`

	// Risk evaluation result
	Signals BookingSignals `json:"signals"`
	Score   int            `json:"score"`
	Status  BookingStatus  `json:"status"`
	Reasons []string       `json:"reasons"`

	CreatedAt time.Time `json:"createdAt"`
}

// BookingRequest is the guest submission payload.
type BookingRequest struct {
	GuestName      string `json:"guestName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	HotelName      string `json:"hotelName"`
	RoomType       string `json:"roomType"`
	CheckIn        string `json:"checkIn"`
	CheckOut       string `json:"checkOut"`
	Amount         int64  `json:"amount"`
	Country        string `json:"country"`
	BillingCountry string `json:"billingCountry"`
	Channel        string `json:"channel,omitempty"`
	IPAddress      string `json:"ipAddress,omitempty"`
}

// Transitionable reports whether an admin may still move this booking
// to Confirmed or Rejected. Confirmed and Rejected are terminal.
func (b *Booking) Transitionable() bool {
	return b.Status == StatusUnderReview || b.Status == StatusPending
}
