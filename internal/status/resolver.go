// Package status maps risk scores onto reservation statuses and builds
// the human-readable rationale shown to admins.
package status

import (
	"github.com/Osaseye/SECURE-STAY/internal/domain"
)

// Reason strings, in trigger priority order. DeviceChange has no mapped
// reason because the signal is never computed.
const (
	ReasonIPRisk          = "High Risk IP detected"
	ReasonOddHour         = "Booking placed at unusual hour"
	ReasonRapidAttempts   = "Velocity check failed (Rapid attempts)"
	ReasonCountryMismatch = "Billing country does not match residence"
	ReasonDefault         = "Standard transaction pattern"
)

// Resolve maps a 0-100 risk score to a reservation status and assembles
// the rationale list from the triggered signals. Deterministic: the same
// score always yields the same status.
func Resolve(score int, signals domain.BookingSignals) (domain.BookingStatus, []string) {
	var st domain.BookingStatus
	switch {
	case score > domain.ThresholdReject:
		st = domain.StatusRejected
	case score > domain.ThresholdConfirm:
		st = domain.StatusUnderReview
	default:
		st = domain.StatusConfirmed
	}

	return st, Reasons(signals)
}

// Reasons returns the reason strings for the triggered signals in fixed
// priority order, or the single default reason when nothing triggered.
func Reasons(signals domain.BookingSignals) []string {
	var reasons []string
	if signals.IPRisk {
		reasons = append(reasons, ReasonIPRisk)
	}
	if signals.OddHour {
		reasons = append(reasons, ReasonOddHour)
	}
	if signals.RapidAttempts {
		reasons = append(reasons, ReasonRapidAttempts)
	}
	if signals.CountryMismatch {
		reasons = append(reasons, ReasonCountryMismatch)
	}

	if len(reasons) == 0 {
		return []string{ReasonDefault}
	}
	return reasons
}
