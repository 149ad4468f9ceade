// Package aggregate derives dashboard metrics from the booking stream.
package aggregate

import (
	"github.com/Osaseye/SECURE-STAY/internal/domain"
)

// Compute derives the full dashboard snapshot from a booking list.
// The input must already be ordered newest first; the recent slice is
// taken from the head without re-sorting. Pure and deterministic, so
// recomputing on every change is safe.
func Compute(bookings []*domain.Booking) *domain.AggregateSnapshot {
	snap := &domain.AggregateSnapshot{
		TotalBookings: len(bookings),
		CountByStatus: make(map[domain.BookingStatus]int),
	}

	var safe, moderate, critical int
	for _, b := range bookings {
		snap.CountByStatus[b.Status]++

		if b.Status == domain.StatusUnderReview || b.Score > domain.ThresholdConfirm {
			snap.ActiveAlerts++
		}
		if b.Score > domain.ThresholdReject {
			snap.FraudAttempts++
		}

		switch {
		case b.Score > domain.ThresholdReject:
			critical++
		case b.Score > domain.ThresholdConfirm:
			moderate++
		default:
			safe++
		}
	}

	if len(bookings) == 0 {
		// An empty stream reads as fully verified, not as zero percent.
		snap.VerificationRate = 100
	} else {
		confirmed := snap.CountByStatus[domain.StatusConfirmed]
		snap.VerificationRate = float64(confirmed) / float64(len(bookings)) * 100
	}

	snap.Distribution = distribution(safe, moderate, critical)

	limit := domain.RecentLimit
	if len(bookings) < limit {
		limit = len(bookings)
	}
	snap.Recent = bookings[:limit]

	return snap
}

// distribution builds the score chart series. Empty buckets are
// dropped, and a fully empty series becomes a single placeholder so
// charts always have something to draw.
func distribution(safe, moderate, critical int) []domain.ScoreBucket {
	buckets := make([]domain.ScoreBucket, 0, 3)
	if safe > 0 {
		buckets = append(buckets, domain.ScoreBucket{Name: domain.BucketSafe, Count: safe})
	}
	if moderate > 0 {
		buckets = append(buckets, domain.ScoreBucket{Name: domain.BucketModerate, Count: moderate})
	}
	if critical > 0 {
		buckets = append(buckets, domain.ScoreBucket{Name: domain.BucketCritical, Count: critical})
	}
	if len(buckets) == 0 {
		buckets = append(buckets, domain.ScoreBucket{Name: domain.BucketNoData, Count: 1})
	}
	return buckets
}
