package domain

// AggregateSnapshot is the derived dashboard view of the booking stream.
// Recomputed in full on every change; never persisted and never the
// source of truth.
type AggregateSnapshot struct {
	TotalBookings int `json:"totalBookings"`

	// ActiveAlerts counts bookings under review or with score > 20.
	ActiveAlerts int `json:"activeAlerts"`

	// FraudAttempts counts bookings with score > 80.
	FraudAttempts int `json:"fraudAttempts"`

	// VerificationRate is confirmed/total as a percentage.
	// 100 when the stream is empty.
	VerificationRate float64 `json:"verificationRate"`

	CountByStatus map[BookingStatus]int `json:"countByStatus"`

	// Distribution holds the score buckets; empty buckets are omitted and
	// an empty stream yields a single "No Data" placeholder so chart
	// rendering never receives an empty series.
	Distribution []ScoreBucket `json:"distribution"`

	// Recent holds the newest bookings, at most RecentLimit, taken from
	// the already-descending stream without re-sorting.
	Recent []*Booking `json:"recent"`
}

// ScoreBucket is one slice of the risk distribution chart.
type ScoreBucket struct {
	Name  string `json:"name"`
	Count int    `json:"value"`
}

// Distribution bucket names.
const (
	BucketSafe     = "Safe"
	BucketModerate = "Under Review"
	BucketCritical = "Critical"
	BucketNoData   = "No Data"
)

// RecentLimit bounds the recent-bookings slice on the dashboard.
const RecentLimit = 5
