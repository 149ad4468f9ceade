package domain

// BookingSignals is the fixed six-field feature vector sent to the
// scoring service. All fields are derived, never user-supplied, and are
// serialized as 0/1 integers on the wire.
//
// DeviceChange and IPRisk are always false in the current design: the
// scorer was trained on a six-field vector so they stay in the shape,
// but nothing computes them yet.
type BookingSignals struct {
	CountryMismatch  bool `json:"country_mismatch"`
	RapidAttempts    bool `json:"rapid_attempts"`
	OddHour          bool `json:"odd_hour"`
	HighValueBooking bool `json:"high_value_booking"`
	DeviceChange     bool `json:"device_change"`
	IPRisk           bool `json:"ip_risk"`
}

// Vector returns the signals as 0/1 integers in the order the scoring
// model was trained on.
func (s BookingSignals) Vector() [6]int {
	return [6]int{
		boolToInt(s.CountryMismatch),
		boolToInt(s.RapidAttempts),
		boolToInt(s.OddHour),
		boolToInt(s.HighValueBooking),
		boolToInt(s.DeviceChange),
		boolToInt(s.IPRisk),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
