package repository

// Schema definitions for the SecureStay booking store.
// Compatible with both SQLite and PostgreSQL.

// The reference column is indexed; guest tracking resolves the human
// REF-###### identifier on every lookup.
const schemaBookings = `
CREATE TABLE IF NOT EXISTS bookings (
    id TEXT PRIMARY KEY,
    reference TEXT NOT NULL,
    guest_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT,
    hotel_name TEXT,
    room_type TEXT,
    check_in TEXT,
    check_out TEXT,
    amount BIGINT NOT NULL,
    channel TEXT,
    ip_address TEXT,
    device_id TEXT,
    signals TEXT NOT NULL,
    score INTEGER NOT NULL,
    status TEXT NOT NULL,
    reasons TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bookings_reference ON bookings(reference);
CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at);
CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaBookings,
	}
}
