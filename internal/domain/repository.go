package domain

import (
	"context"
	"time"
)

// Repository defines the persistence contract for bookings.
//
// CreateBooking assigns RecordID and CreatedAt server-side so that
// ordering by creation time stays consistent under client clock skew.
// GetBookingByReference resolves the human REF-###### identifier via an
// indexed column; when duplicate references exist (the generator does
// not check for collisions) the earliest created record wins.
type Repository interface {
	CreateBooking(ctx context.Context, b *Booking) (*Booking, error)
	GetBooking(ctx context.Context, recordID string) (*Booking, error)
	GetBookingByReference(ctx context.Context, ref string) (*Booking, error)

	// ListBookings returns all bookings ordered by creation time descending.
	ListBookings(ctx context.Context) ([]*Booking, error)

	// UpdateBookingStatus performs the admin override. It only succeeds
	// when the stored status is Under Review or the legacy Pending value;
	// otherwise it returns ErrNotTransitionable without modifying the row.
	UpdateBookingStatus(ctx context.Context, recordID string, status BookingStatus) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
