// Package repository provides booking persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Osaseye/SECURE-STAY/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotTransitionable is returned by UpdateBookingStatus when the
	// stored status is already terminal (Confirmed or Rejected).
	ErrNotTransitionable = errors.New("booking status is not transitionable")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string

	// now is the write-time clock; overridable in tests.
	now func() time.Time
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (*SQLRepository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
		now:    func() time.Time { return time.Now().UTC() },
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

const bookingColumns = `
	id, reference, guest_name, email, phone,
	hotel_name, room_type, check_in, check_out, amount,
	channel, ip_address, device_id,
	signals, score, status, reasons, created_at
`

// CreateBooking appends a new booking record. The record identity and
// the creation timestamp are assigned here, at write time, so that
// ordering by created_at stays consistent under client clock skew.
// Returns the stored booking with both fields populated.
func (r *SQLRepository) CreateBooking(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: booking is required", ErrInvalidInput)
	}
	if b.Reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	stored := *b
	stored.RecordID = uuid.New().String()
	stored.CreatedAt = r.now()

	signals, _ := json.Marshal(stored.Signals)
	reasons, _ := json.Marshal(stored.Reasons)

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		stored.RecordID, stored.Reference,
		stored.GuestName, stored.Email, stored.Phone,
		stored.HotelName, stored.RoomType, stored.CheckIn, stored.CheckOut, stored.Amount,
		stored.Channel, stored.IPAddress, stored.DeviceID,
		string(signals), stored.Score, string(stored.Status), string(reasons),
		stored.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// GetBooking retrieves a booking by its storage record identity.
func (r *SQLRepository) GetBooking(ctx context.Context, recordID string) (*domain.Booking, error) {
	if recordID == "" {
		return nil, fmt.Errorf("%w: recordID is required", ErrInvalidInput)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, r.rebind(query), recordID))
}

// GetBookingByReference resolves the human reference via the indexed
// reference column. Duplicate references should not exist, but if they
// do the earliest created record wins.
func (r *SQLRepository) GetBookingByReference(ctx context.Context, ref string) (*domain.Booking, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE reference = ?
		ORDER BY created_at ASC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, r.rebind(query), ref))
}

// ListBookings returns all bookings ordered by creation time descending.
func (r *SQLRepository) ListBookings(ctx context.Context) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// UpdateBookingStatus performs the admin override as a single guarded
// field update. The row is only touched when its stored status is still
// Under Review or the legacy Pending value; RowsAffected distinguishes a
// missing record from a terminal one.
func (r *SQLRepository) UpdateBookingStatus(ctx context.Context, recordID string, status domain.BookingStatus) error {
	if recordID == "" {
		return fmt.Errorf("%w: recordID is required", ErrInvalidInput)
	}
	if status != domain.StatusConfirmed && status != domain.StatusRejected {
		return fmt.Errorf("%w: status must be %q or %q", ErrInvalidInput, domain.StatusConfirmed, domain.StatusRejected)
	}

	query := `
		UPDATE bookings
		SET status = ?
		WHERE id = ? AND status IN (?, ?)
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query),
		string(status), recordID,
		string(domain.StatusUnderReview), string(domain.StatusPending),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	// Nothing updated: either the record is gone or it is terminal.
	if _, err := r.GetBooking(ctx, recordID); err != nil {
		return err
	}
	return ErrNotTransitionable
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLRepository) scanOne(row *sql.Row) (*domain.Booking, error) {
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var signals, reasons, status string

	if err := row.Scan(
		&b.RecordID, &b.Reference,
		&b.GuestName, &b.Email, &b.Phone,
		&b.HotelName, &b.RoomType, &b.CheckIn, &b.CheckOut, &b.Amount,
		&b.Channel, &b.IPAddress, &b.DeviceID,
		&signals, &b.Score, &status, &reasons,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)
	if err := json.Unmarshal([]byte(signals), &b.Signals); err != nil {
		return nil, fmt.Errorf("failed to parse signals for %s: %w", b.RecordID, err)
	}
	if err := json.Unmarshal([]byte(reasons), &b.Reasons); err != nil {
		return nil, fmt.Errorf("failed to parse reasons for %s: %w", b.RecordID, err)
	}

	return &b, nil
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	// Convert ? to $1, $2, etc.
	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
