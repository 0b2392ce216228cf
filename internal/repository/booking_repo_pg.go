package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/ticketing-engine/internal/domain"
)

// BookingStore persists booking records. Every mutation goes through
// UpdateIf, which compares the version the caller read against the stored
// row and rejects stale writes instead of overwriting them.
type BookingStore interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error)
	UpdateIf(ctx context.Context, expectedVersion int64, booking *domain.Booking) error
	FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Booking, error)
}

type PGBookingStore struct {
	db *pgxpool.Pool
}

func NewBookingStore(db *pgxpool.Pool) BookingStore {
	return &PGBookingStore{db: db}
}

const bookingColumns = `id, event_id, user_id, number_of_tickets, status, total_price, booking_reference,
	payment_id, cancellation_reason, cancellation_date, confirmation_date, expires_at, created_at, updated_at, version`

func (s *PGBookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	_, err := s.db.Exec(ctx, `INSERT INTO bookings
		(id, event_id, user_id, number_of_tickets, status, total_price, booking_reference,
		 payment_id, cancellation_reason, cancellation_date, confirmation_date, expires_at, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		booking.ID, booking.EventID, booking.UserID, booking.NumberOfTickets, booking.Status,
		booking.TotalPrice, booking.BookingReference, booking.PaymentID, booking.CancellationReason,
		booking.CancellationDate, booking.ConfirmationDate, booking.ExpiresAt,
		booking.CreatedAt, booking.UpdatedAt, booking.Version)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (s *PGBookingStore) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (s *PGBookingStore) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_reference=$1`, reference)
	return scanBooking(row)
}

func (s *PGBookingStore) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := s.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	return collectBookings(rows)
}

func (s *PGBookingStore) ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error) {
	rows, err := s.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE event_id=$1 ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by event: %w", err)
	}
	return collectBookings(rows)
}

// UpdateIf applies booking's mutable fields only if the stored row still
// carries expectedVersion. On success the booking's version and updated_at
// are refreshed from the database.
func (s *PGBookingStore) UpdateIf(ctx context.Context, expectedVersion int64, booking *domain.Booking) error {
	row := s.db.QueryRow(ctx, `UPDATE bookings
		SET status=$1, payment_id=$2, cancellation_reason=$3, cancellation_date=$4,
		    confirmation_date=$5, expires_at=$6, version=version+1, updated_at=now()
		WHERE id=$7 AND version=$8
		RETURNING version, updated_at`,
		booking.Status, booking.PaymentID, booking.CancellationReason, booking.CancellationDate,
		booking.ConfirmationDate, booking.ExpiresAt, booking.ID, expectedVersion)

	if err := row.Scan(&booking.Version, &booking.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.classifyMissedUpdate(ctx, booking.ID)
		}
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

// classifyMissedUpdate tells a stale version apart from a missing row.
func (s *PGBookingStore) classifyMissedUpdate(ctx context.Context, id string) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id=$1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check booking exists: %w", err)
	}
	if !exists {
		return domain.ErrBookingNotFound
	}
	return domain.ErrConcurrentModification
}

func (s *PGBookingStore) FindExpiredPending(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	rows, err := s.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status=$1 AND expires_at < $2 ORDER BY expires_at`, domain.BookingStatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("find expired pending bookings: %w", err)
	}
	return collectBookings(rows)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.EventID, &b.UserID, &b.NumberOfTickets, &b.Status, &b.TotalPrice,
		&b.BookingReference, &b.PaymentID, &b.CancellationReason, &b.CancellationDate,
		&b.ConfirmationDate, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt, &b.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.EventID, &b.UserID, &b.NumberOfTickets, &b.Status, &b.TotalPrice,
			&b.BookingReference, &b.PaymentID, &b.CancellationReason, &b.CancellationDate,
			&b.ConfirmationDate, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt, &b.Version); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ BookingStore = (*PGBookingStore)(nil)
