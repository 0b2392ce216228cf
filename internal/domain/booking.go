package domain

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

// Terminal reports whether no further transitions are allowed from s.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

// Booking is a hold on NumberOfTickets tickets for an event. A PENDING
// booking keeps inventory reserved until ExpiresAt; it is confirmed by a
// payment callback or reclaimed by the expiration sweep.
type Booking struct {
	ID                 string
	EventID            int64
	UserID             int64
	NumberOfTickets    int
	Status             BookingStatus
	TotalPrice         float64
	BookingReference   string
	PaymentID          string
	CancellationReason string
	CancellationDate   *time.Time
	ConfirmationDate   *time.Time
	ExpiresAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Version guards every mutating write: a write carries the version it
	// read and the store rejects it if the row has moved on.
	Version int64
}

// NewPendingBooking builds a PENDING booking with its expiry computed from
// the creation instant. Inventory must already be reserved by the caller.
func NewPendingBooking(now time.Time, eventID, userID int64, tickets int, ticketPrice float64, holdTTL time.Duration) *Booking {
	expiresAt := now.Add(holdTTL)
	return &Booking{
		ID:               uuid.NewString(),
		EventID:          eventID,
		UserID:           userID,
		NumberOfTickets:  tickets,
		Status:           BookingStatusPending,
		TotalPrice:       ticketPrice * float64(tickets),
		BookingReference: NewBookingReference(),
		ExpiresAt:        &expiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}
}

// NewBookingReference returns a short shareable code, e.g. "TKT-9F2C41A8D0".
// Uniqueness is enforced by the store, not here.
func NewBookingReference() string {
	u := uuid.New()
	return "TKT-" + strings.ToUpper(hex.EncodeToString(u[:5]))
}
