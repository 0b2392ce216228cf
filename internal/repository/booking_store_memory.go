package repository

import (
	"context"
	"sync"
	"time"

	"github.com/mkravets/ticketing-engine/internal/domain"
)

// MemoryBookingStore keeps bookings in a map guarded by a mutex. It enforces
// the same version and reference-uniqueness rules as the postgres store, so
// the engine and the sweeper can be exercised against it in tests and local
// runs without a database.
type MemoryBookingStore struct {
	mu       sync.RWMutex
	bookings map[string]domain.Booking
	byRef    map[string]string
}

func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{
		bookings: make(map[string]domain.Booking),
		byRef:    make(map[string]string),
	}
}

func (s *MemoryBookingStore) Create(_ context.Context, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byRef[booking.BookingReference]; ok {
		return domain.ErrDuplicateReference
	}
	s.bookings[booking.ID] = cloneBooking(*booking)
	s.byRef[booking.BookingReference] = booking.ID
	return nil
}

func (s *MemoryBookingStore) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	b = cloneBooking(b)
	return &b, nil
}

func (s *MemoryBookingStore) GetByReference(_ context.Context, reference string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byRef[reference]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	b := cloneBooking(s.bookings[id])
	return &b, nil
}

func (s *MemoryBookingStore) ListByUser(_ context.Context, userID int64) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (s *MemoryBookingStore) ListByEvent(_ context.Context, eventID int64) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if b.EventID == eventID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (s *MemoryBookingStore) UpdateIf(_ context.Context, expectedVersion int64, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.bookings[booking.ID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if current.Version != expectedVersion {
		return domain.ErrConcurrentModification
	}
	booking.Version = expectedVersion + 1
	booking.UpdatedAt = time.Now().UTC()
	s.bookings[booking.ID] = cloneBooking(*booking)
	return nil
}

func (s *MemoryBookingStore) FindExpiredPending(_ context.Context, now time.Time) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if b.Status == domain.BookingStatusPending && b.ExpiresAt != nil && b.ExpiresAt.Before(now) {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func cloneBooking(b domain.Booking) domain.Booking {
	if b.ExpiresAt != nil {
		t := *b.ExpiresAt
		b.ExpiresAt = &t
	}
	if b.CancellationDate != nil {
		t := *b.CancellationDate
		b.CancellationDate = &t
	}
	if b.ConfirmationDate != nil {
		t := *b.ConfirmationDate
		b.ConfirmationDate = &t
	}
	return b
}

var _ BookingStore = (*MemoryBookingStore)(nil)
