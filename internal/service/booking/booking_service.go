package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mkravets/ticketing-engine/internal/clock"
	"github.com/mkravets/ticketing-engine/internal/domain"
	"github.com/mkravets/ticketing-engine/internal/kafka"
	"github.com/mkravets/ticketing-engine/internal/metrics"
	"github.com/mkravets/ticketing-engine/internal/repository"
)

// ExpiredReason is recorded on bookings reclaimed by the sweep.
const ExpiredReason = "booking expired - payment not completed"

type BookingUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error)
	Confirm(ctx context.Context, bookingID, paymentID string) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID, reason string) (*domain.Booking, error)
	ExpireOverdue(ctx context.Context) (int, error)
	GetByID(ctx context.Context, bookingID string) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// BookingService drives the booking state machine. Inventory is consumed
// exactly once at reserve time and released at most once per booking, on
// cancel or expiry; confirm keeps the tickets.
type BookingService struct {
	bookings repository.BookingStore
	events   repository.EventRepository
	clock    clock.Clock
	producer Producer
	metrics  *metrics.Metrics

	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
}

type ReserveInput struct {
	EventID int64 `json:"event_id"`
	UserID  int64 `json:"user_id"`
	Tickets int   `json:"tickets"`
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

const defaultHoldTTL = 10 * time.Minute

func NewBookingService(
	bookings repository.BookingStore,
	events repository.EventRepository,
	clk clock.Clock,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	if holdTTL <= 0 {
		holdTTL = defaultHoldTTL
	}
	service := &BookingService{
		bookings: bookings,
		events:   events,
		clock:    clk,
		holdTTL:  holdTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Reserve consumes inventory and creates a PENDING booking. Either both
// happen or neither: if the insert fails after the decrement, the tickets
// are put back before returning.
func (s *BookingService) Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error) {
	if input.Tickets <= 0 {
		return nil, domain.ErrInvalidTicketCount
	}

	event, err := s.events.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}

	if err := s.events.TryReserve(ctx, input.EventID, input.Tickets); err != nil {
		return nil, err
	}

	booking := domain.NewPendingBooking(s.clock.Now(), input.EventID, input.UserID, input.Tickets, event.TicketPrice, s.holdTTL)

	err = s.bookings.Create(ctx, booking)
	if errors.Is(err, domain.ErrDuplicateReference) {
		// Reference collisions are rare; a fresh draw resolves them.
		booking.BookingReference = domain.NewBookingReference()
		err = s.bookings.Create(ctx, booking)
	}
	if err != nil {
		if releaseErr := s.events.Release(ctx, input.EventID, input.Tickets); releaseErr != nil {
			log.Printf("release tickets after failed insert for event %d: %v", input.EventID, releaseErr)
		}
		return nil, err
	}

	s.metrics.IncrementOutcome(string(domain.BookingStatusPending))
	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

// Confirm transitions a PENDING booking to CONFIRMED. It does not touch the
// ledger: the tickets were already decremented at reserve time.
func (s *BookingService) Confirm(ctx context.Context, bookingID, paymentID string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPending {
		return nil, domain.ErrInvalidTransition
	}
	now := s.clock.Now()
	if current.ExpiresAt != nil && current.ExpiresAt.Before(now) {
		// The hold is overdue; the sweep owns this booking now.
		return nil, domain.ErrBookingExpired
	}

	updated := *current
	updated.Status = domain.BookingStatusConfirmed
	updated.PaymentID = paymentID
	updated.ConfirmationDate = &now
	updated.ExpiresAt = nil

	if err := s.bookings.UpdateIf(ctx, current.Version, &updated); err != nil {
		return nil, err
	}

	s.metrics.IncrementOutcome(string(domain.BookingStatusConfirmed))
	s.publish(ctx, "booking_confirmed", &updated)
	return &updated, nil
}

// Cancel transitions a PENDING or CONFIRMED booking to CANCELLED and puts
// its tickets back. The release happens only after the guarded update
// succeeds, so a booking's inventory is returned at most once.
func (s *BookingService) Cancel(ctx context.Context, bookingID, reason string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	// CONFIRMED is terminal for confirm and the sweep, but a confirmed
	// booking can still be cancelled by the user.
	if current.Status != domain.BookingStatusPending && current.Status != domain.BookingStatusConfirmed {
		return nil, domain.ErrInvalidTransition
	}
	if reason == "" {
		reason = "cancelled by user"
	}

	now := s.clock.Now()
	updated := *current
	updated.Status = domain.BookingStatusCancelled
	updated.CancellationReason = reason
	updated.CancellationDate = &now
	updated.ExpiresAt = nil

	if err := s.bookings.UpdateIf(ctx, current.Version, &updated); err != nil {
		return nil, err
	}

	// The cancel has committed; a failed release cannot be retried through
	// the CAS without risking a double release, so the tickets stay leaked
	// until an operator reconciles the ledger.
	if err := s.events.Release(ctx, updated.EventID, updated.NumberOfTickets); err != nil {
		log.Printf("WARNING: booking %s cancelled but %d tickets for event %d were not released, reconcile manually: %v",
			updated.ID, updated.NumberOfTickets, updated.EventID, err)
	}

	s.metrics.IncrementOutcome(string(domain.BookingStatusCancelled))
	s.publish(ctx, "booking_cancelled", &updated)
	return &updated, nil
}

// ExpireOverdue reclaims PENDING bookings whose grace window has elapsed.
// Each candidate is transitioned independently under its own version guard;
// losing the guard to a concurrent confirm or cancel means the booking is no
// longer the one that was queried, so it is skipped without a release. One
// candidate's failure never aborts the rest of the batch.
func (s *BookingService) ExpireOverdue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	candidates, err := s.bookings.FindExpiredPending(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range candidates {
		candidate := candidates[i]

		updated := candidate
		updated.Status = domain.BookingStatusExpired
		updated.CancellationReason = ExpiredReason
		updated.CancellationDate = &now
		updated.ExpiresAt = nil

		if err := s.bookings.UpdateIf(ctx, candidate.Version, &updated); err != nil {
			if errors.Is(err, domain.ErrConcurrentModification) || errors.Is(err, domain.ErrBookingNotFound) {
				continue
			}
			log.Printf("expire booking %s: %v", candidate.ID, err)
			continue
		}

		if err := s.events.Release(ctx, updated.EventID, updated.NumberOfTickets); err != nil {
			log.Printf("WARNING: booking %s expired but %d tickets for event %d were not released, reconcile manually: %v",
				updated.ID, updated.NumberOfTickets, updated.EventID, err)
		}

		expired++
		s.metrics.IncrementOutcome(string(domain.BookingStatusExpired))
		s.publish(ctx, "booking_expired", &updated)
	}
	return expired, nil
}

func (s *BookingService) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *BookingService) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.GetByReference(ctx, reference)
}

func (s *BookingService) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) ListByEvent(ctx context.Context, eventID int64) ([]domain.Booking, error) {
	return s.bookings.ListByEvent(ctx, eventID)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		Reference:  booking.BookingReference,
		EventID:    booking.EventID,
		UserID:     booking.UserID,
		Tickets:    booking.NumberOfTickets,
		Status:     string(booking.Status),
		TotalPrice: booking.TotalPrice,
		ExpiresAt:  booking.ExpiresAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.ID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %s: %v", eventType, booking.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
