package events

import (
	"context"
	"log"
	"time"

	"github.com/mkravets/ticketing-engine/internal/domain"
	"github.com/mkravets/ticketing-engine/internal/repository"
)

type EventUseCase interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, id int64, input UpdateEventInput) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

type Cache interface {
	GetEvents(ctx context.Context) ([]domain.Event, error)
	SetEvents(ctx context.Context, events []domain.Event) error
	InvalidateEvents(ctx context.Context) error
}

// EventService manages the catalog the inventory ledger is seeded from.
type EventService struct {
	events repository.EventRepository
	cache  Cache
}

func NewEventService(events repository.EventRepository, cache Cache) *EventService {
	return &EventService{events: events, cache: cache}
}

type CreateEventInput struct {
	Name         string
	Description  string
	Date         time.Time
	VenueID      int64
	PerformerID  int64
	TicketPrice  float64
	TotalTickets int
	Status       domain.EventStatus
	Category     domain.EventCategory
}

// UpdateEventInput is a partial update: nil fields are left unchanged.
// Ticket counts are deliberately absent; they cannot be edited once the
// event exists.
type UpdateEventInput struct {
	Name        *string
	Description *string
	Date        *time.Time
	VenueID     *int64
	PerformerID *int64
	TicketPrice *float64
	Status      *domain.EventStatus
	Category    *domain.EventCategory
}

// CreateEvent stores a new event with its full inventory available.
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	if input.TotalTickets <= 0 {
		return nil, domain.ErrInvalidTicketCount
	}

	event := &domain.Event{
		Name:             input.Name,
		Description:      input.Description,
		Date:             input.Date,
		VenueID:          input.VenueID,
		PerformerID:      input.PerformerID,
		TicketPrice:      input.TicketPrice,
		TotalTickets:     input.TotalTickets,
		AvailableTickets: input.TotalTickets,
		Status:           input.Status,
		Category:         input.Category,
	}
	if event.Status == "" {
		event.Status = domain.EventStatusScheduled
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	return s.events.GetByID(ctx, id)
}

// ListEvents reads through the cache; a cache failure falls back to the
// repository rather than failing the request.
func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if s.cache != nil {
		cached, err := s.cache.GetEvents(ctx)
		if err != nil {
			log.Printf("events cache read: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(events) > 0 {
		if err := s.cache.SetEvents(ctx, events); err != nil {
			log.Printf("events cache write: %v", err)
		}
	}
	return events, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id int64, input UpdateEventInput) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		event.Name = *input.Name
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Date != nil {
		event.Date = *input.Date
	}
	if input.VenueID != nil {
		event.VenueID = *input.VenueID
	}
	if input.PerformerID != nil {
		event.PerformerID = *input.PerformerID
	}
	if input.TicketPrice != nil {
		event.TicketPrice = *input.TicketPrice
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
	if input.Category != nil {
		event.Category = *input.Category
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *EventService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEvents(ctx); err != nil {
		log.Printf("events cache invalidate: %v", err)
	}
}

var _ EventUseCase = (*EventService)(nil)
