package repository

import (
	"context"
	"sync"
	"time"

	"github.com/mkravets/ticketing-engine/internal/domain"
)

// MemoryEventRepository mirrors the postgres repository's ledger semantics:
// reserve is a conditional decrement, release is clamped at total capacity.
type MemoryEventRepository struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]domain.Event
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{nextID: 1, events: make(map[int64]domain.Event)}
}

func (r *MemoryEventRepository) Create(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	r.events[event.ID] = *event
	return nil
}

func (r *MemoryEventRepository) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return &e, nil
}

func (r *MemoryEventRepository) List(_ context.Context) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	return out, nil
}

func (r *MemoryEventRepository) Update(_ context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.events[event.ID]
	if !ok {
		return domain.ErrEventNotFound
	}
	current.Name = event.Name
	current.Description = event.Description
	current.Date = event.Date
	current.VenueID = event.VenueID
	current.PerformerID = event.PerformerID
	current.TicketPrice = event.TicketPrice
	current.Status = event.Status
	current.Category = event.Category
	current.UpdatedAt = time.Now().UTC()
	r.events[event.ID] = current
	*event = current
	return nil
}

func (r *MemoryEventRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *MemoryEventRepository) TryReserve(_ context.Context, eventID int64, tickets int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if e.AvailableTickets < tickets {
		return domain.ErrNoTicketsAvailable
	}
	e.AvailableTickets -= tickets
	e.UpdatedAt = time.Now().UTC()
	r.events[eventID] = e
	return nil
}

func (r *MemoryEventRepository) Release(_ context.Context, eventID int64, tickets int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.AvailableTickets += tickets
	if e.AvailableTickets > e.TotalTickets {
		e.AvailableTickets = e.TotalTickets
	}
	e.UpdatedAt = time.Now().UTC()
	r.events[eventID] = e
	return nil
}

var _ EventRepository = (*MemoryEventRepository)(nil)
