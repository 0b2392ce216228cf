package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkravets/ticketing-engine/internal/domain"
	"github.com/mkravets/ticketing-engine/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	events      []domain.Event
	getErr      error
	sets        int
	invalidates int
}

func (f *fakeCache) GetEvents(context.Context) ([]domain.Event, error) {
	return f.events, f.getErr
}

func (f *fakeCache) SetEvents(_ context.Context, events []domain.Event) error {
	f.events = events
	f.sets++
	return nil
}

func (f *fakeCache) InvalidateEvents(context.Context) error {
	f.events = nil
	f.invalidates++
	return nil
}

func validInput() CreateEventInput {
	return CreateEventInput{
		Name:         "Jazz Evening",
		Description:  "Live trio",
		Date:         time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC),
		VenueID:      3,
		PerformerID:  5,
		TicketPrice:  45,
		TotalTickets: 120,
		Category:     domain.EventCategoryMusic,
	}
}

func TestCreateEvent_InitializesAvailableTickets(t *testing.T) {
	svc := NewEventService(repository.NewMemoryEventRepository(), nil)

	created, err := svc.CreateEvent(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, 120, created.TotalTickets)
	assert.Equal(t, 120, created.AvailableTickets)
	assert.Equal(t, domain.EventStatusScheduled, created.Status)
}

func TestCreateEvent_RejectsNonPositiveTickets(t *testing.T) {
	svc := NewEventService(repository.NewMemoryEventRepository(), nil)

	input := validInput()
	input.TotalTickets = 0
	_, err := svc.CreateEvent(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrInvalidTicketCount)
}

func TestUpdateEvent_PartialAndTicketCountsUntouched(t *testing.T) {
	repo := repository.NewMemoryEventRepository()
	svc := NewEventService(repo, nil)
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, repo.TryReserve(ctx, created.ID, 20))

	name := "Jazz Evening (rescheduled)"
	price := 50.0
	updated, err := svc.UpdateEvent(ctx, created.ID, UpdateEventInput{Name: &name, TicketPrice: &price})
	require.NoError(t, err)

	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 50.0, updated.TicketPrice)
	assert.Equal(t, "Live trio", updated.Description)
	assert.Equal(t, 120, updated.TotalTickets)
	assert.Equal(t, 100, updated.AvailableTickets)
}

func TestUpdateEvent_NotFound(t *testing.T) {
	svc := NewEventService(repository.NewMemoryEventRepository(), nil)

	name := "x"
	_, err := svc.UpdateEvent(context.Background(), 99, UpdateEventInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestListEvents_CacheHit(t *testing.T) {
	cache := &fakeCache{events: []domain.Event{{ID: 1, Name: "Cached"}}}
	svc := NewEventService(repository.NewMemoryEventRepository(), cache)

	events, err := svc.ListEvents(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Cached", events[0].Name)
	assert.Equal(t, 0, cache.sets)
}

func TestListEvents_CacheMissPopulatesCache(t *testing.T) {
	cache := &fakeCache{}
	svc := NewEventService(repository.NewMemoryEventRepository(), cache)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, validInput())
	require.NoError(t, err)

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, cache.sets)
}

func TestListEvents_CacheFailureFallsBack(t *testing.T) {
	cache := &fakeCache{getErr: errors.New("redis down")}
	svc := NewEventService(repository.NewMemoryEventRepository(), cache)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, validInput())
	require.NoError(t, err)

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestWrites_InvalidateCache(t *testing.T) {
	cache := &fakeCache{}
	svc := NewEventService(repository.NewMemoryEventRepository(), cache)
	ctx := context.Background()

	created, err := svc.CreateEvent(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidates)

	require.NoError(t, svc.DeleteEvent(ctx, created.ID))
	assert.Equal(t, 2, cache.invalidates)

	_, err = svc.GetEvent(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
