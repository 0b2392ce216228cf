package domain

import "time"

type EventStatus string

const (
	EventStatusScheduled EventStatus = "SCHEDULED"
	EventStatusUpcoming  EventStatus = "UPCOMING"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusCompleted EventStatus = "COMPLETED"
)

type EventCategory string

const (
	EventCategoryMusic      EventCategory = "MUSIC"
	EventCategorySports     EventCategory = "SPORTS"
	EventCategoryTheater    EventCategory = "THEATER"
	EventCategoryComedy     EventCategory = "COMEDY"
	EventCategoryFestival   EventCategory = "FESTIVAL"
	EventCategoryConference EventCategory = "CONFERENCE"
)

// Event is a catalog entry plus the inventory counters the ledger operates
// on. AvailableTickets only moves through the ledger's atomic reserve and
// release operations.
type Event struct {
	ID               int64
	Name             string
	Description      string
	Date             time.Time
	VenueID          int64
	PerformerID      int64
	TicketPrice      float64
	TotalTickets     int
	AvailableTickets int
	Status           EventStatus
	Category         EventCategory
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
