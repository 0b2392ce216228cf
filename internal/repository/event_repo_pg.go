package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/ticketing-engine/internal/domain"
)

// EventRepository is the event catalog plus the inventory ledger. TryReserve
// and Release are the only operations allowed to move available_tickets.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id int64) error
	TryReserve(ctx context.Context, eventID int64, tickets int) error
	Release(ctx context.Context, eventID int64, tickets int) error
}

type PGEventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

const eventColumns = `id, name, description, date, venue_id, performer_id, ticket_price,
	total_tickets, available_tickets, status, category, created_at, updated_at`

func (r *PGEventRepository) Create(ctx context.Context, event *domain.Event) error {
	err := r.db.QueryRow(ctx, `INSERT INTO events
		(name, description, date, venue_id, performer_id, ticket_price, total_tickets, available_tickets, status, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		event.Name, event.Description, event.Date, event.VenueID, event.PerformerID,
		event.TicketPrice, event.TotalTickets, event.AvailableTickets, event.Status, event.Category).
		Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *PGEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id)
	var e domain.Event
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.VenueID, &e.PerformerID,
		&e.TicketPrice, &e.TotalTickets, &e.AvailableTickets, &e.Status, &e.Category,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

func (r *PGEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.VenueID, &e.PerformerID,
			&e.TicketPrice, &e.TotalTickets, &e.AvailableTickets, &e.Status, &e.Category,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update writes catalog fields only. Ticket counters are excluded so a
// catalog edit can never corrupt inventory after sales have started.
func (r *PGEventRepository) Update(ctx context.Context, event *domain.Event) error {
	cmd, err := r.db.Exec(ctx, `UPDATE events
		SET name=$1, description=$2, date=$3, venue_id=$4, performer_id=$5,
		    ticket_price=$6, status=$7, category=$8, updated_at=now()
		WHERE id=$9`,
		event.Name, event.Description, event.Date, event.VenueID, event.PerformerID,
		event.TicketPrice, event.Status, event.Category, event.ID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *PGEventRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// TryReserve decrements available_tickets by tickets in a single conditional
// update, so concurrent callers can never push the counter below zero.
func (r *PGEventRepository) TryReserve(ctx context.Context, eventID int64, tickets int) error {
	cmd, err := r.db.Exec(ctx, `UPDATE events
		SET available_tickets = available_tickets - $2, updated_at = now()
		WHERE id = $1 AND available_tickets >= $2`, eventID, tickets)
	if err != nil {
		return fmt.Errorf("reserve tickets: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id=$1)`, eventID).Scan(&exists); err != nil {
			return fmt.Errorf("check event exists: %w", err)
		}
		if !exists {
			return domain.ErrEventNotFound
		}
		return domain.ErrNoTicketsAvailable
	}
	return nil
}

// Release puts tickets back, clamped at total_tickets so a double release
// can never exceed original capacity.
func (r *PGEventRepository) Release(ctx context.Context, eventID int64, tickets int) error {
	cmd, err := r.db.Exec(ctx, `UPDATE events
		SET available_tickets = LEAST(available_tickets + $2, total_tickets), updated_at = now()
		WHERE id = $1`, eventID, tickets)
	if err != nil {
		return fmt.Errorf("release tickets: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

var _ EventRepository = (*PGEventRepository)(nil)
