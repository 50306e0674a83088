// Package repository contains data access logic for events and tickets.
// This file covers the admin and browse side: creating an event together
// with its fixed seat inventory, listing events, and checking the
// remaining-ticket counter against the ticket table.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EventRecord mirrors the schema of the events table.  It is used by the
// repository when constructing or scanning rows.  Business logic should
// use the model.Event type instead.
type EventRecord struct {
	ID               uint64
	Title            string
	Description      string
	StartsAt         *time.Time
	EndsAt           *time.Time
	Address          string
	OrganizerID      uint64
	RemainingTickets uint32
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EventRepo manages persistence for events and their seat inventory.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

// seatLabel formats the deterministic ordering key for the n-th seat of
// an event: SEAT-001, SEAT-002, ...  Zero padding keeps lexicographic
// order equal to numeric order for inventories up to 999 seats.
func seatLabel(n int) string { return fmt.Sprintf("SEAT-%03d", n) }

// Create inserts a new event and bulk-inserts its tickets in a single
// transaction.  remaining_tickets is initialised to totalTickets so the
// counter invariant holds from the moment the event becomes visible.
// The generated event ID is populated on the provided record.  No
// allocation for the event can succeed before this commit completes.
func (r *EventRepo) Create(ctx context.Context, ev *EventRecord, totalTickets int, priceCents uint32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO events (title, description, starts_at, ends_at, address, organizer_id, remaining_tickets)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		ev.Title, ev.Description, ev.StartsAt, ev.EndsAt, ev.Address, ev.OrganizerID, totalTickets)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	ev.RemainingTickets = uint32(totalTickets)

	if totalTickets > 0 {
		// Multi-VALUES insert; one statement for the whole inventory.
		query := `INSERT INTO tickets (event_id, seat_label, price_cents, status) VALUES `
		args := make([]interface{}, 0, totalTickets*3)
		for i := 1; i <= totalTickets; i++ {
			if i > 1 {
				query += ","
			}
			query += "(?, ?, ?, 'AVAILABLE')"
			args = append(args, ev.ID, seatLabel(i), priceCents)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a single event.  When no event with the given ID
// exists, ErrEventNotFound is returned.
func (r *EventRepo) GetByID(ctx context.Context, eventID uint64) (*EventRecord, error) {
	const q = `SELECT id, title, description, starts_at, ends_at, address, organizer_id, remaining_tickets, created_at, updated_at
	           FROM events WHERE id = ?`
	var ev EventRecord
	var desc, addr sql.NullString
	var startsAt, endsAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(
		&ev.ID, &ev.Title, &desc, &startsAt, &endsAt, &addr,
		&ev.OrganizerID, &ev.RemainingTickets, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	ev.Description = desc.String
	ev.Address = addr.String
	if startsAt.Valid {
		t := startsAt.Time
		ev.StartsAt = &t
	}
	if endsAt.Valid {
		t := endsAt.Time
		ev.EndsAt = &t
	}
	return &ev, nil
}

// List returns all events ordered by start time then ID.  The read is a
// point-in-time snapshot; remaining_tickets may be stale by the time the
// caller acts on it, which is fine for display purposes.
func (r *EventRepo) List(ctx context.Context) ([]EventRecord, error) {
	const q = `SELECT id, title, description, starts_at, ends_at, address, organizer_id, remaining_tickets, created_at, updated_at
	           FROM events ORDER BY starts_at, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]EventRecord, 0)
	for rows.Next() {
		var ev EventRecord
		var desc, addr sql.NullString
		var startsAt, endsAt sql.NullTime
		if err := rows.Scan(
			&ev.ID, &ev.Title, &desc, &startsAt, &endsAt, &addr,
			&ev.OrganizerID, &ev.RemainingTickets, &ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ev.Description = desc.String
		ev.Address = addr.String
		if startsAt.Valid {
			t := startsAt.Time
			ev.StartsAt = &t
		}
		if endsAt.Valid {
			t := endsAt.Time
			ev.EndsAt = &t
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// FindByTitle returns the first event whose title contains the given
// text, matched case-insensitively.  It backs the chat flow where users
// refer to events by partial name ("jazz" matches "Jazz Night").  When
// nothing matches, ErrEventNotFound is returned.
func (r *EventRepo) FindByTitle(ctx context.Context, name string) (*EventRecord, error) {
	const q = `SELECT id, title, remaining_tickets FROM events
	           WHERE LOWER(title) LIKE LOWER(?) ORDER BY id LIMIT 1`
	var ev EventRecord
	err := r.db.QueryRowContext(ctx, q, "%"+name+"%").Scan(&ev.ID, &ev.Title, &ev.RemainingTickets)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// CounterDrift compares the stored remaining_tickets counter with the
// actual count of AVAILABLE tickets for the event.  The two must be
// equal at all times; any divergence indicates a bug in the allocation
// path.  Returns ErrEventNotFound for unknown events.
func (r *EventRepo) CounterDrift(ctx context.Context, eventID uint64) (remaining uint32, available uint32, err error) {
	const q = `SELECT e.remaining_tickets,
	                  (SELECT COUNT(*) FROM tickets t WHERE t.event_id = e.id AND t.status = 'AVAILABLE')
	           FROM events e WHERE e.id = ?`
	err = r.db.QueryRowContext(ctx, q, eventID).Scan(&remaining, &available)
	if err == sql.ErrNoRows {
		return 0, 0, ErrEventNotFound
	}
	if err != nil {
		return 0, 0, err
	}
	return remaining, available, nil
}
