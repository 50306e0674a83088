package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tigertix/event-ticketing/internal/model"
)

// TicketRepo manages persistence for tickets.  PurchaseSeat is the only
// writer of a ticket's status, buyer_id and purchased_at fields and the
// only mutator of the events.remaining_tickets counter.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// PurchaseSeat atomically claims exactly one seat for buyerID or reports
// that none is available.  The whole operation runs in one transaction:
//
//  1. Lock the event row (FOR UPDATE).  This serialises allocations per
//     event; transactions on different events never contend.
//  2. Pick the first AVAILABLE ticket ordered by seat_label and lock it.
//  3. Flip the ticket to SOLD, keyed by its primary key.
//  4. Decrement events.remaining_tickets by exactly one.
//  5. Commit.  Any failure in 3–4 rolls the whole unit back, so the
//     seat and the counter are never partially updated.
//
// A SoldOut outcome commits the empty read and performs zero mutations.
// Lock contention (MySQL 1205/1213) is reported as ErrBusy; unknown
// events as ErrEventNotFound.  For any two concurrent calls against the
// same event the claimed seats are disjoint: the event-row lock admits
// one transaction at a time, and the keyed status-guarded UPDATE can
// only ever flip a ticket once.
func (r *TicketRepo) PurchaseSeat(ctx context.Context, eventID, buyerID uint64) (model.Receipt, error) {
	var rec model.Receipt

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, classify(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var title string
	var remaining uint32
	err = tx.QueryRowContext(ctx,
		`SELECT title, remaining_tickets FROM events WHERE id = ? FOR UPDATE`,
		eventID,
	).Scan(&title, &remaining)
	if err == sql.ErrNoRows {
		return rec, ErrEventNotFound
	}
	if err != nil {
		return rec, classify(err)
	}

	var ticketID uint64
	var label string
	var priceCents uint32
	err = tx.QueryRowContext(ctx,
		`SELECT id, seat_label, price_cents FROM tickets
		 WHERE event_id = ? AND status = 'AVAILABLE'
		 ORDER BY seat_label ASC LIMIT 1 FOR UPDATE`,
		eventID,
	).Scan(&ticketID, &label, &priceCents)
	if err == sql.ErrNoRows {
		// No candidate: finalise the empty read and report sold out.
		if cerr := tx.Commit(); cerr != nil {
			return rec, classify(cerr)
		}
		committed = true
		return rec, ErrSoldOut
	}
	if err != nil {
		return rec, classify(err)
	}

	purchasedAt := time.Now().UTC()

	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET status = 'SOLD', buyer_id = ?, purchased_at = ?
		 WHERE id = ? AND status = 'AVAILABLE'`,
		buyerID, purchasedAt, ticketID,
	)
	if err != nil {
		return rec, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return rec, err
	}
	if n != 1 {
		// The locked candidate changed under us; must never happen.
		return rec, fmt.Errorf("ticket %d: claim affected %d rows", ticketID, n)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE events SET remaining_tickets = remaining_tickets - 1
		 WHERE id = ? AND remaining_tickets > 0`,
		eventID,
	)
	if err != nil {
		return rec, classify(err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return rec, err
	}
	if n != 1 {
		return rec, fmt.Errorf("event %d: counter decrement affected %d rows", eventID, n)
	}

	if err := tx.Commit(); err != nil {
		return rec, classify(err)
	}
	committed = true

	rec = model.Receipt{
		TicketID:    ticketID,
		EventID:     eventID,
		EventTitle:  title,
		SeatLabel:   label,
		BuyerID:     buyerID,
		PriceCents:  priceCents,
		PurchasedAt: purchasedAt,
	}
	return rec, nil
}

// ListByEvent returns all tickets for an event ordered by seat label.
// Used by the admin surface to inspect an inventory.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Ticket, error) {
	const q = `SELECT id, event_id, seat_label, price_cents, status, buyer_id, purchased_at, created_at
	           FROM tickets WHERE event_id = ? ORDER BY seat_label`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		var buyer sql.NullInt64
		var purchased sql.NullTime
		if err := rows.Scan(&t.ID, &t.EventID, &t.SeatLabel, &t.PriceCents, &t.Status, &buyer, &purchased, &t.CreatedAt); err != nil {
			return nil, err
		}
		if buyer.Valid {
			b := uint64(buyer.Int64)
			t.BuyerID = &b
		}
		if purchased.Valid {
			p := purchased.Time
			t.PurchasedAt = &p
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// classify maps transient MySQL lock errors onto ErrBusy so the booking
// layer can retry them; everything else passes through unchanged.
func classify(err error) error {
	if isLockContention(err) {
		return fmt.Errorf("%w: %v", ErrBusy, err)
	}
	return err
}
