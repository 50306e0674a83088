package model

import "time"

// Event represents an admin-created event with a fixed seat inventory.
// Events are created once together with their tickets and are never
// deleted.  RemainingTickets is a stored aggregate that must always
// equal the number of AVAILABLE tickets for the event; the purchase
// transaction updates both in the same atomic unit.
//
// Fields:
//  ID               – primary key identifier.
//  Title            – display name of the event.
//  Description      – free-form description.
//  StartsAt         – when the event begins.
//  EndsAt           – when the event ends.
//  Address          – venue address.
//  OrganizerID      – admin user who created the event.
//  RemainingTickets – count of tickets still available for sale.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Event struct {
	ID               uint64    // events.id
	Title            string    // events.title
	Description      string    // events.description
	StartsAt         time.Time // events.starts_at
	EndsAt           time.Time // events.ends_at
	Address          string    // events.address
	OrganizerID      uint64    // events.organizer_id
	RemainingTickets uint32    // events.remaining_tickets
	CreatedAt        time.Time // events.created_at
	UpdatedAt        time.Time // events.updated_at
}
