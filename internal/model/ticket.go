package model

import "time"

// Ticket statuses.  A ticket transitions AVAILABLE -> SOLD exactly once
// and never back; there is no cancellation flow.
const (
	TicketAvailable = "AVAILABLE"
	TicketSold      = "SOLD"
)

// Ticket describes a single seat for an event.  Tickets are created in
// bulk when the event is created; the set of tickets for an event is
// fixed afterwards.  SeatLabel is a zero-padded sequence number
// ("SEAT-001", "SEAT-002", ...) used as the deterministic allocation
// order.
//
// Fields:
//  ID          – primary key identifier.
//  EventID     – owning event.
//  SeatLabel   – human-legible ordering key, unique per event.
//  PriceCents  – price of the seat in cents.
//  Status      – AVAILABLE or SOLD.
//  BuyerID     – purchaser; nil while available, set exactly once on sale.
//  PurchasedAt – sale timestamp; nil while available.
//  CreatedAt   – creation timestamp.
type Ticket struct {
	ID          uint64     // tickets.id
	EventID     uint64     // tickets.event_id
	SeatLabel   string     // tickets.seat_label
	PriceCents  uint32     // tickets.price_cents
	Status      string     // tickets.status
	BuyerID     *uint64    // tickets.buyer_id
	PurchasedAt *time.Time // tickets.purchased_at
	CreatedAt   time.Time  // tickets.created_at
}

// Receipt is returned to the caller after a successful purchase.  It
// carries everything downstream consumers (HTTP response, sale event
// publisher) need without another query.
type Receipt struct {
	TicketID    uint64    `json:"ticket_id"`
	EventID     uint64    `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	SeatLabel   string    `json:"seat_label"`
	BuyerID     uint64    `json:"buyer_id"`
	PriceCents  uint32    `json:"price_cents"`
	PurchasedAt time.Time `json:"purchased_at"`
}
