// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketSoldEvent is published after a purchase commits.  It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type TicketSoldEvent struct {
	TicketID    uint64 `json:"ticket_id"`
	EventID     uint64 `json:"event_id"`
	EventTitle  string `json:"event_title"`
	SeatLabel   string `json:"seat_label"`
	BuyerID     uint64 `json:"buyer_id"`
	PriceCents  uint32 `json:"price_cents"`
	PurchasedAt string `json:"purchased_at"`
}
