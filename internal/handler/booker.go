package handler

import (
	"context"

	"github.com/tigertix/event-ticketing/internal/model"
)

// Booker is the purchase surface handlers need from the booking
// service.  *booking.Service is the production implementation; tests
// substitute fakes.
type Booker interface {
	PurchaseSeat(ctx context.Context, eventID, buyerID uint64) (model.Receipt, error)
	PurchaseMany(ctx context.Context, eventID, buyerID uint64, quantity int) ([]model.Receipt, error)
}
