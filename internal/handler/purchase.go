package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/event-ticketing/internal/queue"
	"github.com/tigertix/event-ticketing/internal/repository"
	queue_publisher "github.com/tigertix/event-ticketing/internal/service"
)

// PurchaseHandler exposes the single-seat purchase operation.  The
// booking service owns retries and timeouts; this handler only binds
// the request, maps the outcome taxonomy onto HTTP statuses and
// publishes the sale event after a committed purchase.
type PurchaseHandler struct {
	Booking Booker
}

// NewPurchaseHandler constructs a PurchaseHandler.
func NewPurchaseHandler(b Booker) *PurchaseHandler {
	if b == nil {
		panic("nil booking service passed to NewPurchaseHandler")
	}
	return &PurchaseHandler{Booking: b}
}

// busyRetryAfterSecs is the Retry-After hint returned on 503 responses.
const busyRetryAfterSecs = 1

// Purchase handles POST /v1/events/:id/purchase.  The body may carry a
// buyer_id; absent one, buyer 1 is assumed (buyers are unauthenticated,
// matching the public purchase flow).  Outcomes:
//
//	200 receipt            – exactly one seat claimed
//	400 invalid request    – malformed event ID or body
//	404 event not found
//	409 sold out           – expected business outcome, zero mutations
//	503 busy               – lock contention persisted past the retry
//	                         budget or the booking timeout; retryable
//	500 storage error
func (h *PurchaseHandler) Purchase(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	var body struct {
		BuyerID uint64 `json:"buyer_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.BuyerID == 0 {
		body.BuyerID = 1
	}

	receipt, err := h.Booking.PurchaseSeat(c.Request().Context(), eventID, body.BuyerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrSoldOut):
			return c.JSON(http.StatusConflict, echo.Map{"error": "sold out"})
		case errors.Is(err, repository.ErrBusy),
			errors.Is(err, context.DeadlineExceeded):
			c.Response().Header().Set("Retry-After", strconv.Itoa(busyRetryAfterSecs))
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "busy, try again"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
		}
	}

	// The sale is committed; a broker outage must not fail the response.
	if err := queue_publisher.PublishTicketSold(c.Request().Context(), queue.TicketSoldEvent{
		TicketID:    receipt.TicketID,
		EventID:     receipt.EventID,
		EventTitle:  receipt.EventTitle,
		SeatLabel:   receipt.SeatLabel,
		BuyerID:     receipt.BuyerID,
		PriceCents:  receipt.PriceCents,
		PurchasedAt: receipt.PurchasedAt.Format(time.RFC3339),
	}); err != nil {
		c.Logger().Warnf("purchase: publish ticket.sold failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "ticket purchased successfully",
		"receipt": receipt,
	})
}
