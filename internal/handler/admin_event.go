package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/event-ticketing/internal/model"
	"github.com/tigertix/event-ticketing/internal/repository"
)

// EventStore is the admin surface of the event repository: creation
// together with the seat inventory, lookup, and the consistency probe.
type EventStore interface {
	Create(ctx context.Context, ev *repository.EventRecord, totalTickets int, priceCents uint32) error
	GetByID(ctx context.Context, eventID uint64) (*repository.EventRecord, error)
	CounterDrift(ctx context.Context, eventID uint64) (remaining, available uint32, err error)
}

// TicketLister exposes the inventory listing used by ListTickets.
type TicketLister interface {
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Ticket, error)
}

// AdminHandler groups the event-administration endpoints.  All routes
// using it sit behind JWT authentication with the ADMIN role; tokens
// come from the external identity service.
type AdminHandler struct {
	Events  EventStore
	Tickets TicketLister
}

// NewAdminHandler constructs an AdminHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewAdminHandler(events EventStore, tickets TicketLister) *AdminHandler {
	if events == nil || tickets == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Events: events, Tickets: tickets}
}

// defaultPriceCents is used when the request omits a ticket price.
const defaultPriceCents = 5000

// CreateEvent handles POST /v1/admin/events.  It inserts the event and
// bulk-generates its seat inventory (SEAT-001..SEAT-NNN) in a single
// transaction, so no purchase can observe an event without its seats.
// total_tickets may be zero: such an event is immediately sold out.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var body struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		StartsAt     string `json:"starts_at"`
		EndsAt       string `json:"ends_at"`
		Address      string `json:"address"`
		OrganizerID  uint64 `json:"organizer_id"`
		TotalTickets *int   `json:"total_tickets"`
		PriceCents   uint32 `json:"price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if body.TotalTickets == nil || *body.TotalTickets < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_tickets must be >= 0"})
	}
	price := body.PriceCents
	if price == 0 {
		price = defaultPriceCents
	}

	rec := repository.EventRecord{
		Title:       body.Title,
		Description: body.Description,
		Address:     body.Address,
		OrganizerID: body.OrganizerID,
	}
	if body.StartsAt != "" {
		t, err := time.Parse(time.RFC3339, body.StartsAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
		}
		utc := t.UTC()
		rec.StartsAt = &utc
	}
	if body.EndsAt != "" {
		t, err := time.Parse(time.RFC3339, body.EndsAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC3339"})
		}
		utc := t.UTC()
		rec.EndsAt = &utc
	}

	if err := h.Events.Create(c.Request().Context(), &rec, *body.TotalTickets, price); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"event_id":        rec.ID,
		"tickets_created": *body.TotalTickets,
	})
}

// ListTickets handles GET /v1/admin/events/:id/tickets and returns the
// full inventory of an event ordered by seat label, including buyer and
// purchase time for sold seats.
func (h *AdminHandler) ListTickets(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if _, err := h.Events.GetByID(c.Request().Context(), eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	tickets, err := h.Tickets.ListByEvent(c.Request().Context(), eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type ticketView struct {
		TicketID    uint64  `json:"ticket_id"`
		SeatLabel   string  `json:"seat_label"`
		PriceCents  uint32  `json:"price_cents"`
		Status      string  `json:"status"`
		BuyerID     *uint64 `json:"buyer_id,omitempty"`
		PurchasedAt *string `json:"purchased_at,omitempty"`
	}
	out := make([]ticketView, 0, len(tickets))
	for _, t := range tickets {
		v := ticketView{
			TicketID:   t.ID,
			SeatLabel:  t.SeatLabel,
			PriceCents: t.PriceCents,
			Status:     t.Status,
			BuyerID:    t.BuyerID,
		}
		if t.PurchasedAt != nil {
			iso := t.PurchasedAt.UTC().Format(time.RFC3339)
			v.PurchasedAt = &iso
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": eventID, "tickets": out})
}

// CheckConsistency handles GET /v1/admin/events/:id/consistency.  It
// compares the stored remaining-ticket counter with the count of
// AVAILABLE tickets; the two must always match, including right after a
// burst of concurrent purchases.
func (h *AdminHandler) CheckConsistency(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	remaining, available, err := h.Events.CounterDrift(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id":          eventID,
		"remaining_tickets": remaining,
		"available_tickets": available,
		"consistent":        remaining == available,
	})
}
