package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/event-ticketing/internal/repository"
)

// EventBrowser is the read surface the public endpoints need from the
// event repository.
type EventBrowser interface {
	List(ctx context.Context) ([]repository.EventRecord, error)
	GetByID(ctx context.Context, eventID uint64) (*repository.EventRecord, error)
}

// PublicHandler exposes unauthenticated browse endpoints.  Reads are
// point-in-time snapshots; remaining-ticket counts may be stale by the
// time a buyer acts on them, which the purchase path handles.
type PublicHandler struct {
	Events EventBrowser
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(events EventBrowser) *PublicHandler {
	if events == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Events: events}
}

// eventView is the sanitized representation returned to guests.
type eventView struct {
	EventID          uint64  `json:"event_id"`
	Title            string  `json:"title"`
	Description      string  `json:"description,omitempty"`
	StartsAt         *string `json:"starts_at,omitempty"`
	EndsAt           *string `json:"ends_at,omitempty"`
	Address          string  `json:"address,omitempty"`
	RemainingTickets uint32  `json:"remaining_tickets"`
}

func toEventView(ev repository.EventRecord) eventView {
	v := eventView{
		EventID:          ev.ID,
		Title:            ev.Title,
		Description:      ev.Description,
		Address:          ev.Address,
		RemainingTickets: ev.RemainingTickets,
	}
	if ev.StartsAt != nil {
		iso := ev.StartsAt.UTC().Format(time.RFC3339)
		v.StartsAt = &iso
	}
	if ev.EndsAt != nil {
		iso := ev.EndsAt.UTC().Format(time.RFC3339)
		v.EndsAt = &iso
	}
	return v
}

// ListEvents handles GET /v1/events and returns all events with their
// remaining-ticket counts.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]eventView, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventView(ev))
	}
	return c.JSON(http.StatusOK, out)
}

// GetEvent handles GET /v1/events/:id.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toEventView(*ev))
}
