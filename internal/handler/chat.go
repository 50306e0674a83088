package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/event-ticketing/internal/intent"
	"github.com/tigertix/event-ticketing/internal/repository"
)

// EventFinder is the browse surface the chat flow needs from the event
// repository.
type EventFinder interface {
	List(ctx context.Context) ([]repository.EventRecord, error)
	FindByTitle(ctx context.Context, name string) (*repository.EventRecord, error)
}

// pendingTTL bounds how long a booking proposal survives without a
// confirmation; maxPendingSessions caps the session map so abandoned
// conversations cannot grow it without bound.
const (
	pendingTTL         = 10 * time.Minute
	maxPendingSessions = 1024
)

// ChatHandler implements the conversational booking flow.  The intent
// parser is stateless, so the handler keeps the only conversation state
// there is: the pending booking proposal per session, held in memory
// until the user confirms, proposes something else, or the proposal
// expires.
type ChatHandler struct {
	Events  EventFinder
	Booking Booker

	mu      sync.Mutex
	pending map[string]pendingBooking
	now     func() time.Time
}

// pendingBooking is one unconfirmed proposal with its creation time.
type pendingBooking struct {
	proposal intent.Intent
	storedAt time.Time
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(events EventFinder, booking Booker) *ChatHandler {
	if events == nil || booking == nil {
		panic("nil dependency passed to NewChatHandler")
	}
	return &ChatHandler{
		Events:  events,
		Booking: booking,
		pending: make(map[string]pendingBooking),
		now:     time.Now,
	}
}

// storePending records a proposal for the session.  Expired entries are
// swept on every insert, and the map is hard-capped: when full of fresh
// proposals, arbitrary ones are dropped, which only costs their owners
// a re-ask.
func (h *ChatHandler) storePending(session string, proposal intent.Intent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	for s, p := range h.pending {
		if now.Sub(p.storedAt) > pendingTTL {
			delete(h.pending, s)
		}
	}
	for s := range h.pending {
		if len(h.pending) < maxPendingSessions {
			break
		}
		delete(h.pending, s)
	}
	h.pending[session] = pendingBooking{proposal: proposal, storedAt: now}
}

// takePending removes and returns the session's proposal.  Expired
// proposals count as absent.
func (h *ChatHandler) takePending(session string) (intent.Intent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pending[session]
	if !ok {
		return intent.Intent{}, false
	}
	delete(h.pending, session)
	if h.now().Sub(p.storedAt) > pendingTTL {
		return intent.Intent{}, false
	}
	return p.proposal, true
}

// chatRequest is the body accepted by both chat endpoints.  Clients may
// send the text under "message" or "text"; session_id correlates turns
// of one conversation and falls back to the client IP.
type chatRequest struct {
	Message   string `json:"message"`
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	BuyerID   uint64 `json:"buyer_id"`
}

func (r *chatRequest) message() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Text
}

// ParseOnly handles POST /v1/chat/parse.  It classifies the message and
// echoes the structured intent without touching the database; used by
// clients to preview what a message would do.
func (h *ChatHandler) ParseOnly(c echo.Context) error {
	var body chatRequest
	if err := c.Bind(&body); err != nil || body.message() == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message required"})
	}
	parsed := intent.Parse(body.message())
	if parsed.Kind == intent.KindUnknown {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":   "could not parse your request",
			"example": echo.Map{"intent": "book", "event": "Blues Night", "tickets": 2},
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"intent":  parsed.Kind,
		"event":   parsed.Event,
		"tickets": parsed.Quantity,
	})
}

// Chat handles POST /v1/chat, the main conversation endpoint.  A "book"
// message only proposes; the purchase happens when the user confirms,
// as repeated single-seat claims with partial fulfillment reported in
// the reply.
func (h *ChatHandler) Chat(c echo.Context) error {
	var body chatRequest
	if err := c.Bind(&body); err != nil || body.message() == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message required"})
	}
	session := body.SessionID
	if session == "" {
		session = c.RealIP()
	}
	buyerID := body.BuyerID
	if buyerID == 0 {
		buyerID = 1
	}

	parsed := intent.Parse(body.message())
	switch parsed.Kind {
	case intent.KindGreet:
		return reply(c, "hello! i'm your tigertix assistant. you can say 'show events' or 'book 2 tickets for jazz night'.")

	case intent.KindShow:
		events, err := h.Events.List(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"reply": "database error."})
		}
		if len(events) == 0 {
			return reply(c, "no events found.")
		}
		parts := make([]string, 0, len(events))
		for _, ev := range events {
			parts = append(parts, fmt.Sprintf("%s (%d left)", ev.Title, ev.RemainingTickets))
		}
		return reply(c, "here are the available events: "+strings.Join(parts, ", "))

	case intent.KindBook:
		h.storePending(session, parsed)
		return c.JSON(http.StatusOK, echo.Map{
			"reply": fmt.Sprintf("i can book %d ticket(s) for %s. please confirm by saying \"yes book %s\".",
				parsed.Quantity, parsed.Event, parsed.Event),
			"pending_booking": parsed,
		})

	case intent.KindConfirm:
		pend, ok := h.takePending(session)
		if !ok {
			return reply(c, "there is nothing to confirm yet. try 'book 2 tickets for jazz night' first.")
		}
		return h.confirm(c, pend, buyerID)
	}

	return reply(c, "sorry, i didn't get that. try 'show events' or 'book 2 tickets for jazz night'.")
}

// confirm resolves the pending proposal to a concrete event and runs
// the sequential single-seat purchases.
func (h *ChatHandler) confirm(c echo.Context, pend intent.Intent, buyerID uint64) error {
	ctx := c.Request().Context()
	ev, err := h.Events.FindByTitle(ctx, pend.Event)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return reply(c, fmt.Sprintf("i couldn't find an event matching %q.", pend.Event))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"reply": "database error."})
	}

	receipts, perr := h.Booking.PurchaseMany(ctx, ev.ID, buyerID, pend.Quantity)
	if len(receipts) == 0 {
		switch {
		case errors.Is(perr, repository.ErrSoldOut):
			return reply(c, fmt.Sprintf("sorry, %s is sold out.", ev.Title))
		case errors.Is(perr, repository.ErrBusy), errors.Is(perr, context.DeadlineExceeded):
			return reply(c, fmt.Sprintf("%s is very busy right now, please try again in a moment.", ev.Title))
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"reply": "booking failed, please try again."})
		}
	}

	seats := make([]string, 0, len(receipts))
	for _, r := range receipts {
		seats = append(seats, r.SeatLabel)
	}
	msg := fmt.Sprintf("booked %d ticket(s) for %s: %s.", len(receipts), ev.Title, strings.Join(seats, ", "))
	if perr != nil && len(receipts) < pend.Quantity {
		// Partial fulfillment: some claims succeeded before the event ran out.
		msg += fmt.Sprintf(" the remaining %d could not be booked (%s).",
			pend.Quantity-len(receipts), shortReason(perr))
	}
	return c.JSON(http.StatusOK, echo.Map{"reply": msg, "receipts": receipts})
}

func shortReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrSoldOut):
		return "sold out"
	case errors.Is(err, repository.ErrBusy), errors.Is(err, context.DeadlineExceeded):
		return "busy, try again"
	default:
		return "error"
	}
}

func reply(c echo.Context, text string) error {
	return c.JSON(http.StatusOK, echo.Map{"reply": text})
}
