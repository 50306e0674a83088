package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/event-ticketing/internal/repository"
)

type fakeBrowser struct {
	events []repository.EventRecord
	byID   *repository.EventRecord
	err    error
}

func (f *fakeBrowser) List(ctx context.Context) ([]repository.EventRecord, error) {
	return f.events, f.err
}

func (f *fakeBrowser) GetByID(ctx context.Context, eventID uint64) (*repository.EventRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.byID == nil {
		return nil, repository.ErrEventNotFound
	}
	return f.byID, nil
}

func browseCtx(t *testing.T, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	return c, rec
}

func TestPublicListEvents(t *testing.T) {
	t.Parallel()

	starts := time.Date(2025, 7, 4, 19, 0, 0, 0, time.UTC)
	browser := &fakeBrowser{events: []repository.EventRecord{
		{ID: 1, Title: "Jazz Night", StartsAt: &starts, RemainingTickets: 12},
		{ID: 2, Title: "Blues Bash", RemainingTickets: 0},
	}}
	h := NewPublicHandler(browser)

	c, rec := browseCtx(t, "")
	if err := h.ListEvents(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body []struct {
		EventID          uint64  `json:"event_id"`
		Title            string  `json:"title"`
		StartsAt         *string `json:"starts_at"`
		RemainingTickets uint32  `json:"remaining_tickets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("expected 2 events, got %d", len(body))
	}
	if body[0].Title != "Jazz Night" || body[0].RemainingTickets != 12 {
		t.Fatalf("unexpected first event: %+v", body[0])
	}
	if body[0].StartsAt == nil || *body[0].StartsAt != "2025-07-04T19:00:00Z" {
		t.Fatalf("unexpected starts_at: %+v", body[0].StartsAt)
	}
	if body[1].StartsAt != nil {
		t.Fatalf("expected omitted starts_at for second event, got %v", *body[1].StartsAt)
	}
}

func TestPublicGetEvent(t *testing.T) {
	t.Parallel()

	t.Run("invalid event id", func(t *testing.T) {
		h := NewPublicHandler(&fakeBrowser{})
		c, rec := browseCtx(t, "abc")
		if err := h.GetEvent(c); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		h := NewPublicHandler(&fakeBrowser{})
		c, rec := browseCtx(t, "999")
		if err := h.GetEvent(c); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("found", func(t *testing.T) {
		h := NewPublicHandler(&fakeBrowser{byID: &repository.EventRecord{
			ID: 7, Title: "Jazz Night", RemainingTickets: 3,
		}})
		c, rec := browseCtx(t, "7")
		if err := h.GetEvent(c); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			EventID          uint64 `json:"event_id"`
			Title            string `json:"title"`
			RemainingTickets uint32 `json:"remaining_tickets"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if body.EventID != 7 || body.Title != "Jazz Night" || body.RemainingTickets != 3 {
			t.Fatalf("unexpected event view: %+v", body)
		}
	})
}
