package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/event-ticketing/internal/model"
	"github.com/tigertix/event-ticketing/internal/repository"
)

// fakeBooker scripts the outcome of purchase calls.
type fakeBooker struct {
	receipt  model.Receipt
	receipts []model.Receipt
	err      error

	gotEventID uint64
	gotBuyerID uint64
	gotQty     int
}

func (f *fakeBooker) PurchaseSeat(ctx context.Context, eventID, buyerID uint64) (model.Receipt, error) {
	f.gotEventID, f.gotBuyerID = eventID, buyerID
	return f.receipt, f.err
}

func (f *fakeBooker) PurchaseMany(ctx context.Context, eventID, buyerID uint64, quantity int) ([]model.Receipt, error) {
	f.gotEventID, f.gotBuyerID, f.gotQty = eventID, buyerID, quantity
	return f.receipts, f.err
}

func doPurchase(t *testing.T, b Booker, eventID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/events/"+eventID+"/purchase", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events/:id/purchase")
	c.SetParamNames("id")
	c.SetParamValues(eventID)

	if err := NewPurchaseHandler(b).Purchase(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestPurchaseHandler(t *testing.T) {
	t.Parallel()

	t.Run("success returns receipt", func(t *testing.T) {
		fb := &fakeBooker{receipt: model.Receipt{
			TicketID:    42,
			EventID:     7,
			EventTitle:  "Jazz Night",
			SeatLabel:   "SEAT-001",
			BuyerID:     9,
			PriceCents:  5000,
			PurchasedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}}
		rec := doPurchase(t, fb, "7", `{"buyer_id":9}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if fb.gotEventID != 7 || fb.gotBuyerID != 9 {
			t.Fatalf("handler passed event=%d buyer=%d", fb.gotEventID, fb.gotBuyerID)
		}
		var body struct {
			Receipt model.Receipt `json:"receipt"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if body.Receipt.SeatLabel != "SEAT-001" || body.Receipt.TicketID != 42 {
			t.Fatalf("unexpected receipt: %+v", body.Receipt)
		}
	})

	t.Run("missing buyer defaults to 1", func(t *testing.T) {
		fb := &fakeBooker{receipt: model.Receipt{SeatLabel: "SEAT-001"}}
		rec := doPurchase(t, fb, "7", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if fb.gotBuyerID != 1 {
			t.Fatalf("expected default buyer 1, got %d", fb.gotBuyerID)
		}
	})

	t.Run("invalid event id", func(t *testing.T) {
		rec := doPurchase(t, &fakeBooker{}, "abc", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("event not found", func(t *testing.T) {
		rec := doPurchase(t, &fakeBooker{err: repository.ErrEventNotFound}, "999", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("sold out maps to 409", func(t *testing.T) {
		rec := doPurchase(t, &fakeBooker{err: repository.ErrSoldOut}, "7", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "sold out") {
			t.Fatalf("expected sold out message, got %s", rec.Body.String())
		}
	})

	t.Run("busy maps to 503 with retry hint", func(t *testing.T) {
		rec := doPurchase(t, &fakeBooker{err: repository.ErrBusy}, "7", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Fatalf("expected Retry-After header")
		}
	})

	t.Run("timeout maps to 503", func(t *testing.T) {
		rec := doPurchase(t, &fakeBooker{err: context.DeadlineExceeded}, "7", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("storage failure maps to 500", func(t *testing.T) {
		rec := doPurchase(t, &fakeBooker{err: context.Canceled}, "7", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
