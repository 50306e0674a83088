package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tigertix/event-ticketing/internal/intent"
	"github.com/tigertix/event-ticketing/internal/model"
	"github.com/tigertix/event-ticketing/internal/repository"
)

type fakeEventFinder struct {
	events  []repository.EventRecord
	byTitle *repository.EventRecord
	err     error

	gotName string
}

func (f *fakeEventFinder) List(ctx context.Context) ([]repository.EventRecord, error) {
	return f.events, f.err
}

func (f *fakeEventFinder) FindByTitle(ctx context.Context, name string) (*repository.EventRecord, error) {
	f.gotName = name
	if f.byTitle == nil {
		return nil, repository.ErrEventNotFound
	}
	return f.byTitle, f.err
}

func doChat(t *testing.T, h *ChatHandler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var err error
	if path == "/v1/chat/parse" {
		err = h.ParseOnly(c)
	} else {
		err = h.Chat(c)
	}
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func chatReply(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	return body.Reply
}

func TestChatHandler_ParseOnly(t *testing.T) {
	t.Parallel()

	h := NewChatHandler(&fakeEventFinder{}, &fakeBooker{})

	t.Run("missing message", func(t *testing.T) {
		rec := doChat(t, h, "/v1/chat/parse", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unparseable message", func(t *testing.T) {
		rec := doChat(t, h, "/v1/chat/parse", `{"message":"purple monkey dishwasher"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("booking message", func(t *testing.T) {
		rec := doChat(t, h, "/v1/chat/parse", `{"message":"book 2 tickets for jazz night"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Intent  string `json:"intent"`
			Event   string `json:"event"`
			Tickets int    `json:"tickets"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if body.Intent != "book" || body.Event != "jazz night" || body.Tickets != 2 {
			t.Fatalf("unexpected parse result: %+v", body)
		}
	})
}

func TestChatHandler_Conversation(t *testing.T) {
	t.Parallel()

	t.Run("greeting", func(t *testing.T) {
		h := NewChatHandler(&fakeEventFinder{}, &fakeBooker{})
		rec := doChat(t, h, "/v1/chat", `{"message":"hello","session_id":"s1"}`)
		if !strings.Contains(chatReply(t, rec), "tigertix assistant") {
			t.Fatalf("unexpected greeting: %s", rec.Body.String())
		}
	})

	t.Run("show events lists titles with counts", func(t *testing.T) {
		finder := &fakeEventFinder{events: []repository.EventRecord{
			{ID: 1, Title: "Jazz Night", RemainingTickets: 12},
			{ID: 2, Title: "Blues Bash", RemainingTickets: 0},
		}}
		h := NewChatHandler(finder, &fakeBooker{})
		rec := doChat(t, h, "/v1/chat", `{"message":"show events","session_id":"s1"}`)
		reply := chatReply(t, rec)
		if !strings.Contains(reply, "Jazz Night (12 left)") || !strings.Contains(reply, "Blues Bash (0 left)") {
			t.Fatalf("unexpected listing: %s", reply)
		}
	})

	t.Run("confirm without pending booking", func(t *testing.T) {
		h := NewChatHandler(&fakeEventFinder{}, &fakeBooker{})
		rec := doChat(t, h, "/v1/chat", `{"message":"yes book jazz night","session_id":"s1"}`)
		if !strings.Contains(chatReply(t, rec), "nothing to confirm") {
			t.Fatalf("unexpected reply: %s", rec.Body.String())
		}
	})

	t.Run("book then confirm purchases seats", func(t *testing.T) {
		finder := &fakeEventFinder{byTitle: &repository.EventRecord{ID: 5, Title: "Jazz Night", RemainingTickets: 10}}
		booker := &fakeBooker{receipts: []model.Receipt{
			{SeatLabel: "SEAT-001"}, {SeatLabel: "SEAT-002"},
		}}
		h := NewChatHandler(finder, booker)

		rec := doChat(t, h, "/v1/chat", `{"message":"book 2 tickets for jazz","session_id":"s2"}`)
		if !strings.Contains(chatReply(t, rec), "please confirm") {
			t.Fatalf("expected confirmation prompt, got %s", rec.Body.String())
		}

		rec = doChat(t, h, "/v1/chat", `{"message":"yes book jazz","session_id":"s2","buyer_id":3}`)
		reply := chatReply(t, rec)
		if !strings.Contains(reply, "booked 2 ticket(s) for Jazz Night") {
			t.Fatalf("unexpected confirm reply: %s", reply)
		}
		if booker.gotEventID != 5 || booker.gotBuyerID != 3 || booker.gotQty != 2 {
			t.Fatalf("booker called with event=%d buyer=%d qty=%d", booker.gotEventID, booker.gotBuyerID, booker.gotQty)
		}
		if finder.gotName != "jazz" {
			t.Fatalf("expected lookup by %q, got %q", "jazz", finder.gotName)
		}
	})

	t.Run("partial fulfillment is reported", func(t *testing.T) {
		finder := &fakeEventFinder{byTitle: &repository.EventRecord{ID: 5, Title: "Jazz Night"}}
		booker := &fakeBooker{
			receipts: []model.Receipt{{SeatLabel: "SEAT-001"}, {SeatLabel: "SEAT-002"}},
			err:      repository.ErrSoldOut,
		}
		h := NewChatHandler(finder, booker)

		doChat(t, h, "/v1/chat", `{"message":"book 3 tickets for jazz","session_id":"s3"}`)
		rec := doChat(t, h, "/v1/chat", `{"message":"yes book jazz","session_id":"s3"}`)
		reply := chatReply(t, rec)
		if !strings.Contains(reply, "booked 2 ticket(s)") || !strings.Contains(reply, "remaining 1") {
			t.Fatalf("expected partial fulfillment report, got %s", reply)
		}
	})

	t.Run("confirm on sold out event", func(t *testing.T) {
		finder := &fakeEventFinder{byTitle: &repository.EventRecord{ID: 5, Title: "Jazz Night"}}
		booker := &fakeBooker{err: repository.ErrSoldOut}
		h := NewChatHandler(finder, booker)

		doChat(t, h, "/v1/chat", `{"message":"book 1 ticket for jazz","session_id":"s4"}`)
		rec := doChat(t, h, "/v1/chat", `{"message":"yes book jazz","session_id":"s4"}`)
		if !strings.Contains(chatReply(t, rec), "sold out") {
			t.Fatalf("expected sold out reply, got %s", rec.Body.String())
		}
	})

	t.Run("unknown event name", func(t *testing.T) {
		h := NewChatHandler(&fakeEventFinder{}, &fakeBooker{})
		doChat(t, h, "/v1/chat", `{"message":"book 1 ticket for opera","session_id":"s5"}`)
		rec := doChat(t, h, "/v1/chat", `{"message":"yes book opera","session_id":"s5"}`)
		if !strings.Contains(chatReply(t, rec), "couldn't find an event") {
			t.Fatalf("unexpected reply: %s", rec.Body.String())
		}
	})
}

func TestChatHandler_PendingLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("expired proposal is not confirmable", func(t *testing.T) {
		finder := &fakeEventFinder{byTitle: &repository.EventRecord{ID: 5, Title: "Jazz Night"}}
		booker := &fakeBooker{receipts: []model.Receipt{{SeatLabel: "SEAT-001"}}}
		h := NewChatHandler(finder, booker)

		doChat(t, h, "/v1/chat", `{"message":"book 1 ticket for jazz","session_id":"s1"}`)

		base := time.Now()
		h.now = func() time.Time { return base.Add(pendingTTL + time.Minute) }
		rec := doChat(t, h, "/v1/chat", `{"message":"yes book jazz","session_id":"s1"}`)
		if !strings.Contains(chatReply(t, rec), "nothing to confirm") {
			t.Fatalf("expected expired proposal to be gone, got %s", rec.Body.String())
		}
		if booker.gotQty != 0 {
			t.Fatalf("expired proposal must not trigger a purchase")
		}
	})

	t.Run("expired proposals are swept on insert", func(t *testing.T) {
		h := NewChatHandler(&fakeEventFinder{}, &fakeBooker{})
		proposal := intent.Intent{Kind: intent.KindBook, Event: "jazz", Quantity: 1}

		base := time.Now()
		for i := 0; i < 100; i++ {
			h.storePending(fmt.Sprintf("old-%d", i), proposal)
		}
		h.now = func() time.Time { return base.Add(pendingTTL + time.Minute) }
		h.storePending("fresh", proposal)

		h.mu.Lock()
		n := len(h.pending)
		h.mu.Unlock()
		if n != 1 {
			t.Fatalf("expected only the fresh proposal to survive, got %d entries", n)
		}
	})

	t.Run("session map is hard-capped", func(t *testing.T) {
		h := NewChatHandler(&fakeEventFinder{}, &fakeBooker{})
		proposal := intent.Intent{Kind: intent.KindBook, Event: "jazz", Quantity: 1}

		for i := 0; i < maxPendingSessions*2; i++ {
			h.storePending(fmt.Sprintf("s-%d", i), proposal)
		}

		h.mu.Lock()
		n := len(h.pending)
		_, last := h.pending[fmt.Sprintf("s-%d", maxPendingSessions*2-1)]
		h.mu.Unlock()
		if n > maxPendingSessions {
			t.Fatalf("pending map grew to %d entries, cap is %d", n, maxPendingSessions)
		}
		if !last {
			t.Fatalf("most recent proposal was evicted")
		}
	})
}
