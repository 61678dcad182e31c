package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	n.Backoff = time.Millisecond
	return n
}

func TestSend_PostsHTMLMessage(t *testing.T) {
	var got map[string]any
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	})
	if err := n.Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["chat_id"] != "42" || got["parse_mode"] != "HTML" || got["text"] != "<b>hi</b>" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"ok":false}`, http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})
	if err := n.SendWithRetry(context.Background(), "x", 3); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}

	calls.Store(-100)
	if err := n.SendWithRetry(context.Background(), "x", 1); err == nil || !strings.Contains(err.Error(), "2 retries") {
		t.Errorf("expected exhausted error, got %v", err)
	}
}

func TestGetUpdates(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "7" {
			t.Errorf("offset = %s", r.URL.Query().Get("offset"))
		}
		w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":"/quote btc"}},{"update_id":8}]}`))
	})
	updates, err := n.getUpdates(context.Background(), n.Client, 7, 0)
	if err != nil {
		t.Fatalf("get updates: %v", err)
	}
	if len(updates) != 2 || updates[0].Message.Text != "/quote btc" || updates[1].Message != nil {
		t.Errorf("unexpected updates %+v", updates)
	}
}

func TestFormatters(t *testing.T) {
	snap := &model.Snapshot{
		Symbol: "AT&T",
		Price:  101.234,
		RSI14:  null.FloatFrom(72.44),
		AsOf:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Signal: model.Signal{Zone: model.ZoneOverbought, Label: "Ipercomprato"},
	}

	alert := FormatZoneAlert(model.ZoneNeutral, snap)
	for _, want := range []string{"NEUTRAL → OVERBOUGHT", "AT&amp;T", "101.23", "RSI14: 72.4", "SMA20: N/A", "2024-05-01"} {
		if !strings.Contains(alert, want) {
			t.Errorf("alert missing %q:\n%s", want, alert)
		}
	}

	quotes := FormatQuotes([]model.Quote{{Symbol: "NVDA", Last: 10, ChangePct: -1.5}, {Symbol: "AAPL", Last: 20, ChangePct: 2}})
	if !strings.Contains(quotes, "▼ NVDA: 10.00 (-1.50%)") || !strings.Contains(quotes, "▲ AAPL: 20.00 (+2.00%)") {
		t.Errorf("unexpected quotes:\n%s", quotes)
	}
	if FormatQuotes(nil) == "" {
		t.Error("empty quotes should still produce text")
	}

	news := FormatNews("NVDA", []model.NewsItem{{Title: "A <b> B", Link: "https://x.test/?a=1&b=2"}})
	if !strings.Contains(news, `href="https://x.test/?a=1&amp;b=2"`) || !strings.Contains(news, "A &lt;b&gt; B") {
		t.Errorf("news not escaped:\n%s", news)
	}
}
