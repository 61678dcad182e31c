package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func feed(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>x</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<item><title>Headline %d - Source</title><link>https://example.com/%d</link><pubDate>Mon, 13 Oct 2025 08:0%d:00 GMT</pubDate></item>`, i, i, i%10)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient("it", "IT")
	c.BaseURL = srv.URL
	return c
}

func TestFetch_ReturnsFirstFive(t *testing.T) {
	var q string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query().Get("q")
		if r.URL.Query().Get("hl") != "it" || r.URL.Query().Get("ceid") != "IT:it" {
			t.Errorf("unexpected locale params %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, feed(8))
	})

	items, err := c.Fetch(context.Background(), "BTC-USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q != "BTC stock news when:7d" {
		t.Errorf("expected -USD stripped from search, got %q", q)
	}
	if len(items) != DefaultLimit {
		t.Fatalf("expected %d items, got %d", DefaultLimit, len(items))
	}
	if items[0].Title != "Headline 0 - Source" || items[0].Link != "https://example.com/0" {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if items[0].Published.IsZero() {
		t.Error("expected pubDate to be parsed")
	}
}

func TestFetch_FewerItemsThanLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed(2))
	})
	items, err := c.Fetch(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestFetch_BadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if _, err := c.Fetch(context.Background(), "NVDA"); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestFetch_MalformedXML(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<rss><channel><item>")
	})
	if _, err := c.Fetch(context.Background(), "NVDA"); err == nil {
		t.Fatal("expected decode error")
	}
}
