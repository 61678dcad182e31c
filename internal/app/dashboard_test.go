package app

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/advisor"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/cache"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/collector"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/resolver"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/session"
)

type countingFetcher struct {
	inner collector.Fetcher
	calls atomic.Int32
}

func (c *countingFetcher) Name() string { return "counting" }

func (c *countingFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	c.calls.Add(1)
	return c.inner.FetchDailyBars(ctx, symbol, days)
}

type stubNews struct {
	items []model.NewsItem
	err   error
	calls int
}

func (s *stubNews) Fetch(_ context.Context, _ string) ([]model.NewsItem, error) {
	s.calls++
	return s.items, s.err
}

type echoCompleter struct{ system string }

func (e *echoCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	e.system = system
	return "risposta: " + prompt, nil
}

func newTestDashboard(t *testing.T, f collector.Fetcher, n NewsSource, llm advisor.Completer) *Dashboard {
	t.Helper()
	store, err := cache.NewLocalStore(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &Dashboard{
		Resolver:  resolver.New(nil),
		Collector: collector.NewCollector(f),
		Feed:      n,
		Advisor:   advisor.New(llm, "Italian"),
		Cache:     store,
		Sessions:  session.NewStore(),
	}
}

func TestMarket_ResolvesAndCaches(t *testing.T) {
	f := &countingFetcher{inner: &collector.MockFetcher{Price: 100}}
	d := newTestDashboard(t, f, nil, nil)
	ctx := context.Background()

	m := d.Market(ctx, "bitcoin")
	if m.Symbol != "BTC-USD" {
		t.Errorf("expected BTC-USD, got %s", m.Symbol)
	}
	if m.Chart == nil || len(m.Chart.Points) != collector.DefaultHistoryDays {
		t.Fatalf("expected a full chart, got %+v", m.Chart)
	}
	if !m.Chart.Snapshot.RSI14.Valid || !m.Chart.Snapshot.SMA20.Valid {
		t.Error("expected indicators on the last bar")
	}

	again := d.Market(ctx, "BTC")
	if again.Chart == nil {
		t.Fatal("expected cached chart")
	}
	if f.calls.Load() != 1 {
		t.Errorf("expected 1 fetch, got %d", f.calls.Load())
	}
}

func TestMarket_EmptyOrFailedFetchYieldsNoChart(t *testing.T) {
	tests := []struct {
		name    string
		fetcher collector.Fetcher
	}{
		{"empty", &collector.MockFetcher{DailyData: []model.OHLCV{}}},
		{"error", &collector.MockFetcher{Err: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDashboard(t, tt.fetcher, nil, nil)
			m := d.Market(context.Background(), "NOTATICKER")
			if m.Chart != nil {
				t.Errorf("expected nil chart, got %+v", m.Chart)
			}
			if m.Symbol != "NOTATICKER" {
				t.Errorf("expected symbol passthrough, got %s", m.Symbol)
			}
		})
	}
}

func TestNews_FailureIsEmptyAndNotCached(t *testing.T) {
	n := &stubNews{err: errors.New("feed down")}
	d := newTestDashboard(t, &collector.MockFetcher{Price: 1}, n, nil)
	ctx := context.Background()

	sym, items := d.News(ctx, "nvidia")
	if sym != "NVDA" {
		t.Errorf("expected NVDA, got %s", sym)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil list, got %v", items)
	}

	n.err = nil
	n.items = []model.NewsItem{{Title: "Nvidia sale", Link: "https://example.com/1"}}
	_, items = d.News(ctx, "nvidia")
	if len(items) != 1 {
		t.Fatalf("expected 1 item after recovery, got %d", len(items))
	}
	_, _ = d.News(ctx, "NVDA")
	if n.calls != 2 {
		t.Errorf("expected 2 feed calls, got %d", n.calls)
	}
}

func TestQuotes_ResolvesAndDropsFailures(t *testing.T) {
	d := newTestDashboard(t, &collector.MockFetcher{Price: 10}, nil, nil)
	quotes := d.Quotes(context.Background(), []string{"eth", " ", "apple"})
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if quotes[0].Symbol != "ETH-USD" || quotes[1].Symbol != "AAPL" {
		t.Errorf("unexpected symbols: %s, %s", quotes[0].Symbol, quotes[1].Symbol)
	}

	failing := newTestDashboard(t, &collector.MockFetcher{Err: errors.New("down")}, nil, nil)
	if got := failing.Quotes(context.Background(), []string{"AAPL"}); len(got) != 0 {
		t.Errorf("expected no quotes, got %v", got)
	}
}

// switchFetcher fails every symbol while down is set.
type switchFetcher struct {
	collector.MockFetcher
	down atomic.Bool
	bad  string
}

func (s *switchFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if s.down.Load() || symbol == s.bad {
		return nil, errors.New("provider down")
	}
	return s.MockFetcher.FetchDailyBars(ctx, symbol, days)
}

func TestQuotes_OutageIsNotCached(t *testing.T) {
	f := &switchFetcher{MockFetcher: collector.MockFetcher{Price: 10}}
	d := newTestDashboard(t, f, nil, nil)
	ctx := context.Background()

	f.down.Store(true)
	if got := d.Quotes(ctx, []string{"AAPL", "NVDA"}); len(got) != 0 {
		t.Fatalf("expected no quotes during outage, got %d", len(got))
	}

	f.down.Store(false)
	if got := d.Quotes(ctx, []string{"AAPL", "NVDA"}); len(got) != 2 {
		t.Errorf("expected 2 quotes after recovery, got %d", len(got))
	}
}

func TestQuotes_PartialResultIsNotCached(t *testing.T) {
	f := &switchFetcher{MockFetcher: collector.MockFetcher{Price: 10}, bad: "NVDA"}
	d := newTestDashboard(t, f, nil, nil)
	ctx := context.Background()

	if got := d.Quotes(ctx, []string{"AAPL", "NVDA"}); len(got) != 1 || got[0].Symbol != "AAPL" {
		t.Fatalf("expected only AAPL, got %+v", got)
	}

	f.bad = ""
	if got := d.Quotes(ctx, []string{"AAPL", "NVDA"}); len(got) != 2 {
		t.Errorf("expected 2 quotes once NVDA recovers, got %d", len(got))
	}
}

func TestChat_RecordsTurnsAndUsesLastSymbol(t *testing.T) {
	llm := &echoCompleter{}
	d := newTestDashboard(t, &collector.MockFetcher{Price: 50}, nil, llm)
	ctx := context.Background()
	tok := d.Sessions.Create().Token

	reply, err := d.Chat(ctx, tok, "apple", "trend?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "risposta: trend?" {
		t.Errorf("unexpected reply %q", reply)
	}
	if !strings.Contains(llm.system, "Ticker AAPL") {
		t.Errorf("system instruction missing ticker: %s", llm.system)
	}

	if _, err := d.Chat(ctx, tok, "", "e ora?"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(llm.system, "Ticker AAPL") {
		t.Errorf("expected last symbol reuse, got %s", llm.system)
	}

	sess, _ := d.Sessions.Get(tok)
	if len(sess.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(sess.Messages))
	}
	if sess.Messages[1].Role != model.RoleAssistant {
		t.Errorf("expected assistant turn second, got %s", sess.Messages[1].Role)
	}
}

func TestChat_UnknownSession(t *testing.T) {
	d := newTestDashboard(t, &collector.MockFetcher{Price: 1}, nil, nil)
	if _, err := d.Chat(context.Background(), "nope", "AAPL", "hi"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
