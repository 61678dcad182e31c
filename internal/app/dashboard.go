// Package app composes ticker resolution, market data, news, and the AI
// advisor into the operations behind the dashboard. Failures of external
// services are logged and degrade to empty results; they are never returned
// to the caller as errors.
package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/advisor"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/cache"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/collector"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/resolver"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/session"
)

// Default cache lifetimes.
const (
	DefaultPriceTTL = 300 * time.Second
	DefaultNewsTTL  = 600 * time.Second
)

// errPartialQuotes keeps an incomplete quote set out of the cache.
var errPartialQuotes = errors.New("some quotes are missing")

// NewsSource returns recent headlines for a symbol.
type NewsSource interface {
	Fetch(ctx context.Context, symbol string) ([]model.NewsItem, error)
}

// Market is the resolved symbol with its chart. Chart is nil when no price
// data could be fetched.
type Market struct {
	Query  string       `json:"query"`
	Symbol string       `json:"symbol"`
	Chart  *model.Chart `json:"chart"`
}

// Dashboard serves the read paths of the hub.
type Dashboard struct {
	Resolver  *resolver.Resolver
	Collector *collector.Collector
	Feed      NewsSource
	Advisor   *advisor.Advisor
	Cache     cache.Store
	Sessions  *session.Store

	PriceTTL time.Duration
	NewsTTL  time.Duration
}

// Resolve maps a free-text query to a ticker.
func (d *Dashboard) Resolve(query string) string {
	return d.Resolver.Resolve(query)
}

// Market resolves query and returns the chart for it.
func (d *Dashboard) Market(ctx context.Context, query string) Market {
	symbol := d.Resolve(query)
	m := Market{Query: query, Symbol: symbol}

	chart, err := cache.Memoize(ctx, d.Cache, cache.Key("chart", symbol), d.priceTTL(),
		func(ctx context.Context) (*model.Chart, error) {
			return d.Collector.Chart(ctx, symbol)
		})
	if err != nil {
		log.Printf("[WARN] market %s: %v", symbol, err)
		return m
	}
	m.Chart = chart
	return m
}

// News returns the headlines for query, or an empty list when the feed fails.
func (d *Dashboard) News(ctx context.Context, query string) (string, []model.NewsItem) {
	symbol := d.Resolve(query)
	if d.Feed == nil {
		return symbol, []model.NewsItem{}
	}
	items, err := cache.Memoize(ctx, d.Cache, cache.Key("news", symbol), d.newsTTL(),
		func(ctx context.Context) ([]model.NewsItem, error) {
			return d.Feed.Fetch(ctx, symbol)
		})
	if err != nil {
		log.Printf("[WARN] news %s: %v", symbol, err)
		return symbol, []model.NewsItem{}
	}
	if items == nil {
		items = []model.NewsItem{}
	}
	return symbol, items
}

// Quotes resolves every query and returns the short-range quotes that
// could be fetched, in input order.
func (d *Dashboard) Quotes(ctx context.Context, queries []string) []model.Quote {
	symbols := make([]string, 0, len(queries))
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		symbols = append(symbols, d.Resolve(q))
	}
	if len(symbols) == 0 {
		return []model.Quote{}
	}

	quotes, err := cache.Memoize(ctx, d.Cache, cache.Key("quotes", strings.Join(symbols, ",")), d.priceTTL(),
		func(ctx context.Context) ([]model.Quote, error) {
			quotes := d.Collector.Quotes(ctx, symbols)
			if len(quotes) < len(symbols) {
				return quotes, errPartialQuotes
			}
			return quotes, nil
		})
	if err != nil {
		log.Printf("[WARN] quotes %v: %v, not cached", symbols, err)
	}
	if quotes == nil {
		return []model.Quote{}
	}
	return quotes
}

// Chat asks the advisor about query, or the session's last symbol when query
// is empty, and records both turns in the session.
func (d *Dashboard) Chat(ctx context.Context, token, query, message string) (string, error) {
	sess, err := d.Sessions.Get(token)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(query) == "" {
		query = sess.LastSymbol
	}

	m := d.Market(ctx, query)
	if err := d.Sessions.SetSymbol(token, m.Symbol); err != nil {
		return "", err
	}

	var snap *model.Snapshot
	if m.Chart != nil {
		snap = &m.Chart.Snapshot
	}
	reply := d.Advisor.Ask(ctx, snap, message)

	if err := d.Sessions.AppendMessage(token,
		model.ChatMessage{Role: model.RoleUser, Content: message},
		model.ChatMessage{Role: model.RoleAssistant, Content: reply},
	); err != nil {
		return "", err
	}
	return reply, nil
}

func (d *Dashboard) priceTTL() time.Duration {
	if d.PriceTTL > 0 {
		return d.PriceTTL
	}
	return DefaultPriceTTL
}

func (d *Dashboard) newsTTL() time.Duration {
	if d.NewsTTL > 0 {
		return d.NewsTTL
	}
	return DefaultNewsTTL
}
