package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/calculator"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/strategy"
)

// ErrNoData is returned when the provider has no bars for a symbol.
var ErrNoData = errors.New("no price data")

// Defaults for the dashboard chart.
const (
	DefaultHistoryDays = 365
	DefaultQuoteDays   = 5
	DefaultSMAPeriod   = 20
	DefaultRSIPeriod   = 14
	maxQuoteWorkers    = 4
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, days), nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	now := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   now.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher     Fetcher
	HistoryDays int
	SMAPeriod   int
	RSIPeriod   int
}

// NewCollector creates a new Collector with the dashboard defaults.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{
		Fetcher:     fetcher,
		HistoryDays: DefaultHistoryDays,
		SMAPeriod:   DefaultSMAPeriod,
		RSIPeriod:   DefaultRSIPeriod,
	}
}

// Series fetches the daily history for symbol.
func (c *Collector) Series(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, ErrNoData)
	}
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()}, nil
}

// Chart fetches one year of bars and derives SMA and RSI for every bar.
func (c *Collector) Chart(ctx context.Context, symbol string) (*model.Chart, error) {
	series, err := c.Series(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return BuildChart(series, c.SMAPeriod, c.RSIPeriod), nil
}

// BuildChart derives the indicator columns and the last-bar snapshot.
func BuildChart(series *model.PriceSeries, smaPeriod, rsiPeriod int) *model.Chart {
	closes := series.Closes()
	sma := calculator.SMASeries(closes, smaPeriod)
	rsi := calculator.RSISeries(closes, rsiPeriod)

	points := make([]model.ChartPoint, len(series.Bars))
	for i, b := range series.Bars {
		points[i] = model.ChartPoint{OHLCV: b, SMA: sma[i], RSI: rsi[i]}
	}

	chart := &model.Chart{Symbol: series.Symbol, Points: points}
	if n := len(points); n > 0 {
		last := points[n-1]
		chart.Snapshot = model.Snapshot{
			Symbol: series.Symbol,
			Price:  last.Close,
			SMA20:  last.SMA,
			RSI14:  last.RSI,
			AsOf:   last.Time,
		}
		chart.Snapshot.Signal = strategy.Evaluate(&chart.Snapshot)
	}
	return chart
}

// Quote builds a short-range summary for one symbol.
func (c *Collector) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, DefaultQuoteDays)
	if err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, ErrNoData)
	}
	last := bars[len(bars)-1]
	q := &model.Quote{Symbol: symbol, Last: last.Close, PrevClose: last.Close, AsOf: last.Time}
	if len(bars) > 1 {
		q.PrevClose = bars[len(bars)-2].Close
	}
	q.ChangePct = calculator.ChangePct(q.PrevClose, q.Last)
	if h, l, err := calculator.Range(bars, 0); err == nil {
		q.High, q.Low = h, l
	}
	return q, nil
}

// Quotes fetches quotes for several symbols concurrently. Symbols that fail
// are logged and left out; the order of the input is preserved.
func (c *Collector) Quotes(ctx context.Context, symbols []string) []model.Quote {
	results := make([]*model.Quote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxQuoteWorkers)
	for i, sym := range symbols {
		g.Go(func() error {
			q, err := c.Quote(gctx, sym)
			if err != nil {
				log.Printf("[WARN] quote %s failed: %v", sym, err)
				return nil
			}
			results[i] = q
			return nil
		})
	}
	_ = g.Wait()

	quotes := make([]model.Quote, 0, len(symbols))
	for _, q := range results {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	return quotes
}
