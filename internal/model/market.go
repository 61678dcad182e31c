package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds raw daily bars for one symbol, oldest first.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the close prices of the series in order.
func (p *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		closes[i] = b.Close
	}
	return closes
}

// ChartPoint is a bar plus the indicators derived for it.
// SMA and RSI stay null until their window is filled.
type ChartPoint struct {
	OHLCV
	SMA null.Float `json:"sma"`
	RSI null.Float `json:"rsi"`
}

// Chart is everything the dashboard needs to draw one symbol.
type Chart struct {
	Symbol   string       `json:"symbol"`
	Points   []ChartPoint `json:"points"`
	Snapshot Snapshot     `json:"snapshot"`
}

// Quote is a short-range price summary used by the ticker tape.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Last      float64   `json:"last"`
	PrevClose float64   `json:"prev_close"`
	ChangePct float64   `json:"change_pct"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	AsOf      time.Time `json:"as_of"`
}
