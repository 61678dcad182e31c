package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Snapshot summarises the last bar of a chart.
type Snapshot struct {
	Symbol string     `json:"symbol"`
	Price  float64    `json:"price"`
	SMA20  null.Float `json:"sma20"`
	RSI14  null.Float `json:"rsi14"`
	Signal Signal     `json:"signal"`
	AsOf   time.Time  `json:"as_of"`
}
