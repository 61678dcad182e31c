package strategy

import (
	"github.com/guregu/null/v6"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

// RSI band edges drawn on the chart.
const (
	OversoldLevel   = 30.0
	OverboughtLevel = 70.0
)

// classifyZone places the RSI in one of the three bands.
// A missing RSI is treated as neutral.
func classifyZone(rsi null.Float) model.Zone {
	if !rsi.Valid {
		return model.ZoneNeutral
	}
	switch {
	case rsi.Float64 < OversoldLevel:
		return model.ZoneOversold
	case rsi.Float64 > OverboughtLevel:
		return model.ZoneOverbought
	default:
		return model.ZoneNeutral
	}
}

// classifyTrend compares price with its SMA20.
func classifyTrend(price float64, sma null.Float) model.Trend {
	if !sma.Valid || sma.Float64 == 0 {
		return model.TrendUnknown
	}
	if price >= sma.Float64 {
		return model.TrendAbove
	}
	return model.TrendBelow
}
