package model

// Zone is the RSI band the last bar falls into.
type Zone string

const (
	ZoneOversold   Zone = "OVERSOLD"
	ZoneNeutral    Zone = "NEUTRAL"
	ZoneOverbought Zone = "OVERBOUGHT"
)

// Trend tells whether price sits above or below its SMA.
type Trend string

const (
	TrendAbove   Trend = "ABOVE_SMA"
	TrendBelow   Trend = "BELOW_SMA"
	TrendUnknown Trend = "UNKNOWN"
)

// Signal is the tactical reading derived from RSI and SMA20.
type Signal struct {
	Zone  Zone   `json:"zone"`
	Trend Trend  `json:"trend"`
	Label string `json:"label"`
}
