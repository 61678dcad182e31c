package calculator

import (
	"errors"
	"math"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
)

// Range scans the most recent n bars and returns the high and low.
// n <= 0 scans the whole slice.
func Range(bars []model.OHLCV, n int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	start := 0
	if n > 0 && len(bars) > n {
		start = len(bars) - n
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < len(bars); i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// ChangePct returns the percentage move from prev to last.
func ChangePct(prev, last float64) float64 {
	if prev == 0 {
		return 0
	}
	return (last - prev) / prev * 100
}
