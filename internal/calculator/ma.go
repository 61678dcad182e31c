package calculator

import (
	"errors"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when a series is shorter than the window.
var ErrInsufficientData = errors.New("not enough data for indicator calculation")

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	return stat.Mean(prices[len(prices)-period:], nil), nil
}

// SMASeries returns the simple moving average for every bar.
// The first period-1 values are null.
func SMASeries(prices []float64, period int) []null.Float {
	out := make([]null.Float, len(prices))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(prices); i++ {
		out[i] = null.FloatFrom(stat.Mean(prices[i-period+1:i+1], nil))
	}
	return out
}
