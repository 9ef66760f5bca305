// Package stats holds the price-series statistics used to size liquidity
// ranges.
package stats

import (
	"math"

	"poolscope/internal/model"
)

const (
	lowVolatility    = 0.02
	mediumVolatility = 0.05
	highVolatility   = 0.1
	trendThreshold   = 0.02
)

// MeanStd returns the arithmetic mean and population standard deviation.
func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

// Volatility is the coefficient of variation of closes. Fewer than two
// points, or a zero mean, yield 0.
func Volatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	mean, std := MeanStd(closes)
	if mean == 0 {
		return 0
	}
	return math.Abs(std / mean)
}

// VolatilityLevelOf buckets v: below 0.02 is LOW, below 0.05 MEDIUM, else HIGH.
func VolatilityLevelOf(v float64) model.VolatilityLevel {
	switch {
	case v < lowVolatility:
		return model.VolatilityLow
	case v < mediumVolatility:
		return model.VolatilityMedium
	default:
		return model.VolatilityHigh
	}
}

// SuggestedRangeWidthPercent maps volatility to a position width in percent.
func SuggestedRangeWidthPercent(v float64) float64 {
	switch {
	case v < lowVolatility:
		return 5
	case v < mediumVolatility:
		return 10
	case v < highVolatility:
		return 20
	default:
		return 30
	}
}

// TrendOf compares the mean of the first third of closes with the mean of
// the last third.
func TrendOf(closes []float64) model.Trend {
	n := len(closes)
	first := closes[:n/3]
	last := closes[n*2/3:]
	if len(first) == 0 || len(last) == 0 {
		return model.TrendSideways
	}
	firstMean, _ := MeanStd(first)
	lastMean, _ := MeanStd(last)
	if firstMean == 0 {
		return model.TrendSideways
	}
	change := (lastMean - firstMean) / firstMean
	switch {
	case change > trendThreshold:
		return model.TrendUpward
	case change < -trendThreshold:
		return model.TrendDownward
	default:
		return model.TrendSideways
	}
}

// Summary is the range of a candle series: min over lows, max over highs and
// mean over closes.
func Summary(candles []model.PricePoint) model.PriceRange {
	if len(candles) == 0 {
		return model.PriceRange{}
	}
	out := model.PriceRange{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, c := range candles {
		out.Min = math.Min(out.Min, c.Low)
		out.Max = math.Max(out.Max, c.High)
		sum += c.Close
	}
	out.Average = sum / float64(len(candles))
	return out
}

// Closes extracts close prices in series order.
func Closes(candles []model.PricePoint) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
