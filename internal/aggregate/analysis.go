package aggregate

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"poolscope/internal/model"
	"poolscope/internal/stats"
)

// GetPriceHistoryAnalysis fetches candles from the history venue and
// summarizes range, volatility and trend. An empty candle set fails with
// model.ErrNoDataAvailable.
func (a *Aggregator) GetPriceHistoryAnalysis(ctx context.Context, token0, token1 string, intervalMinutes, limit uint32) (model.PriceHistoryResult, error) {
	ctx, span := a.tracer.Start(ctx, "aggregate.price-history-analysis")
	defer span.End()
	span.SetAttributes(pairAttrs(token0, token1, intervalMinutes, limit)...)

	token0, token1, err := validateRequest(token0, token1, limit)
	if err != nil {
		return model.PriceHistoryResult{}, recordErr(span, err)
	}
	if a.venues.History == nil {
		return model.PriceHistoryResult{}, recordErr(span, model.Unsupported("history", "fetch candles"))
	}

	candles, err := a.venues.History.FetchCandles(ctx, token0, token1, intervalMinutes, limit)
	if err != nil {
		return model.PriceHistoryResult{}, recordErr(span, err)
	}
	if len(candles) == 0 {
		a.logger.Warn("no price data", zap.String("venue", a.venues.History.Name()), zap.String("pair", pairLabel(token0, token1)))
		return model.PriceHistoryResult{}, recordErr(span, noData("no price data for %s", pairLabel(token0, token1)))
	}

	result := Analyze(pairLabel(token0, token1), intervalMinutes, candles, a.cfg.RecentPrices)
	span.SetAttributes(
		attribute.Int("data_points", result.DataPoints),
		attribute.String("trend", string(result.Recommendation.Trend)),
		attribute.String("volatility_level", string(result.Volatility.Level)),
	)
	a.logger.Debug("price history analyzed",
		zap.String("pair", result.Pair),
		zap.Int("data_points", result.DataPoints),
		zap.Float64("volatility", result.Volatility.Value),
	)
	return result, nil
}

// Analyze builds a PriceHistoryResult from ascending candles. recent bounds
// the newest-first excerpt.
func Analyze(pair string, intervalMinutes uint32, candles []model.PricePoint, recent int) model.PriceHistoryResult {
	closes := stats.Closes(candles)
	priceRange := stats.Summary(candles)
	volatility := stats.Volatility(closes)

	recent = min(max(recent, 0), len(candles))
	recentPrices := make([]model.RecentPrice, 0, recent)
	for i := len(candles) - 1; i >= len(candles)-recent; i-- {
		c := candles[i]
		recentPrices = append(recentPrices, model.RecentPrice{
			Price:     c.Close,
			High:      c.High,
			Low:       c.Low,
			Timestamp: c.Timestamp,
		})
	}

	return model.PriceHistoryResult{
		Pair:       pair,
		PriceRange: priceRange,
		Volatility: model.VolatilityInfo{
			Value:      volatility,
			Percentage: volatility * 100,
			Level:      stats.VolatilityLevelOf(volatility),
		},
		DataPoints:   len(candles),
		Interval:     intervalMinutes,
		Pool:         &model.PoolInfo{},
		RecentPrices: recentPrices,
		Recommendation: model.RecommendationContext{
			CenterPrice:                priceRange.Average,
			SuggestedRangeWidthPercent: stats.SuggestedRangeWidthPercent(volatility),
			Trend:                      stats.TrendOf(closes),
		},
	}
}
