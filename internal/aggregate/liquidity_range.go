package aggregate

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"poolscope/internal/model"
	"poolscope/internal/stats"
	"poolscope/internal/tickmath"
)

// OptimalLiquidityRange derives a tick range from the lowest low and highest
// high of a recent candle window, aligned to spacing.
func (a *Aggregator) OptimalLiquidityRange(ctx context.Context, token0, token1 model.Token, spacing int32) (model.LiquidityRange, error) {
	ctx, span := a.tracer.Start(ctx, "aggregate.optimal-liquidity-range")
	defer span.End()
	span.SetAttributes(
		attribute.String("pair", pairLabel(token0.Symbol, token1.Symbol)),
		attribute.Int("tick_spacing", int(spacing)),
	)

	out, err := a.optimalRange(ctx, token0, token1, spacing)
	return out, recordErr(span, err)
}

func (a *Aggregator) optimalRange(ctx context.Context, token0, token1 model.Token, spacing int32) (model.LiquidityRange, error) {
	sym0, sym1, err := validatePair(token0.Symbol, token1.Symbol)
	if err != nil {
		return model.LiquidityRange{}, err
	}
	if spacing <= 0 {
		return model.LiquidityRange{}, model.InvalidInputf("tick spacing must be positive, got %d", spacing)
	}
	if a.venues.Candles == nil {
		return model.LiquidityRange{}, model.Unsupported("candles", "fetch candles")
	}

	candles, err := a.venues.Candles.FetchCandles(ctx, sym0, sym1, a.cfg.RangeInterval, a.cfg.RangeWindow)
	if err != nil {
		return model.LiquidityRange{}, err
	}
	if len(candles) == 0 {
		return model.LiquidityRange{}, noData("no candles for %s", pairLabel(sym0, sym1))
	}

	bounds := stats.Summary(candles)
	lower, err := tickmath.PriceToTick(bounds.Min, token0.Decimals, token1.Decimals)
	if err != nil {
		return model.LiquidityRange{}, err
	}
	upper, err := tickmath.PriceToTick(bounds.Max, token0.Decimals, token1.Decimals)
	if err != nil {
		return model.LiquidityRange{}, err
	}
	if lower, err = tickmath.AlignTickToSpacing(lower, spacing); err != nil {
		return model.LiquidityRange{}, err
	}
	if upper, err = tickmath.AlignTickToSpacing(upper, spacing); err != nil {
		return model.LiquidityRange{}, err
	}

	return model.LiquidityRange{
		Token0:      sym0,
		Token1:      sym1,
		LowerTick:   lower,
		UpperTick:   upper,
		LowerPrice:  bounds.Min,
		UpperPrice:  bounds.Max,
		TickSpacing: spacing,
	}, nil
}

// OptimalLiquidityRangeBySymbol resolves decimals through the token
// directory before deriving the range. Unknown symbols are invalid input.
func (a *Aggregator) OptimalLiquidityRangeBySymbol(ctx context.Context, symbol0, symbol1 string, spacing int32) (model.LiquidityRange, error) {
	if _, _, err := validatePair(symbol0, symbol1); err != nil {
		return model.LiquidityRange{}, err
	}
	if a.venues.Tokens == nil {
		return model.LiquidityRange{}, model.Unsupported("tokens", "list tokens")
	}
	tokens, err := a.venues.Tokens.ListTokens(ctx)
	if err != nil {
		return model.LiquidityRange{}, err
	}
	token0, ok := findToken(tokens, symbol0)
	if !ok {
		return model.LiquidityRange{}, model.InvalidInputf("unknown token symbol %q", symbol0)
	}
	token1, ok := findToken(tokens, symbol1)
	if !ok {
		return model.LiquidityRange{}, model.InvalidInputf("unknown token symbol %q", symbol1)
	}
	return a.OptimalLiquidityRange(ctx, token0, token1, spacing)
}

// OptimalLiquidityRangeForPool reads the pool on-chain so tokens, decimals
// and tick spacing follow the pool's own fee tier.
func (a *Aggregator) OptimalLiquidityRangeForPool(ctx context.Context, poolAddress string) (model.LiquidityRange, error) {
	state, err := a.PoolState(ctx, poolAddress)
	if err != nil {
		return model.LiquidityRange{}, err
	}
	spacing := state.TickSpacing
	if spacing <= 0 {
		var ok bool
		if spacing, ok = tickmath.TickSpacingForFee(state.Fee); !ok {
			return model.LiquidityRange{}, model.InvalidInputf("pool %s has no usable tick spacing (fee %d)", state.Address, state.Fee)
		}
	}
	a.logger.Debug("pool range inputs",
		zap.String("pool", state.Address),
		zap.String("token0", state.Token0.Symbol),
		zap.String("token1", state.Token1.Symbol),
		zap.Int32("tick_spacing", spacing),
	)
	return a.OptimalLiquidityRange(ctx, state.Token0, state.Token1, spacing)
}

// findToken matches a symbol case-insensitively, preferring verified tokens.
func findToken(tokens []model.Token, symbol string) (model.Token, bool) {
	symbol = strings.TrimSpace(symbol)
	var (
		found model.Token
		ok    bool
	)
	for _, t := range tokens {
		if !strings.EqualFold(t.Symbol, symbol) {
			continue
		}
		if t.Verified {
			return t, true
		}
		if !ok {
			found, ok = t, true
		}
	}
	return found, ok
}
