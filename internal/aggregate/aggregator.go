package aggregate

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"poolscope/internal/model"
	"poolscope/internal/provider"
)

const (
	tracerName = "poolscope/aggregate"

	defaultRangeWindow   = 30
	defaultRangeInterval = 15
	defaultRecentPrices  = 10
)

// Config controls analysis windows.
type Config struct {
	// RangeWindow and RangeInterval size the candle window used to derive an
	// optimal liquidity range: 30 bars of 15 minutes by default.
	RangeWindow   uint32
	RangeInterval uint32
	// RecentPrices caps the newest-first candle excerpt in an analysis.
	RecentPrices int
}

// PoolStateReader reads on-chain pool state.
type PoolStateReader interface {
	PoolState(ctx context.Context, poolAddress string) (model.PoolState, error)
}

// Venues assigns providers to roles.
type Venues struct {
	// Listing venues are queried concurrently by ListPools.
	Listing []provider.Provider
	// Primary answers ownership probes and serves liquidity for pools it
	// owns; Secondary serves every other pool.
	Primary   provider.Provider
	Secondary provider.Provider
	// Candles serves GetCandles and the optimal range window.
	Candles provider.Provider
	// History serves GetPriceHistoryAnalysis.
	History provider.Provider
	// Tokens resolves symbols to decimals. Optional.
	Tokens provider.TokenDirectory
	// Prices quotes token prices by address. Optional.
	Prices provider.PriceDirectory
	// PoolState reads pools on-chain. Optional.
	PoolState PoolStateReader
}

// Aggregator dispatches requests across venues and runs the analytics.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	cfg    Config
	venues Venues
	logger *zap.Logger
	tracer trace.Tracer
}

func NewAggregator(cfg Config, venues Venues, logger *zap.Logger, tracer trace.Tracer) *Aggregator {
	if cfg.RangeWindow == 0 {
		cfg.RangeWindow = defaultRangeWindow
	}
	if cfg.RangeInterval == 0 {
		cfg.RangeInterval = defaultRangeInterval
	}
	if cfg.RecentPrices <= 0 {
		cfg.RecentPrices = defaultRecentPrices
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Aggregator{cfg: cfg, venues: venues, logger: logger, tracer: tracer}
}

// GetLiquidity returns the active liquidity distribution of a pool. The
// primary venue is probed for ownership: an owned pool is served by the
// primary venue alone, any other by the secondary venue. A failed probe is
// returned to the caller.
func (a *Aggregator) GetLiquidity(ctx context.Context, poolAddress string) ([]model.LiquidityTick, error) {
	ctx, span := a.tracer.Start(ctx, "aggregate.get-liquidity")
	defer span.End()
	span.SetAttributes(attribute.String("pool", poolAddress))

	ticks, err := a.getLiquidity(ctx, poolAddress)
	return ticks, recordErr(span, err)
}

func (a *Aggregator) getLiquidity(ctx context.Context, poolAddress string) ([]model.LiquidityTick, error) {
	poolAddress = strings.TrimSpace(poolAddress)
	if err := validateAddress(poolAddress); err != nil {
		return nil, err
	}
	if a.venues.Primary == nil || a.venues.Secondary == nil {
		return nil, model.Unsupported("liquidity", "fetch liquidity")
	}

	owned, err := a.venues.Primary.DetectOwnership(ctx, poolAddress)
	if err != nil {
		return nil, err
	}

	venue := a.venues.Secondary
	if owned {
		venue = a.venues.Primary
	}
	a.logger.Info("liquidity dispatch",
		zap.String("pool", poolAddress),
		zap.Bool("owned_by_primary", owned),
		zap.String("venue", venue.Name()),
	)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("venue", venue.Name()))
	return venue.FetchLiquidity(ctx, poolAddress)
}

// GetCandles returns candles for a pair from the candle venue in ascending
// time order. An empty result is not an error.
func (a *Aggregator) GetCandles(ctx context.Context, token0, token1 string, intervalMinutes, limit uint32) ([]model.PricePoint, error) {
	ctx, span := a.tracer.Start(ctx, "aggregate.get-candles")
	defer span.End()
	span.SetAttributes(pairAttrs(token0, token1, intervalMinutes, limit)...)

	candles, err := a.getCandles(ctx, token0, token1, intervalMinutes, limit)
	return candles, recordErr(span, err)
}

func (a *Aggregator) getCandles(ctx context.Context, token0, token1 string, intervalMinutes, limit uint32) ([]model.PricePoint, error) {
	token0, token1, err := validateRequest(token0, token1, limit)
	if err != nil {
		return nil, err
	}
	if a.venues.Candles == nil {
		return nil, model.Unsupported("candles", "fetch candles")
	}
	candles, err := a.venues.Candles.FetchCandles(ctx, token0, token1, intervalMinutes, limit)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		a.logger.Warn("no candles", zap.String("venue", a.venues.Candles.Name()), zap.String("pair", pairLabel(token0, token1)))
		return []model.PricePoint{}, nil
	}
	return candles, nil
}

// PoolState reads a pool's on-chain state.
func (a *Aggregator) PoolState(ctx context.Context, poolAddress string) (model.PoolState, error) {
	ctx, span := a.tracer.Start(ctx, "aggregate.pool-state")
	defer span.End()
	span.SetAttributes(attribute.String("pool", poolAddress))

	if err := validateAddress(poolAddress); err != nil {
		return model.PoolState{}, recordErr(span, err)
	}
	if a.venues.PoolState == nil {
		return model.PoolState{}, recordErr(span, model.Unsupported("chain", "pool state"))
	}
	state, err := a.venues.PoolState.PoolState(ctx, strings.TrimSpace(poolAddress))
	return state, recordErr(span, err)
}

// TokenPrices quotes current prices for hex token addresses.
func (a *Aggregator) TokenPrices(ctx context.Context, addresses []string) ([]model.TokenPrice, error) {
	ctx, span := a.tracer.Start(ctx, "aggregate.token-prices")
	defer span.End()
	span.SetAttributes(attribute.Int("tokens", len(addresses)))

	if len(addresses) == 0 {
		return nil, recordErr(span, model.InvalidInputf("no token addresses to price"))
	}
	cleaned := make([]string, len(addresses))
	for i, addr := range addresses {
		if err := validateAddress(addr); err != nil {
			return nil, recordErr(span, err)
		}
		cleaned[i] = strings.TrimSpace(addr)
	}
	if a.venues.Prices == nil {
		return nil, recordErr(span, model.Unsupported("prices", "token prices"))
	}
	prices, err := a.venues.Prices.TokenPrices(ctx, cleaned)
	return prices, recordErr(span, err)
}

func validateAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return model.InvalidInputf("pool address is empty")
	}
	if !common.IsHexAddress(address) {
		return model.InvalidInputf("pool address %q is not a hex address", address)
	}
	return nil
}

// validateRequest trims the pair and rejects empty or case-insensitively
// identical tokens and a zero limit.
func validateRequest(token0, token1 string, limit uint32) (string, string, error) {
	token0, token1, err := validatePair(token0, token1)
	if err != nil {
		return "", "", err
	}
	if limit == 0 {
		return "", "", model.InvalidInputf("limit must be positive")
	}
	return token0, token1, nil
}

func validatePair(token0, token1 string) (string, string, error) {
	token0 = strings.TrimSpace(token0)
	token1 = strings.TrimSpace(token1)
	if token0 == "" || token1 == "" {
		return "", "", model.InvalidInputf("token0 and token1 are required")
	}
	if strings.EqualFold(token0, token1) {
		return "", "", model.InvalidInputf("token0 and token1 must differ, got %q twice", token0)
	}
	return token0, token1, nil
}

func pairLabel(token0, token1 string) string {
	return token0 + "/" + token1
}

func pairAttrs(token0, token1 string, intervalMinutes, limit uint32) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("pair", pairLabel(token0, token1)),
		attribute.Int64("interval_minutes", int64(intervalMinutes)),
		attribute.Int64("limit", int64(limit)),
	}
}

func recordErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func noData(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrNoDataAvailable, fmt.Sprintf(format, args...))
}
