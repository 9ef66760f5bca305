package aggregate

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"

	"poolscope/internal/httpx"
	"poolscope/internal/model"
	"poolscope/internal/provider"
	"poolscope/internal/provider/dragonswap"
	"poolscope/internal/stats"
	"poolscope/internal/tickmath"
)

const testPool = "0x1111111111111111111111111111111111111111"

func newMockVenue(ctrl *gomock.Controller, name string) *provider.MockProvider {
	m := provider.NewMockProvider(ctrl)
	m.EXPECT().Name().Return(name).AnyTimes()
	return m
}

func newTestAggregator(venues Venues) *Aggregator {
	return NewAggregator(Config{}, venues, nil, noop.NewTracerProvider().Tracer("test"))
}

func ptr(v float64) *float64 { return &v }

func risingCandles(n int, step float64) []model.PricePoint {
	out := make([]model.PricePoint, n)
	price := 100.0
	for i := range out {
		out[i] = model.PricePoint{
			Timestamp: int64(1700000000 + i*900),
			Open:      price,
			High:      price * 1.002,
			Low:       price * 0.998,
			Close:     price,
		}
		price *= 1 + step
	}
	return out
}

func TestListPoolsPartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := newMockVenue(ctrl, "DragonSwap")
	working := newMockVenue(ctrl, "Sailor")

	failing.EXPECT().ListPools(gomock.Any()).Return(nil, errors.New("connection reset"))
	working.EXPECT().ListPools(gomock.Any()).Return([]model.UnifiedPool{
		{ID: "0xs1", Protocol: model.ProtocolSailor, TVL: ptr(5000)},
		{ID: "0xs2", Protocol: model.ProtocolSailor},
	}, nil)

	agg := newTestAggregator(Venues{Listing: []provider.Provider{failing, working}})

	pools, err := agg.ListPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Equal(t, "0xs1", pools[0].ID)
	assert.Equal(t, "0xs2", pools[1].ID)
}

func TestListPoolsDetailedReportsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newMockVenue(ctrl, "DragonSwap")
	b := newMockVenue(ctrl, "Sailor")

	a.EXPECT().ListPools(gomock.Any()).Return([]model.UnifiedPool{{ID: "0xd1"}}, nil)
	b.EXPECT().ListPools(gomock.Any()).Return(nil, model.WrapVenue("Sailor", "list pools", model.ErrUpstreamFailure))

	listing := newTestAggregator(Venues{Listing: []provider.Provider{a, b}}).ListPoolsDetailed(context.Background())
	require.Len(t, listing.Pools, 1)
	require.Len(t, listing.Failures, 1)

	err := listing.Err()
	require.ErrorIs(t, err, model.ErrAggregationPartialFailure)
	require.ErrorIs(t, err, model.ErrUpstreamFailure)
	var ve *model.VenueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Sailor", ve.Venue)
}

func TestListPoolsAllFailing(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := newMockVenue(ctrl, "DragonSwap")
	b := newMockVenue(ctrl, "Sailor")
	a.EXPECT().ListPools(gomock.Any()).Return(nil, errors.New("a down")).Times(2)
	b.EXPECT().ListPools(gomock.Any()).Return(nil, errors.New("b down")).Times(2)

	agg := newTestAggregator(Venues{Listing: []provider.Provider{a, b}})

	pools, err := agg.ListPools(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pools)

	listing := agg.ListPoolsDetailed(context.Background())
	assert.Len(t, listing.Failures, 2)
	assert.Error(t, listing.Err())
}

func TestListPoolsNoVenues(t *testing.T) {
	listing := newTestAggregator(Venues{}).ListPoolsDetailed(context.Background())
	assert.Empty(t, listing.Pools)
	assert.NoError(t, listing.Err())
}

func TestGetLiquidityOwnedByPrimary(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := newMockVenue(ctrl, "DragonSwap")
	secondary := newMockVenue(ctrl, "Sailor")

	ticks := []model.LiquidityTick{{TickIdx: 60, LiquidityNet: "10", Price0: "1", Price1: "1"}}
	gomock.InOrder(
		primary.EXPECT().DetectOwnership(gomock.Any(), testPool).Return(true, nil),
		primary.EXPECT().FetchLiquidity(gomock.Any(), testPool).Return(ticks, nil),
	)

	got, err := newTestAggregator(Venues{Primary: primary, Secondary: secondary}).GetLiquidity(context.Background(), testPool)
	require.NoError(t, err)
	assert.Equal(t, ticks, got)
}

func TestGetLiquidityFallsBackToSecondary(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := newMockVenue(ctrl, "DragonSwap")
	secondary := newMockVenue(ctrl, "Sailor")

	ticks := []model.LiquidityTick{{TickIdx: -120, LiquidityNet: "5", Price0: "0.98", Price1: "0"}}
	primary.EXPECT().DetectOwnership(gomock.Any(), testPool).Return(false, nil)
	secondary.EXPECT().FetchLiquidity(gomock.Any(), testPool).Return(ticks, nil)

	got, err := newTestAggregator(Venues{Primary: primary, Secondary: secondary}).GetLiquidity(context.Background(), testPool)
	require.NoError(t, err)
	assert.Equal(t, ticks, got)
}

func TestGetLiquidityProbeFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := newMockVenue(ctrl, "DragonSwap")
	secondary := newMockVenue(ctrl, "Sailor")

	probeErr := model.WrapVenue("DragonSwap", "detect ownership", model.ErrUpstreamFailure)
	primary.EXPECT().DetectOwnership(gomock.Any(), testPool).Return(false, probeErr)

	_, err := newTestAggregator(Venues{Primary: primary, Secondary: secondary}).GetLiquidity(context.Background(), testPool)
	require.ErrorIs(t, err, model.ErrUpstreamFailure)
}

func TestGetLiquidityPrimaryOutageDoesNotFallBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	primary := dragonswap.New(dragonswap.Config{BaseURL: srv.URL}, httpx.New(time.Second), nil)

	ctrl := gomock.NewController(t)
	secondary := newMockVenue(ctrl, "Sailor")
	secondary.EXPECT().FetchLiquidity(gomock.Any(), gomock.Any()).Times(0)

	ticks, err := newTestAggregator(Venues{Primary: primary, Secondary: secondary}).GetLiquidity(context.Background(), testPool)
	require.ErrorIs(t, err, model.ErrUpstreamFailure)
	assert.Nil(t, ticks)
	var ve *model.VenueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "DragonSwap", ve.Venue)
}

func TestLiquidityAndCandlesWithoutVenues(t *testing.T) {
	agg := newTestAggregator(Venues{})

	_, err := agg.GetLiquidity(context.Background(), testPool)
	require.ErrorIs(t, err, model.ErrCapabilityUnsupported)
	_, err = agg.GetCandles(context.Background(), "SEI", "USDC", 15, 10)
	require.ErrorIs(t, err, model.ErrCapabilityUnsupported)
}

func TestGetLiquidityRejectsBadAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	agg := newTestAggregator(Venues{Primary: newMockVenue(ctrl, "DragonSwap"), Secondary: newMockVenue(ctrl, "Sailor")})

	_, err := agg.GetLiquidity(context.Background(), "")
	require.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = agg.GetLiquidity(context.Background(), "pool-1")
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestPriceHistoryRejectsInvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := newMockVenue(ctrl, "Binance")
	agg := newTestAggregator(Venues{History: history, Candles: history})

	cases := []struct {
		token0, token1 string
		limit          uint32
	}{
		{"SEI", "SEI", 100},
		{"SEI", "sei", 100},
		{"", "USDC", 100},
		{"SEI", "  ", 100},
		{"SEI", "USDC", 0},
	}
	for _, tc := range cases {
		_, err := agg.GetPriceHistoryAnalysis(context.Background(), tc.token0, tc.token1, 15, tc.limit)
		require.ErrorIs(t, err, model.ErrInvalidInput, "%+v", tc)
		_, err = agg.GetCandles(context.Background(), tc.token0, tc.token1, 15, tc.limit)
		require.ErrorIs(t, err, model.ErrInvalidInput, "%+v", tc)
	}
}

func TestPriceHistoryNoData(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := newMockVenue(ctrl, "Binance")
	history.EXPECT().FetchCandles(gomock.Any(), "SEI", "USDC", uint32(15), uint32(100)).Return([]model.PricePoint{}, nil)

	_, err := newTestAggregator(Venues{History: history}).GetPriceHistoryAnalysis(context.Background(), "SEI", "USDC", 15, 100)
	require.ErrorIs(t, err, model.ErrNoDataAvailable)
}

func TestPriceHistoryUpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := newMockVenue(ctrl, "Binance")
	upstream := model.WrapVenue("Binance", "fetch candles", model.ErrUpstreamFailure)
	history.EXPECT().FetchCandles(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, upstream)

	_, err := newTestAggregator(Venues{History: history}).GetPriceHistoryAnalysis(context.Background(), "SEI", "USDC", 15, 100)
	require.ErrorIs(t, err, model.ErrUpstreamFailure)
	var ve *model.VenueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Binance", ve.Venue)
}

func TestPriceHistoryRisingSeries(t *testing.T) {
	ctrl := gomock.NewController(t)
	history := newMockVenue(ctrl, "Binance")
	candles := risingCandles(20, 0.01)
	history.EXPECT().FetchCandles(gomock.Any(), "SEI", "USDC", uint32(15), uint32(20)).Return(candles, nil)

	result, err := newTestAggregator(Venues{History: history}).GetPriceHistoryAnalysis(context.Background(), "SEI", "USDC", 15, 20)
	require.NoError(t, err)

	closes := make([]float64, len(candles))
	var sum float64
	minLow, maxHigh := math.Inf(1), math.Inf(-1)
	for i, c := range candles {
		closes[i] = c.Close
		sum += c.Close
		minLow = math.Min(minLow, c.Low)
		maxHigh = math.Max(maxHigh, c.High)
	}
	mean := sum / float64(len(closes))
	var sq float64
	for _, c := range closes {
		sq += (c - mean) * (c - mean)
	}
	wantVol := math.Sqrt(sq/float64(len(closes))) / mean

	assert.Equal(t, "SEI/USDC", result.Pair)
	assert.Equal(t, 20, result.DataPoints)
	assert.Equal(t, uint32(15), result.Interval)
	assert.Equal(t, model.TrendUpward, result.Recommendation.Trend)
	assert.InDelta(t, wantVol, result.Volatility.Value, 1e-12)
	assert.InDelta(t, wantVol*100, result.Volatility.Percentage, 1e-9)
	assert.Equal(t, stats.VolatilityLevelOf(wantVol), result.Volatility.Level)
	assert.Equal(t, stats.SuggestedRangeWidthPercent(wantVol), result.Recommendation.SuggestedRangeWidthPercent)
	assert.InDelta(t, mean, result.PriceRange.Average, 1e-9)
	assert.InDelta(t, mean, result.Recommendation.CenterPrice, 1e-9)
	assert.Equal(t, minLow, result.PriceRange.Min)
	assert.Equal(t, maxHigh, result.PriceRange.Max)

	require.Len(t, result.RecentPrices, 10)
	assert.Equal(t, candles[19].Timestamp, result.RecentPrices[0].Timestamp)
	assert.Equal(t, candles[10].Timestamp, result.RecentPrices[9].Timestamp)
	assert.Equal(t, candles[19].Close, result.RecentPrices[0].Price)
}

func TestAnalyzeShortSeries(t *testing.T) {
	candles := []model.PricePoint{{Timestamp: 1, Open: 2, High: 3, Low: 1, Close: 2}}
	result := Analyze("A/B", 60, candles, 10)
	assert.Zero(t, result.Volatility.Value)
	assert.Equal(t, model.VolatilityLow, result.Volatility.Level)
	assert.Equal(t, model.TrendSideways, result.Recommendation.Trend)
	assert.Len(t, result.RecentPrices, 1)
	assert.NotNil(t, result.Pool)
}

func TestGetCandlesEmptyIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	candles := newMockVenue(ctrl, "Sailor")
	candles.EXPECT().FetchCandles(gomock.Any(), "WSEI", "USDC", uint32(60), uint32(5)).Return(nil, nil)

	got, err := newTestAggregator(Venues{Candles: candles}).GetCandles(context.Background(), " WSEI ", "USDC", 60, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestOptimalLiquidityRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	candles := newMockVenue(ctrl, "Sailor")
	series := []model.PricePoint{
		{Timestamp: 1, Open: 0.41, High: 0.43, Low: 0.40, Close: 0.42},
		{Timestamp: 2, Open: 0.42, High: 0.45, Low: 0.41, Close: 0.44},
		{Timestamp: 3, Open: 0.44, High: 0.44, Low: 0.38, Close: 0.39},
	}
	candles.EXPECT().FetchCandles(gomock.Any(), "WSEI", "USDC", uint32(15), uint32(30)).Return(series, nil)

	t0 := model.Token{Symbol: "WSEI", Decimals: 18}
	t1 := model.Token{Symbol: "USDC", Decimals: 6}
	got, err := newTestAggregator(Venues{Candles: candles}).OptimalLiquidityRange(context.Background(), t0, t1, 60)
	require.NoError(t, err)

	lower, err := tickmath.PriceToTick(0.38, 18, 6)
	require.NoError(t, err)
	upper, err := tickmath.PriceToTick(0.45, 18, 6)
	require.NoError(t, err)
	lower, _ = tickmath.AlignTickToSpacing(lower, 60)
	upper, _ = tickmath.AlignTickToSpacing(upper, 60)

	assert.Equal(t, lower, got.LowerTick)
	assert.Equal(t, upper, got.UpperTick)
	assert.Zero(t, got.LowerTick%60)
	assert.Zero(t, got.UpperTick%60)
	assert.LessOrEqual(t, got.LowerTick, got.UpperTick)
	assert.Equal(t, 0.38, got.LowerPrice)
	assert.Equal(t, 0.45, got.UpperPrice)
	assert.Equal(t, int32(60), got.TickSpacing)
}

func TestOptimalLiquidityRangeValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	candles := newMockVenue(ctrl, "Sailor")
	agg := newTestAggregator(Venues{Candles: candles})

	_, err := agg.OptimalLiquidityRange(context.Background(), model.Token{Symbol: "A"}, model.Token{Symbol: "B"}, 0)
	require.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = agg.OptimalLiquidityRange(context.Background(), model.Token{Symbol: "A"}, model.Token{Symbol: "a"}, 60)
	require.ErrorIs(t, err, model.ErrInvalidInput)

	candles.EXPECT().FetchCandles(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err = agg.OptimalLiquidityRange(context.Background(), model.Token{Symbol: "A"}, model.Token{Symbol: "B"}, 60)
	require.ErrorIs(t, err, model.ErrNoDataAvailable)
}

type fakeDirectory struct {
	tokens []model.Token
	err    error
}

func (f fakeDirectory) ListTokens(context.Context) ([]model.Token, error) {
	return f.tokens, f.err
}

func TestOptimalLiquidityRangeBySymbol(t *testing.T) {
	ctrl := gomock.NewController(t)
	candles := newMockVenue(ctrl, "Sailor")
	dir := fakeDirectory{tokens: []model.Token{
		{Symbol: "USDC", Decimals: 18, Verified: false},
		{Symbol: "USDC", Decimals: 6, Verified: true},
		{Symbol: "WSEI", Decimals: 18, Verified: true},
	}}
	series := []model.PricePoint{{Timestamp: 1, High: 2, Low: 1, Close: 1.5}}
	candles.EXPECT().FetchCandles(gomock.Any(), "WSEI", "USDC", uint32(15), uint32(30)).Return(series, nil)

	agg := newTestAggregator(Venues{Candles: candles, Tokens: dir})
	got, err := agg.OptimalLiquidityRangeBySymbol(context.Background(), "wsei", "usdc", 10)
	require.NoError(t, err)

	want, _ := tickmath.PriceToTick(1, 18, 6)
	want, _ = tickmath.AlignTickToSpacing(want, 10)
	assert.Equal(t, want, got.LowerTick)

	_, err = agg.OptimalLiquidityRangeBySymbol(context.Background(), "WSEI", "NOPE", 10)
	require.ErrorIs(t, err, model.ErrInvalidInput)
}

type fakeStateReader struct {
	state model.PoolState
	err   error
}

func (f fakeStateReader) PoolState(context.Context, string) (model.PoolState, error) {
	return f.state, f.err
}

func TestOptimalLiquidityRangeForPool(t *testing.T) {
	ctrl := gomock.NewController(t)
	candles := newMockVenue(ctrl, "Sailor")
	reader := fakeStateReader{state: model.PoolState{
		Address: testPool,
		Token0:  model.Token{Symbol: "WSEI", Decimals: 18},
		Token1:  model.Token{Symbol: "USDC", Decimals: 6},
		Fee:     500,
	}}
	series := []model.PricePoint{{Timestamp: 1, High: 0.5, Low: 0.4, Close: 0.45}}
	candles.EXPECT().FetchCandles(gomock.Any(), "WSEI", "USDC", uint32(15), uint32(30)).Return(series, nil)

	got, err := newTestAggregator(Venues{Candles: candles, PoolState: reader}).OptimalLiquidityRangeForPool(context.Background(), testPool)
	require.NoError(t, err)
	assert.Equal(t, int32(10), got.TickSpacing, "spacing falls back to the fee tier")
}

func TestPoolStateUnsupportedWithoutReader(t *testing.T) {
	_, err := newTestAggregator(Venues{}).PoolState(context.Background(), testPool)
	require.ErrorIs(t, err, model.ErrCapabilityUnsupported)
}

type fakePrices struct {
	got    []string
	prices []model.TokenPrice
}

func (f *fakePrices) TokenPrices(_ context.Context, addresses []string) ([]model.TokenPrice, error) {
	f.got = addresses
	return f.prices, nil
}

func TestTokenPrices(t *testing.T) {
	token := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	prices := &fakePrices{prices: []model.TokenPrice{{Address: token, Symbol: "WSEI", Price: 0.4}}}
	agg := newTestAggregator(Venues{Prices: prices})

	got, err := agg.TokenPrices(context.Background(), []string{" " + token + " "})
	require.NoError(t, err)
	assert.Equal(t, prices.prices, got)
	assert.Equal(t, []string{token}, prices.got)

	_, err = agg.TokenPrices(context.Background(), nil)
	require.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = agg.TokenPrices(context.Background(), []string{"WSEI"})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = newTestAggregator(Venues{}).TokenPrices(context.Background(), []string{token})
	require.ErrorIs(t, err, model.ErrCapabilityUnsupported)
}
