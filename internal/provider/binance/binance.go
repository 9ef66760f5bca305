// Package binance reads spot klines from the Binance REST API. It is a
// price-data venue only.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"poolscope/internal/httpx"
	"poolscope/internal/model"
	"poolscope/internal/provider"
)

const (
	DefaultBaseURL = "https://api.binance.com/api/v3"

	defaultInterval = "1d"
	klineFields     = 12
)

var intervals = map[uint32]string{
	1:     "1m",
	3:     "3m",
	5:     "5m",
	15:    "15m",
	30:    "30m",
	60:    "1h",
	120:   "2h",
	240:   "4h",
	360:   "6h",
	480:   "8h",
	720:   "12h",
	1440:  "1d",
	2880:  "3d",
	10080: "1w",
	43200: "1M",
}

// Config holds the spot API base URL.
type Config struct {
	BaseURL string
}

// Provider serves Binance klines. It lists no pools.
type Provider struct {
	cfg    Config
	client *httpx.Client
	logger *zap.Logger
}

var _ provider.Provider = (*Provider)(nil)

// New builds a Provider, defaulting the base URL, client and logger.
func New(cfg Config, client *httpx.Client, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = httpx.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{cfg: cfg, client: client, logger: logger}
}

func (p *Provider) Name() string { return "Binance" }

// Interval maps minutes to a Binance kline interval. Unlisted values map to 1d.
func Interval(minutes uint32) string {
	if s, ok := intervals[minutes]; ok {
		return s
	}
	return defaultInterval
}

// Symbol builds the exchange symbol, e.g. ("sei", "usdc") -> "SEIUSDC".
func Symbol(token0, token1 string) string {
	return strings.ToUpper(token0) + strings.ToUpper(token1)
}

// FetchCandles returns at most limit candles in ascending timestamp order.
// Rows that cannot be decoded are skipped.
func (p *Provider) FetchCandles(ctx context.Context, token0, token1 string, intervalMinutes, limit uint32) ([]model.PricePoint, error) {
	symbol := Symbol(token0, token1)
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", Interval(intervalMinutes))
	q.Set("limit", strconv.FormatUint(uint64(limit), 10))
	u := p.cfg.BaseURL + "/klines?" + q.Encode()
	p.logger.Debug("fetch klines", zap.String("url", u))

	var rows []json.RawMessage
	if err := p.client.GetJSON(ctx, u, &rows); err != nil {
		return nil, provider.Upstream(p.Name(), "fetch candles", err)
	}

	out := make([]model.PricePoint, 0, len(rows))
	for i, raw := range rows {
		pt, err := parseKline(raw)
		if err != nil {
			p.logger.Warn("skip kline", zap.String("symbol", symbol), zap.Int("row", i), zap.Error(err))
			continue
		}
		out = append(out, pt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	if limit > 0 && len(out) > int(limit) {
		out = out[len(out)-int(limit):]
	}
	return out, nil
}

func (p *Provider) FetchLiquidity(context.Context, string) ([]model.LiquidityTick, error) {
	return nil, model.Unsupported(p.Name(), "fetch liquidity")
}

func (p *Provider) ListPools(context.Context) ([]model.UnifiedPool, error) {
	return nil, model.Unsupported(p.Name(), "list pools")
}

func (p *Provider) DetectOwnership(context.Context, string) (bool, error) {
	return false, model.Unsupported(p.Name(), "detect ownership")
}

// parseKline decodes [openTimeMs, "open", "high", "low", "close", "volume", ...].
func parseKline(raw json.RawMessage) (model.PricePoint, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.PricePoint{}, fmt.Errorf("kline is not an array: %w", err)
	}
	if len(fields) < klineFields {
		return model.PricePoint{}, fmt.Errorf("kline has %d fields, want %d", len(fields), klineFields)
	}

	var openTime uint64
	if err := json.Unmarshal(fields[0], &openTime); err != nil {
		return model.PricePoint{}, fmt.Errorf("open time: %w", err)
	}

	var prices [5]float64
	names := [5]string{"open", "high", "low", "close", "volume"}
	for i := range prices {
		var s string
		if err := json.Unmarshal(fields[i+1], &s); err != nil {
			return model.PricePoint{}, fmt.Errorf("%s: %w", names[i], err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.PricePoint{}, fmt.Errorf("%s: %w", names[i], err)
		}
		prices[i] = v
	}

	volume := prices[4]
	return model.PricePoint{
		Timestamp: int64(openTime / 1000),
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		Volume:    &volume,
	}, nil
}
