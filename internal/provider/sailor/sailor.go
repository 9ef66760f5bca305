// Package sailor adapts the Sailor Finance cloud-function API: pool stats,
// smart klines, active liquidity and the token directory. Sailor does not
// answer pool ownership probes.
package sailor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolscope/internal/httpx"
	"poolscope/internal/model"
	"poolscope/internal/provider"
)

const (
	DefaultBaseURL = "https://asia-southeast1-ktx-finance-2.cloudfunctions.net"

	daysPerYear = 365
	// timestamps above this are milliseconds
	millisThreshold = 1_000_000_000_000
)

var bpsDivisor = decimal.NewFromInt(10000)

// Config holds the cloud-functions base URL and the activity floor.
type Config struct {
	BaseURL     string
	MinActivity float64
}

// Provider is the Sailor venue adapter and token directory.
type Provider struct {
	cfg    Config
	client *httpx.Client
	logger *zap.Logger
}

var (
	_ provider.Provider       = (*Provider)(nil)
	_ provider.TokenDirectory = (*Provider)(nil)
	_ provider.PriceDirectory = (*Provider)(nil)
)

// New builds a Provider, defaulting the base URL, floor, client and logger.
func New(cfg Config, client *httpx.Client, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.MinActivity = provider.MinActivity(cfg.MinActivity)
	if client == nil {
		client = httpx.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{cfg: cfg, client: client, logger: logger}
}

func (p *Provider) Name() string { return string(model.ProtocolSailor) }

// FetchCandles returns at most limit candles in ascending timestamp order.
func (p *Provider) FetchCandles(ctx context.Context, token0, token1 string, intervalMinutes, limit uint32) ([]model.PricePoint, error) {
	u := fmt.Sprintf("%s/sailor_kline_api/smart_kline/%s/%s?interval=%d&limit=%d",
		p.cfg.BaseURL,
		url.PathEscape(strings.ToLower(token0)),
		url.PathEscape(strings.ToLower(token1)),
		intervalMinutes, limit)
	p.logger.Debug("fetch klines", zap.String("url", u))

	var body klineResponse
	if err := p.client.GetJSON(ctx, u, &body); err != nil {
		return nil, p.upstream("fetch candles", err)
	}

	out := make([]model.PricePoint, 0, len(body.Data))
	for i, row := range body.Data {
		if len(row) < 5 {
			p.logger.Warn("skip short kline row", zap.Int("row", i), zap.Int("len", len(row)))
			continue
		}
		ts := int64(row[0])
		if ts > millisThreshold {
			ts /= 1000
		}
		pt := model.PricePoint{Timestamp: ts, Open: row[1], High: row[2], Low: row[3], Close: row[4]}
		if len(row) > 5 {
			v := row[5]
			pt.Volume = &v
		}
		out = append(out, pt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	if limit > 0 && len(out) > int(limit) {
		out = out[len(out)-int(limit):]
	}
	return out, nil
}

// FetchLiquidity returns the active liquidity distribution. Sailor reports a
// single price per tick, so Price1 is always "0".
func (p *Provider) FetchLiquidity(ctx context.Context, poolAddress string) ([]model.LiquidityTick, error) {
	u := fmt.Sprintf("%s/sailor_poolapi/getActiveLiquidity?address=%s", p.cfg.BaseURL, url.QueryEscape(poolAddress))
	p.logger.Debug("fetch active liquidity", zap.String("url", u))

	var body activeLiquidityResponse
	if err := p.client.GetJSON(ctx, u, &body); err != nil {
		return nil, p.upstream("fetch liquidity", err)
	}

	out := make([]model.LiquidityTick, 0, len(body.ActiveLiquidity))
	for _, al := range body.ActiveLiquidity {
		idx, err := strconv.ParseInt(strings.TrimSpace(al.Tick), 10, 32)
		if err != nil {
			return nil, p.upstream("fetch liquidity", fmt.Errorf("tick %q: %w", al.Tick, err))
		}
		out = append(out, model.LiquidityTick{
			TickIdx:      int32(idx),
			LiquidityNet: al.Liquidity,
			Price0:       al.Price,
			Price1:       "0",
		})
	}
	return out, nil
}

// ListPools returns pools whose daily volume and TVL are both above the
// activity floor. APR is estimated from fees plus the boost reward.
func (p *Provider) ListPools(ctx context.Context) ([]model.UnifiedPool, error) {
	u := p.cfg.BaseURL + "/sailor_poolapi/getPoolList"
	p.logger.Debug("list pools", zap.String("url", u))

	var body poolListResponse
	if err := p.client.GetJSON(ctx, u, &body); err != nil {
		return nil, p.upstream("list pools", err)
	}

	out := make([]model.UnifiedPool, 0, len(body.PoolStats))
	for _, raw := range body.PoolStats {
		if !provider.AboveFloor(raw.Day.Volume, p.cfg.MinActivity) || !provider.AboveFloor(raw.TVL, p.cfg.MinActivity) {
			continue
		}
		out = append(out, transformPool(raw))
	}
	return out, nil
}

func (p *Provider) DetectOwnership(context.Context, string) (bool, error) {
	return false, model.Unsupported(p.Name(), "detect ownership")
}

// ListTokens returns the Sailor token directory.
func (p *Provider) ListTokens(ctx context.Context) ([]model.Token, error) {
	u := p.cfg.BaseURL + "/sailor_poolapi/getTokenListV2"
	var body []tokenListEntry
	if err := p.client.GetJSON(ctx, u, &body); err != nil {
		return nil, p.upstream("list tokens", err)
	}
	out := make([]model.Token, 0, len(body))
	for _, t := range body {
		out = append(out, model.Token{
			Address:  t.ID,
			Symbol:   t.Symbol,
			Name:     t.Name,
			Decimals: t.Decimals.Uint8(),
			Verified: t.Verified,
		})
	}
	return out, nil
}

// TokenPrices quotes the given token addresses. Entries whose price is
// neither a number nor a numeric string are skipped.
func (p *Provider) TokenPrices(ctx context.Context, addresses []string) ([]model.TokenPrice, error) {
	ids := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if a = strings.TrimSpace(a); a != "" {
			ids = append(ids, a)
		}
	}
	if len(ids) == 0 {
		return nil, model.InvalidInputf("no token addresses to price")
	}

	u := p.cfg.BaseURL + "/sailor_poolapi/getPriceList?tokens=" + url.QueryEscape(strings.Join(ids, ","))
	p.logger.Debug("fetch prices", zap.String("url", u))

	var body []priceEntry
	if err := p.client.GetJSON(ctx, u, &body); err != nil {
		return nil, p.upstream("token prices", err)
	}
	out := make([]model.TokenPrice, 0, len(body))
	for _, e := range body {
		price, err := parsePrice(e.Price)
		if err != nil {
			p.logger.Warn("skip price", zap.String("token", e.ID), zap.Error(err))
			continue
		}
		out = append(out, model.TokenPrice{Address: e.ID, Symbol: e.Symbol, Price: price})
	}
	return out, nil
}

func parsePrice(raw json.RawMessage) (float64, error) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("price %s: %w", raw, err)
	}
	f, _ := d.Float64()
	return f, nil
}

func (p *Provider) upstream(op string, err error) error {
	return provider.Upstream(p.Name(), op, err)
}

func transformPool(raw poolStats) model.UnifiedPool {
	fee, feeTier := feeFraction(raw.FeeTier)

	var volume, tvl, boost float64
	if raw.Day.Volume != nil {
		volume = *raw.Day.Volume
	}
	if raw.TVL != nil {
		tvl = *raw.TVL
	}
	if raw.BoostAPR != nil {
		boost = *raw.BoostAPR
	}
	apr := estimateAPR(volume, fee, tvl, boost)

	return model.UnifiedPool{
		ID:          raw.ID,
		Protocol:    model.ProtocolSailor,
		Token0:      raw.Token0.model(),
		Token1:      raw.Token1.model(),
		TVL:         raw.TVL,
		DailyVolume: raw.Day.Volume,
		APR:         &apr,
		FeeTier:     feeTier,
	}
}

// feeFraction converts a fee tier in basis points ("3000") to a fraction
// (0.3) and its string form. Non-positive or unparsable tiers yield "N/A".
func feeFraction(bps string) (float64, string) {
	d, err := decimal.NewFromString(strings.TrimSpace(bps))
	if err != nil {
		return 0, model.FeeTierNA
	}
	frac := d.Div(bpsDivisor)
	if !frac.IsPositive() {
		return 0, model.FeeTierNA
	}
	return frac.InexactFloat64(), frac.String()
}

func estimateAPR(dailyVolume, fee, tvl, boostAPR float64) float64 {
	if tvl > 0 {
		return (dailyVolume*fee/tvl)*daysPerYear + boostAPR*100
	}
	return boostAPR * 100
}
