// Package dragonswap adapts the DragonSwap REST API: pool listing, tick
// liquidity and pool ownership. DragonSwap publishes no candles.
package dragonswap

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolscope/internal/httpx"
	"poolscope/internal/model"
	"poolscope/internal/provider"
)

const (
	DefaultBaseURL = "https://sei-api.dragonswap.app/api/v1"

	v3PoolType = "V3_POOL"
)

// Config holds the API base URL and the activity floor for listed pools.
type Config struct {
	BaseURL     string
	MinActivity float64
}

// Provider is the DragonSwap venue adapter.
type Provider struct {
	cfg    Config
	client *httpx.Client
	logger *zap.Logger
}

var _ provider.Provider = (*Provider)(nil)

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

func (p *Provider) Name() string { return string(model.ProtocolDragonSwap) }

func (p *Provider) FetchCandles(context.Context, string, string, uint32, uint32) ([]model.PricePoint, error) {
	return nil, model.Unsupported(p.Name(), "fetch candles")
}

func (p *Provider) FetchLiquidity(ctx context.Context, poolAddress string) ([]model.LiquidityTick, error) {
	u := fmt.Sprintf("%s/graph/factory/ticks?pool_address=%s&skip=0", p.cfg.BaseURL, url.QueryEscape(poolAddress))
	p.logger.Debug("fetch ticks", zap.String("url", u))

	var body ticksResponse
	if err := p.client.GetJSON(ctx, u, &body); err != nil {
		return nil, p.upstream("fetch liquidity", err)
	}

	out := make([]model.LiquidityTick, 0, len(body.Data.Ticks))
	for _, t := range body.Data.Ticks {
		idx, err := strconv.ParseInt(strings.TrimSpace(t.TickIdx), 10, 32)
		if err != nil {
			return nil, p.upstream("fetch liquidity", fmt.Errorf("tick index %q: %w", t.TickIdx, err))
		}
		out = append(out, model.LiquidityTick{
			TickIdx:      int32(idx),
			LiquidityNet: t.LiquidityNet,
			Price0:       t.Price0,
			Price1:       t.Price1,
		})
	}
	return out, nil
}

// ListPools returns active V3 pools. Pools whose token legs are missing from
// the response's token directory are dropped.
func (p *Provider) ListPools(ctx context.Context) ([]model.UnifiedPool, error) {
	u := p.cfg.BaseURL + "/pools"
	p.logger.Debug("list pools", zap.String("url", u))

	var body poolsResponse
	if err := p.client.GetJSON(ctx, u, &body); err != nil {
		return nil, p.upstream("list pools", err)
	}

	tokens := make(map[string]model.Token, len(body.Tokens))
	for _, t := range body.Tokens {
		tokens[strings.ToLower(t.Address)] = t.model()
	}

	out := make([]model.UnifiedPool, 0, len(body.Pools))
	unresolved := 0
	for _, raw := range body.Pools {
		if raw.Type != v3PoolType || !provider.AboveFloor(raw.DailyVolume, p.cfg.MinActivity) {
			continue
		}
		t0, ok0 := tokens[strings.ToLower(raw.Token0Address)]
		t1, ok1 := tokens[strings.ToLower(raw.Token1Address)]
		if !ok0 || !ok1 {
			unresolved++
			continue
		}
		out = append(out, model.UnifiedPool{
			ID:          raw.PoolAddress,
			Protocol:    model.ProtocolDragonSwap,
			Token0:      t0,
			Token1:      t1,
			TVL:         raw.Liquidity,
			DailyVolume: raw.DailyVolume,
			APR:         raw.APR,
			FeeTier:     feeTier(raw.FeeTier),
		})
	}
	if unresolved > 0 {
		p.logger.Debug("dropped pools with unresolved tokens", zap.Int("count", unresolved))
	}
	return out, nil
}

// DetectOwnership reports whether DragonSwap serves the pool. A 2xx status
// means yes and a 4xx other than 429 means no. 429, 5xx and anything else
// is an upstream failure, since neither answer can be trusted.
func (p *Provider) DetectOwnership(ctx context.Context, poolAddress string) (bool, error) {
	u := fmt.Sprintf("%s/pools/%s", p.cfg.BaseURL, url.PathEscape(poolAddress))
	status, err := p.client.Status(ctx, u)
	if err != nil {
		return false, p.upstream("detect ownership", err)
	}
	p.logger.Debug("ownership probe", zap.String("pool", poolAddress), zap.Int("status", status))
	switch {
	case status >= 200 && status < 300:
		return true, nil
	case status >= 400 && status < 500 && status != http.StatusTooManyRequests:
		return false, nil
	default:
		return false, p.upstream("detect ownership", &httpx.StatusError{URL: u, Status: status})
	}
}

func (p *Provider) upstream(op string, err error) error {
	return provider.Upstream(p.Name(), op, err)
}

func feeTier(v *float64) string {
	if v == nil {
		return model.FeeTierUnknown
	}
	return decimal.NewFromFloat(*v).String()
}
