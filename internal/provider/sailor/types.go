package sailor

import (
	"encoding/json"

	"poolscope/internal/model"
)

type klineResponse struct {
	Success bool        `json:"success"`
	Data    [][]float64 `json:"data"`
}

type activeLiquidityResponse struct {
	Status          string            `json:"status"`
	ActiveLiquidity []activeLiquidity `json:"active_liquidity"`
}

type activeLiquidity struct {
	Tick      string `json:"tick"`
	Price     string `json:"price"`
	Liquidity string `json:"liquidity"`
}

type poolListResponse struct {
	Status    string      `json:"status"`
	PoolStats []poolStats `json:"poolStats"`
}

type poolStats struct {
	Chain           string         `json:"chain"`
	FeeTier         string         `json:"feeTier"`
	ID              string         `json:"id"`
	ProtocolVersion string         `json:"protocolVersion"`
	TotalLiquidity  totalLiquidity `json:"totalLiquidity"`
	TxCount         string         `json:"txCount"`
	Day             periodStats    `json:"day"`
	Week            periodStats    `json:"week"`
	Month           periodStats    `json:"month"`
	BoostAPR        *float64       `json:"boostApr"`
	TVL             *float64       `json:"tvl"`
	Token0          tokenInfo      `json:"token0"`
	Token1          tokenInfo      `json:"token1"`
}

type totalLiquidity struct {
	Value string `json:"value"`
}

type periodStats struct {
	Volume   *float64 `json:"volume"`
	MaxPrice *float64 `json:"max_price"`
	MinPrice *float64 `json:"min_price"`
	Price    *float64 `json:"price"`
}

type tokenInfo struct {
	ID       string         `json:"id"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Decimals model.Decimals `json:"decimals"`
	Price    *string        `json:"price"`
	URL      string         `json:"url"`
}

func (t tokenInfo) model() model.Token {
	return model.Token{
		Address:  t.ID,
		Symbol:   t.Symbol,
		Name:     t.Name,
		Decimals: t.Decimals.Uint8(),
	}
}

type tokenListEntry struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	URL      string         `json:"url"`
	Decimals model.Decimals `json:"decimals"`
	Verified bool           `json:"verified"`
}

type priceEntry struct {
	ID     string          `json:"id"`
	Symbol string          `json:"symbol"`
	Price  json.RawMessage `json:"price"`
}
