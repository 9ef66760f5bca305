package dragonswap

import "poolscope/internal/model"

type poolsResponse struct {
	Status string      `json:"status"`
	Tokens []tokenInfo `json:"tokens"`
	Pools  []poolInfo  `json:"pools"`
}

type tokenInfo struct {
	Address  string         `json:"address"`
	Name     string         `json:"name"`
	Symbol   string         `json:"symbol"`
	USDPrice *float64       `json:"usd_price"`
	Decimals model.Decimals `json:"decimals"`
}

func (t tokenInfo) model() model.Token {
	return model.Token{
		Address:  t.Address,
		Symbol:   t.Symbol,
		Name:     t.Name,
		Decimals: t.Decimals.Uint8(),
	}
}

type poolInfo struct {
	PoolAddress   string   `json:"pool_address"`
	Token0Address string   `json:"token0_address"`
	Token1Address string   `json:"token1_address"`
	DailyVolume   *float64 `json:"daily_volume"`
	Liquidity     *float64 `json:"liquidity"`
	Type          string   `json:"type"`
	FeeTier       *float64 `json:"fee_tier"`
	APR           *float64 `json:"apr"`
}

type ticksResponse struct {
	Data struct {
		Ticks []tickInfo `json:"ticks"`
	} `json:"data"`
}

type tickInfo struct {
	TickIdx      string `json:"tickIdx"`
	LiquidityNet string `json:"liquidityNet"`
	Price0       string `json:"price0"`
	Price1       string `json:"price1"`
	PoolAddress  string `json:"poolAddress"`
}
