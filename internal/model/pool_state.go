package model

// PoolState captures on-chain state of a concentrated-liquidity pool.
type PoolState struct {
	Address      string  `json:"address"`
	Token0       Token   `json:"token0"`
	Token1       Token   `json:"token1"`
	Fee          uint32  `json:"fee"`
	TickSpacing  int32   `json:"tick_spacing"`
	Liquidity    string  `json:"liquidity,omitempty"`
	SqrtPriceX96 string  `json:"sqrt_price_x96"`
	Tick         int32   `json:"tick"`
	Price        float64 `json:"price"`
}
