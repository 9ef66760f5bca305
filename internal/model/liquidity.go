package model

// LiquidityTick is one initialized tick of an active liquidity distribution.
// LiquidityNet and the prices keep the venue's text representation.
type LiquidityTick struct {
	TickIdx      int32  `json:"tick_idx"`
	LiquidityNet string `json:"liquidity_net"`
	Price0       string `json:"price0"`
	Price1       string `json:"price1"`
}

// LiquidityRange is a recommended position range in ticks, aligned to
// TickSpacing, with the price bounds it was derived from.
type LiquidityRange struct {
	Token0      string  `json:"token0"`
	Token1      string  `json:"token1"`
	LowerTick   int32   `json:"lower_tick"`
	UpperTick   int32   `json:"upper_tick"`
	LowerPrice  float64 `json:"lower_price"`
	UpperPrice  float64 `json:"upper_price"`
	TickSpacing int32   `json:"tick_spacing"`
}
