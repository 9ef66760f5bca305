package model

// Protocol names the venue that hosts a pool.
type Protocol string

const (
	ProtocolDragonSwap Protocol = "DragonSwap"
	ProtocolSailor     Protocol = "Sailor"
)

const (
	// FeeTierUnknown marks a venue that did not report a fee tier.
	FeeTierUnknown = "unknown"
	// FeeTierNA marks a fee tier that was reported but could not be parsed.
	FeeTierNA = "N/A"
)

// UnifiedPool is the venue-independent view of a liquidity pool.
// TVL, DailyVolume and APR are nil when the venue did not provide them.
type UnifiedPool struct {
	ID          string   `json:"id"`
	Protocol    Protocol `json:"protocol"`
	Token0      Token    `json:"token0"`
	Token1      Token    `json:"token1"`
	TVL         *float64 `json:"tvl"`
	DailyVolume *float64 `json:"daily_volume"`
	APR         *float64 `json:"apr"`
	FeeTier     string   `json:"fee_tier"`
}
