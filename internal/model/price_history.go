package model

// VolatilityLevel buckets a relative volatility value.
type VolatilityLevel string

const (
	VolatilityLow    VolatilityLevel = "LOW"
	VolatilityMedium VolatilityLevel = "MEDIUM"
	VolatilityHigh   VolatilityLevel = "HIGH"
)

// Trend classifies the direction of a price series.
type Trend string

const (
	TrendUpward   Trend = "UPWARD"
	TrendDownward Trend = "DOWNWARD"
	TrendSideways Trend = "SIDEWAYS"
)

// VolatilityInfo carries the coefficient of variation of close prices.
type VolatilityInfo struct {
	Value      float64         `json:"value"`
	Percentage float64         `json:"percentage"`
	Level      VolatilityLevel `json:"level"`
}

// PriceRange summarizes the extremes and mean of a candle series.
type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// PoolInfo optionally ties an analysis to a specific pool.
type PoolInfo struct {
	PoolID  *string  `json:"pool_id,omitempty"`
	TVL     *float64 `json:"tvl,omitempty"`
	FeeTier *float64 `json:"fee_tier,omitempty"`
}

// RecentPrice is a condensed candle used in analysis output.
type RecentPrice struct {
	Price     float64 `json:"price"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Timestamp int64   `json:"timestamp"`
}

// RecommendationContext feeds range recommendations.
type RecommendationContext struct {
	CenterPrice                float64 `json:"center_price"`
	SuggestedRangeWidthPercent float64 `json:"suggested_range_width_percent"`
	Trend                      Trend   `json:"trend"`
}

// PriceHistoryResult is the output of a price history analysis.
// RecentPrices are ordered newest first.
type PriceHistoryResult struct {
	Pair           string                `json:"pair"`
	PriceRange     PriceRange            `json:"price_range"`
	Volatility     VolatilityInfo        `json:"volatility"`
	DataPoints     int                   `json:"data_points"`
	Interval       uint32                `json:"interval_minutes"`
	Pool           *PoolInfo             `json:"pool_info,omitempty"`
	RecentPrices   []RecentPrice         `json:"recent_prices"`
	Recommendation RecommendationContext `json:"recommendation_context"`
}
