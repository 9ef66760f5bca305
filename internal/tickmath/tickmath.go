// Package tickmath converts between human prices and concentrated-liquidity
// ticks. All results are float64 approximations intended for analytics, not
// for settlement.
package tickmath

import (
	"math"
	"math/big"

	"poolscope/internal/model"
)

const (
	// MinTick and MaxTick bound the int24 tick range of V3 pools.
	MinTick int32 = -887272
	MaxTick int32 = 887272

	tickBase = 1.0001
)

var (
	q96      = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))
	logBase  = math.Log(tickBase)
	feeToGap = map[uint32]int32{
		100:   1,
		500:   10,
		2500:  50,
		3000:  60,
		10000: 200,
	}
)

// SqrtPriceX96ToPrice returns (sqrtPriceX96 / 2^96)^2 scaled by
// 10^(decimals0-decimals1).
func SqrtPriceX96ToPrice(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) (float64, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return 0, model.InvalidInputf("sqrtPriceX96 must be positive")
	}
	ratio := new(big.Float).SetInt(sqrtPriceX96)
	ratio.Quo(ratio, q96)
	sqrt, _ := ratio.Float64()
	return sqrt * sqrt * decimalScale(decimals0, decimals1), nil
}

// PriceToTick converts a decimal-adjusted price into the nearest tick.
func PriceToTick(price float64, decimals0, decimals1 uint8) (int32, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, model.InvalidInputf("price must be positive and finite, got %v", price)
	}
	adjusted := price / decimalScale(decimals0, decimals1)
	tick := math.Round(math.Log(adjusted) / logBase)
	if tick < float64(MinTick) || tick > float64(MaxTick) {
		return 0, model.InvalidInputf("price %v maps outside tick range", price)
	}
	return int32(tick), nil
}

// TickToPrice returns 1.0001^tick scaled by 10^(decimals0-decimals1).
func TickToPrice(tick int32, decimals0, decimals1 uint8) float64 {
	return math.Pow(tickBase, float64(tick)) * decimalScale(decimals0, decimals1)
}

// TickToSqrtPriceX96 returns sqrt(1.0001^tick) * 2^96, truncated.
func TickToSqrtPriceX96(tick int32) *big.Int {
	sqrt := new(big.Float).SetFloat64(math.Pow(tickBase, float64(tick)/2))
	sqrt.Mul(sqrt, q96)
	out, _ := sqrt.Int(nil)
	return out
}

// AlignTickToSpacing rounds tick to a multiple of spacing. Remainders of at
// least half a spacing round away from zero, smaller ones toward zero.
func AlignTickToSpacing(tick, spacing int32) (int32, error) {
	if spacing <= 0 {
		return 0, model.InvalidInputf("tick spacing must be positive, got %d", spacing)
	}
	rem := tick % spacing
	abs := rem
	if abs < 0 {
		abs = -abs
	}
	if abs*2 < spacing {
		return tick - rem, nil
	}
	if tick > 0 {
		return tick - rem + spacing, nil
	}
	return tick - rem - spacing, nil
}

// TickSpacingForFee returns the standard tick spacing of a fee tier in
// hundredths of a basis point.
func TickSpacingForFee(fee uint32) (int32, bool) {
	spacing, ok := feeToGap[fee]
	return spacing, ok
}

func decimalScale(decimals0, decimals1 uint8) float64 {
	return math.Pow(10, float64(int(decimals0)-int(decimals1)))
}
