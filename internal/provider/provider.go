// Package provider defines the capability surface every market-data venue
// exposes. A venue that lacks a capability returns an error matching
// model.ErrCapabilityUnsupported instead of empty data.
package provider

//go:generate mockgen -destination=mock_provider.go -package=provider poolscope/internal/provider Provider

import (
	"context"
	"errors"
	"fmt"

	"poolscope/internal/model"
)

// DefaultMinActivity is the dust floor applied to pool volume and TVL.
const DefaultMinActivity = 1000.0

type Provider interface {
	Name() string
	FetchCandles(ctx context.Context, token0, token1 string, intervalMinutes, limit uint32) ([]model.PricePoint, error)
	FetchLiquidity(ctx context.Context, poolAddress string) ([]model.LiquidityTick, error)
	ListPools(ctx context.Context) ([]model.UnifiedPool, error)
	DetectOwnership(ctx context.Context, poolAddress string) (bool, error)
}

// TokenDirectory resolves token metadata by symbol.
type TokenDirectory interface {
	ListTokens(ctx context.Context) ([]model.Token, error)
}

// PriceDirectory quotes current token prices by address.
type PriceDirectory interface {
	TokenPrices(ctx context.Context, addresses []string) ([]model.TokenPrice, error)
}

// AboveFloor reports whether an optional metric is present and strictly
// greater than floor. Absent values never pass.
func AboveFloor(v *float64, floor float64) bool {
	return v != nil && *v > floor
}

// MinActivity returns floor, or DefaultMinActivity when floor is not positive.
func MinActivity(floor float64) float64 {
	if floor <= 0 {
		return DefaultMinActivity
	}
	return floor
}

// Upstream attributes err to a venue operation and marks it as an upstream
// failure. Context cancellation is passed through unmarked.
func Upstream(venue, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return model.WrapVenue(venue, op, err)
	}
	return model.WrapVenue(venue, op, fmt.Errorf("%w: %w", model.ErrUpstreamFailure, err))
}
