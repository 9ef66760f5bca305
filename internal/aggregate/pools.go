package aggregate

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poolscope/internal/model"
)

// PoolListing is the union of every listing venue's pools plus the
// failures of venues that could not be listed.
type PoolListing struct {
	Pools    []model.UnifiedPool
	Failures []error
}

// Err joins the venue failures. Each failure matches
// model.ErrAggregationPartialFailure and carries a *model.VenueError.
func (l PoolListing) Err() error {
	return errors.Join(l.Failures...)
}

// ListPools returns the union of all listing venues' pools. A failing venue
// is logged and skipped; the call itself never fails.
func (a *Aggregator) ListPools(ctx context.Context) ([]model.UnifiedPool, error) {
	return a.ListPoolsDetailed(ctx).Pools, nil
}

// ListPoolsDetailed queries every listing venue concurrently. Results keep
// venue registration order and are not de-duplicated across venues.
func (a *Aggregator) ListPoolsDetailed(ctx context.Context) PoolListing {
	ctx, span := a.tracer.Start(ctx, "aggregate.list-pools")
	defer span.End()

	venues := a.venues.Listing
	results := make([][]model.UnifiedPool, len(venues))
	failures := make([]error, len(venues))

	var g errgroup.Group
	for i, venue := range venues {
		i, venue := i, venue
		g.Go(func() error {
			pools, err := venue.ListPools(ctx)
			if err != nil {
				failures[i] = partialFailure(venue.Name(), err)
				return nil
			}
			results[i] = pools
			return nil
		})
	}
	_ = g.Wait()

	listing := PoolListing{Pools: []model.UnifiedPool{}}
	for i, venue := range venues {
		if failures[i] != nil {
			a.logger.Warn("venue pool listing failed", zap.String("venue", venue.Name()), zap.Error(failures[i]))
			listing.Failures = append(listing.Failures, failures[i])
			continue
		}
		listing.Pools = append(listing.Pools, results[i]...)
	}

	span.SetAttributes(
		attribute.Int("venues", len(venues)),
		attribute.Int("failed_venues", len(listing.Failures)),
		attribute.Int("pools", len(listing.Pools)),
	)
	if err := listing.Err(); err != nil {
		span.RecordError(err)
	}
	return listing
}

func partialFailure(venue string, err error) error {
	var ve *model.VenueError
	if !errors.As(err, &ve) {
		err = model.WrapVenue(venue, "list pools", err)
	}
	return fmt.Errorf("%w: %w", model.ErrAggregationPartialFailure, err)
}
