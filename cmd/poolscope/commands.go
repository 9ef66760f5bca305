package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolscope/internal/storage"
	"poolscope/internal/storage/postgres"
	"poolscope/internal/storage/redisstore"
)

func runPools(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	listing := a.agg.ListPoolsDetailed(a.ctx)
	if len(listing.Pools) == 0 && listing.Err() != nil {
		return listing.Err()
	}

	var sinks []storage.PoolSink
	if a.cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(a.cfg.Out))
	}
	if a.cfg.PGDSN != "" {
		store, err := postgres.NewStore(a.ctx, a.cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(a.ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}
	if a.cfg.RedisURL != "" {
		store, err := redisstore.NewStore(a.ctx, a.cfg.RedisURL, a.cfg.RedisTTL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
	}
	for _, sink := range sinks {
		if err := sink.PutPools(a.ctx, listing.Pools); err != nil {
			return fmt.Errorf("store pools: %w", err)
		}
	}

	a.logger.Info("pools listed",
		zap.Int("pools", len(listing.Pools)),
		zap.Int("failed_venues", len(listing.Failures)),
		zap.Int("sinks", len(sinks)),
	)
	return writeJSON(cmd.OutOrStdout(), listing.Pools)
}

func runLiquidity(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ticks, err := a.agg.GetLiquidity(a.ctx, a.cfg.Pool)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), ticks)
}

func runCandles(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	candles, err := a.agg.GetCandles(a.ctx, a.cfg.Token0, a.cfg.Token1, a.cfg.Interval, a.cfg.Limit)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), candles)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.agg.GetPriceHistoryAnalysis(a.ctx, a.cfg.Token0, a.cfg.Token1, a.cfg.Interval, a.cfg.Limit)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func runRange(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Pool != "" {
		if a.cfg.RPCURL == "" {
			return fmt.Errorf("rpc url is required with --pool")
		}
		r, err := a.agg.OptimalLiquidityRangeForPool(a.ctx, a.cfg.Pool)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), r)
	}
	if a.cfg.TickSpacing <= 0 {
		return fmt.Errorf("tick-spacing is required without --pool")
	}
	r, err := a.agg.OptimalLiquidityRangeBySymbol(a.ctx, a.cfg.Token0, a.cfg.Token1, a.cfg.TickSpacing)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), r)
}

func runPoolState(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	state, err := a.agg.PoolState(a.ctx, a.cfg.Pool)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), state)
}

func runPrices(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	prices, err := a.agg.TokenPrices(a.ctx, a.cfg.Tokens)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), prices)
}
