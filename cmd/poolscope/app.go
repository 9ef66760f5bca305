package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolscope/internal/aggregate"
	"poolscope/internal/chain"
	"poolscope/internal/config"
	"poolscope/internal/dex"
	"poolscope/internal/httpx"
	"poolscope/internal/provider"
	"poolscope/internal/provider/binance"
	"poolscope/internal/provider/dragonswap"
	"poolscope/internal/provider/sailor"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger
	agg    *aggregate.Aggregator
	chain  *chain.Client
	ctx    context.Context
	stop   context.CancelFunc
}

// newApp loads configuration and wires venues into an Aggregator. The chain
// client is only dialed when an RPC URL is configured.
func newApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{cfg: cfg, logger: logger, ctx: ctx, stop: stop}

	hc := httpx.New(cfg.Timeout)
	hc.Retries = cfg.Retries
	if cfg.UserAgent != "" {
		hc.UserAgent = cfg.UserAgent
	}
	ds := dragonswap.New(dragonswap.Config{BaseURL: cfg.DragonSwapURL, MinActivity: cfg.MinActivity}, hc, logger.Named("dragonswap"))
	sl := sailor.New(sailor.Config{BaseURL: cfg.SailorURL, MinActivity: cfg.MinActivity}, hc, logger.Named("sailor"))
	bn := binance.New(binance.Config{BaseURL: cfg.BinanceURL}, hc, logger.Named("binance"))

	byName := map[string]provider.Provider{
		config.VenueDragonSwap: ds,
		config.VenueSailor:     sl,
		config.VenueBinance:    bn,
	}
	venues := aggregate.Venues{
		Primary:   ds,
		Secondary: sl,
		Candles:   byName[cfg.CandleVenue],
		History:   byName[cfg.HistoryVenue],
		Tokens:    sl,
		Prices:    sl,
	}
	for _, name := range cfg.ListingVenues {
		venues.Listing = append(venues.Listing, byName[name])
	}

	if cfg.RPCURL != "" {
		client, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect rpc: %w", err)
		}
		a.chain = client
		logger.Info("rpc connected", zap.String("chain_id", client.ChainID().String()))
		venues.PoolState = dex.NewStateReader(client, logger.Named("dex"))
	}

	a.agg = aggregate.NewAggregator(aggregate.Config{}, venues, logger, nil)
	return a, nil
}

func (a *app) Close() {
	if a.chain != nil {
		a.chain.Close()
	}
	a.stop()
	_ = a.logger.Sync()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
