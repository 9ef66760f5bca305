package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poolscope",
		Short:        "Concentrated-liquidity pool and price analytics",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("dragonswap-url", "", "DragonSwap API base URL")
	pf.String("sailor-url", "", "Sailor API base URL")
	pf.String("binance-url", "", "Binance API base URL")
	pf.Duration("timeout", 10*time.Second, "HTTP timeout per upstream request")
	pf.String("user-agent", "", "HTTP user agent")
	pf.Int("retries", 0, "extra attempts for upstream GETs failing with transport errors, 429 or 5xx")
	pf.Float64("min-activity", 1000, "minimum daily volume / TVL for listed pools")
	pf.StringSlice("listing-venues", nil, "venues queried by pools (dragonswap, sailor)")
	pf.String("candle-venue", "", "venue for candles and ranges (sailor, binance)")
	pf.String("history-venue", "", "venue for price history analysis (binance, sailor)")
	pf.String("rpc", "", "EVM RPC URL for on-chain pool reads")

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List active pools across venues",
		RunE:  runPools,
	}
	poolsCmd.Flags().String("out", "", "append pool snapshots to this JSONL file")
	poolsCmd.Flags().String("pg-dsn", "", "upsert pool snapshots into Postgres")
	poolsCmd.Flags().String("redis-url", "", "write pool snapshots to Redis (host:port or redis:// URL)")
	poolsCmd.Flags().Duration("redis-ttl", 0, "expiry of Redis pool entries (0 keeps them)")
	root.AddCommand(poolsCmd)

	liquidityCmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Show the active liquidity distribution of a pool",
		RunE:  runLiquidity,
	}
	liquidityCmd.Flags().String("pool", "", "pool address")
	root.AddCommand(liquidityCmd)

	candlesCmd := &cobra.Command{
		Use:   "candles",
		Short: "Fetch candles for a token pair",
		RunE:  runCandles,
	}
	addPairFlags(candlesCmd)
	root.AddCommand(candlesCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze price history, volatility and trend of a token pair",
		RunE:  runAnalyze,
	}
	addPairFlags(analyzeCmd)
	root.AddCommand(analyzeCmd)

	rangeCmd := &cobra.Command{
		Use:   "range",
		Short: "Recommend a liquidity range in ticks",
		RunE:  runRange,
	}
	rangeCmd.Flags().String("token0", "", "token0 symbol")
	rangeCmd.Flags().String("token1", "", "token1 symbol")
	rangeCmd.Flags().Int32("tick-spacing", 0, "tick spacing used for alignment")
	rangeCmd.Flags().String("pool", "", "pool address; reads tokens and spacing on-chain (requires --rpc)")
	root.AddCommand(rangeCmd)

	pricesCmd := &cobra.Command{
		Use:   "prices",
		Short: "Quote current token prices by address",
		RunE:  runPrices,
	}
	pricesCmd.Flags().StringSlice("tokens", nil, "token addresses")
	root.AddCommand(pricesCmd)

	poolStateCmd := &cobra.Command{
		Use:   "pool-state",
		Short: "Read a V3 pool's on-chain state",
		RunE:  runPoolState,
	}
	poolStateCmd.Flags().String("pool", "", "pool address")
	root.AddCommand(poolStateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPairFlags(cmd *cobra.Command) {
	cmd.Flags().String("token0", "", "token0 symbol")
	cmd.Flags().String("token1", "", "token1 symbol")
	cmd.Flags().Uint32("interval", 15, "candle interval in minutes")
	cmd.Flags().Uint32("limit", 100, "number of candles")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
