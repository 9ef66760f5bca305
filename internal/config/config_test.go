package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolscope/internal/provider/binance"
	"poolscope/internal/provider/dragonswap"
	"poolscope/internal/provider/sailor"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, dragonswap.DefaultBaseURL, cfg.DragonSwapURL)
	assert.Equal(t, sailor.DefaultBaseURL, cfg.SailorURL)
	assert.Equal(t, binance.DefaultBaseURL, cfg.BinanceURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.Retries)
	assert.Equal(t, 1000.0, cfg.MinActivity)
	assert.Equal(t, []string{VenueDragonSwap, VenueSailor}, cfg.ListingVenues)
	assert.Equal(t, VenueSailor, cfg.CandleVenue)
	assert.Equal(t, VenueBinance, cfg.HistoryVenue)
	assert.Equal(t, uint32(15), cfg.Interval)
	assert.Equal(t, uint32(100), cfg.Limit)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvAndFlags(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("POOLSCOPE_MIN_ACTIVITY", "2500")
	t.Setenv("POOLSCOPE_LISTING_VENUES", "Sailor, ")
	t.Setenv("POOLSCOPE_TOKEN0", "SEI")
	t.Setenv("POOLSCOPE_TOKENS", "0xa, 0xb,")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("token0", "", "")
	flags.Uint32("limit", 100, "")
	flags.Int32("tick-spacing", 0, "")
	require.NoError(t, flags.Parse([]string{"--limit", "30", "--tick-spacing", "60"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, cfg.MinActivity)
	assert.Equal(t, []string{VenueSailor}, cfg.ListingVenues)
	assert.Equal(t, "SEI", cfg.Token0)
	assert.Equal(t, []string{"0xa", "0xb"}, cfg.Tokens)
	assert.Equal(t, uint32(30), cfg.Limit)
	assert.Equal(t, int32(60), cfg.TickSpacing)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poolscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sailor-url: http://localhost:9000\nhistory-venue: sailor\ntimeout: 3s\nretries: 2\nredis-url: localhost:6379\nredis-ttl: 10m\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.SailorURL)
	assert.Equal(t, VenueSailor, cfg.HistoryVenue)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, 10*time.Minute, cfg.RedisTTL)
}

func TestLoadRejectsUnknownVenues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("POOLSCOPE_LISTING_VENUES", "binance")
	_, err := Load("", nil)
	require.ErrorContains(t, err, "does not list pools")

	t.Setenv("POOLSCOPE_LISTING_VENUES", "sailor")
	t.Setenv("POOLSCOPE_HISTORY_VENUE", "dragonswap")
	_, err = Load("", nil)
	require.ErrorContains(t, err, "does not serve candles")
}

func TestLoadRejectsNegativeRetries(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("POOLSCOPE_RETRIES", "-1")

	_, err := Load("", nil)
	require.ErrorContains(t, err, "retries")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
