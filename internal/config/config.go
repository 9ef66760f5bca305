package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poolscope/internal/provider/binance"
	"poolscope/internal/provider/dragonswap"
	"poolscope/internal/provider/sailor"
)

const (
	VenueDragonSwap = "dragonswap"
	VenueSailor     = "sailor"
	VenueBinance    = "binance"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	DragonSwapURL string
	SailorURL     string
	BinanceURL    string
	RPCURL        string
	Timeout       time.Duration
	UserAgent     string
	Retries       int
	MinActivity   float64

	ListingVenues []string
	CandleVenue   string
	HistoryVenue  string

	PGDSN    string
	RedisURL string
	RedisTTL time.Duration
	Out      string
	LogLevel string

	Pool        string
	Token0      string
	Token1      string
	Tokens      []string
	Interval    uint32
	Limit       uint32
	TickSpacing int32
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("dragonswap-url", dragonswap.DefaultBaseURL)
	v.SetDefault("sailor-url", sailor.DefaultBaseURL)
	v.SetDefault("binance-url", binance.DefaultBaseURL)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("user-agent", "poolscope/1.0")
	v.SetDefault("retries", 0)
	v.SetDefault("min-activity", 1000.0)
	v.SetDefault("listing-venues", []string{VenueDragonSwap, VenueSailor})
	v.SetDefault("candle-venue", VenueSailor)
	v.SetDefault("history-venue", VenueBinance)
	v.SetDefault("log-level", "info")
	v.SetDefault("interval", uint32(15))
	v.SetDefault("limit", uint32(100))

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		DragonSwapURL: v.GetString("dragonswap-url"),
		SailorURL:     v.GetString("sailor-url"),
		BinanceURL:    v.GetString("binance-url"),
		RPCURL:        v.GetString("rpc"),
		Timeout:       v.GetDuration("timeout"),
		UserAgent:     v.GetString("user-agent"),
		Retries:       v.GetInt("retries"),
		MinActivity:   v.GetFloat64("min-activity"),
		ListingVenues: lower(getStringSlice(v, "listing-venues")),
		CandleVenue:   strings.ToLower(strings.TrimSpace(v.GetString("candle-venue"))),
		HistoryVenue:  strings.ToLower(strings.TrimSpace(v.GetString("history-venue"))),
		PGDSN:         v.GetString("pg-dsn"),
		RedisURL:      v.GetString("redis-url"),
		RedisTTL:      v.GetDuration("redis-ttl"),
		Out:           v.GetString("out"),
		LogLevel:      v.GetString("log-level"),
		Pool:          strings.TrimSpace(v.GetString("pool")),
		Token0:        strings.TrimSpace(v.GetString("token0")),
		Token1:        strings.TrimSpace(v.GetString("token1")),
		Tokens:        getStringSlice(v, "tokens"),
		Interval:      v.GetUint32("interval"),
		Limit:         v.GetUint32("limit"),
		TickSpacing:   v.GetInt32("tick-spacing"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	for _, venue := range c.ListingVenues {
		if venue != VenueDragonSwap && venue != VenueSailor {
			return fmt.Errorf("listing venue %q does not list pools", venue)
		}
	}
	for key, venue := range map[string]string{"candle-venue": c.CandleVenue, "history-venue": c.HistoryVenue} {
		if venue != VenueSailor && venue != VenueBinance {
			return fmt.Errorf("%s %q does not serve candles", key, venue)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RedisTTL < 0 {
		return fmt.Errorf("redis-ttl must not be negative")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	return nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	return cleanStrings(strings.Split(input, ","))
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func lower(items []string) []string {
	for i, item := range items {
		items[i] = strings.ToLower(item)
	}
	return items
}
