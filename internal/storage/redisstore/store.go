// Package redisstore keeps the latest pool listing in Redis: one JSON value
// per pool plus a sorted-set index scored by capture time.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"poolscope/internal/model"
	"poolscope/internal/storage"
)

const (
	keyPrefix = "poolscope:pool:"
	indexKey  = "poolscope:pools"
)

type Store struct {
	client redis.Cmdable
	closer func() error
	ttl    time.Duration
	now    func() time.Time
}

var _ storage.PoolSink = (*Store)(nil)

// NewStore connects to addr, which is either host:port or a redis:// URL,
// and pings the server. A ttl of zero keeps entries until overwritten.
func NewStore(ctx context.Context, addr string, ttl time.Duration) (*Store, error) {
	opts, err := options(addr)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newStore(client, client.Close, ttl), nil
}

func newStore(client redis.Cmdable, closer func() error, ttl time.Duration) *Store {
	if ttl < 0 {
		ttl = 0
	}
	return &Store{
		client: client,
		closer: closer,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// PutPools writes every pool and its index entry in one MULTI/EXEC.
func (s *Store) PutPools(ctx context.Context, pools []model.UnifiedPool) error {
	if len(pools) == 0 {
		return nil
	}

	capturedAt := s.now()
	pipe := s.client.TxPipeline()
	for _, pool := range pools {
		data, err := json.Marshal(storage.PoolSnapshot{CapturedAt: capturedAt, Pool: pool})
		if err != nil {
			return fmt.Errorf("encode pool %s: %w", pool.ID, err)
		}
		key := poolKey(pool)
		pipe.Set(ctx, key, data, s.ttl)
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(capturedAt.Unix()), Member: key})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write pools: %w", err)
	}
	return nil
}

func poolKey(pool model.UnifiedPool) string {
	return keyPrefix + strings.ToLower(string(pool.Protocol)) + ":" + strings.ToLower(pool.ID)
}

func options(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}
