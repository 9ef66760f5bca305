package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolscope/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	protocol        TEXT             NOT NULL,
	pool_id         TEXT             NOT NULL,
	token0_address  TEXT             NOT NULL,
	token0_symbol   TEXT             NOT NULL,
	token0_decimals SMALLINT         NOT NULL,
	token1_address  TEXT             NOT NULL,
	token1_symbol   TEXT             NOT NULL,
	token1_decimals SMALLINT         NOT NULL,
	tvl             DOUBLE PRECISION,
	daily_volume    DOUBLE PRECISION,
	apr             DOUBLE PRECISION,
	fee_tier        TEXT             NOT NULL,
	captured_at     TIMESTAMPTZ      NOT NULL,
	created_at      TIMESTAMPTZ      NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ      NOT NULL DEFAULT now(),
	PRIMARY KEY (protocol, pool_id)
)`

const upsertPoolSQL = `
	INSERT INTO pool_snapshots (
		protocol, pool_id,
		token0_address, token0_symbol, token0_decimals,
		token1_address, token1_symbol, token1_decimals,
		tvl, daily_volume, apr, fee_tier, captured_at, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now(),now())
	ON CONFLICT (protocol, pool_id)
	DO UPDATE SET
		token0_address = EXCLUDED.token0_address,
		token0_symbol = EXCLUDED.token0_symbol,
		token0_decimals = EXCLUDED.token0_decimals,
		token1_address = EXCLUDED.token1_address,
		token1_symbol = EXCLUDED.token1_symbol,
		token1_decimals = EXCLUDED.token1_decimals,
		tvl = EXCLUDED.tvl,
		daily_volume = EXCLUDED.daily_volume,
		apr = EXCLUDED.apr,
		fee_tier = EXCLUDED.fee_tier,
		captured_at = EXCLUDED.captured_at,
		updated_at = now()
`

// Store keeps the latest listing of every pool in Postgres.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutPools upserts pools keyed by (protocol, pool_id). Absent metrics are
// stored as NULL.
func (s *Store) PutPools(ctx context.Context, pools []model.UnifiedPool) error {
	if len(pools) == 0 {
		return nil
	}
	capturedAt := s.now()
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(upsertPoolSQL, poolArgs(pool, capturedAt)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, pool := range pools {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert pool %s/%s: %w", pool.Protocol, pool.ID, err)
		}
	}
	return nil
}

func poolArgs(pool model.UnifiedPool, capturedAt time.Time) []any {
	return []any{
		string(pool.Protocol),
		pool.ID,
		pool.Token0.Address,
		pool.Token0.Symbol,
		int16(pool.Token0.Decimals),
		pool.Token1.Address,
		pool.Token1.Symbol,
		int16(pool.Token1.Decimals),
		pool.TVL,
		pool.DailyVolume,
		pool.APR,
		pool.FeeTier,
		capturedAt,
	}
}
