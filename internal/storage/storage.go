package storage

import (
	"context"

	"poolscope/internal/model"
)

// PoolSink persists pool listing snapshots.
type PoolSink interface {
	PutPools(ctx context.Context, pools []model.UnifiedPool) error
}
