package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"poolscope/internal/model"
)

// PoolSnapshot is one JSONL line: a pool as listed at CapturedAt.
type PoolSnapshot struct {
	CapturedAt time.Time         `json:"captured_at"`
	Pool       model.UnifiedPool `json:"pool"`
}

// JsonlStorage appends pool snapshots to a JSONL file.
type JsonlStorage struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

var _ PoolSink = (*JsonlStorage)(nil)

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path, now: func() time.Time { return time.Now().UTC() }}
}

// PutPools appends one line per pool, all stamped with the same capture time.
func (s *JsonlStorage) PutPools(ctx context.Context, pools []model.UnifiedPool) error {
	if len(pools) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	capturedAt := s.now()
	writer := bufio.NewWriter(file)
	enc := json.NewEncoder(writer)
	for _, pool := range pools {
		if err := enc.Encode(PoolSnapshot{CapturedAt: capturedAt, Pool: pool}); err != nil {
			return fmt.Errorf("write pool %s: %w", pool.ID, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
