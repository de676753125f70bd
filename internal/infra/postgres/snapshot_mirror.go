package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// SnapshotMirror is the remote sync target: it upserts every synced snapshot
// into the snapshots table so progress can be reported on centrally.
type SnapshotMirror struct {
	pool *pgxpool.Pool
}

func NewSnapshotMirror(pool *pgxpool.Pool) *SnapshotMirror {
	return &SnapshotMirror{pool: pool}
}

func (m *SnapshotMirror) Sync(ctx context.Context, key string, data []byte) error {
	_, err := m.pool.Exec(ctx, `
		INSERT INTO snapshots (key, data, synced_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, synced_at = now()`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("sync snapshot: %w", err)
	}
	return nil
}

// Mirrored returns the last synced payload for key.
func (m *SnapshotMirror) Mirrored(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	if err := m.pool.QueryRow(ctx, `SELECT data FROM snapshots WHERE key=$1`, key).Scan(&data); err != nil {
		return nil, fmt.Errorf("read mirrored snapshot: %w", err)
	}
	return data, nil
}
