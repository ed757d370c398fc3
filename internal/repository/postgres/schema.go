package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the node table and its indexes if they are missing
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	createNodes := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			parent_id UUID REFERENCES %[1]s(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			kind SMALLINT NOT NULL CHECK (kind IN (1, 2)),
			sort DOUBLE PRECISION NOT NULL DEFAULT 0,
			icon TEXT NOT NULL DEFAULT '',
			meta JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(owner_id, parent_id, name)
		)
	`, tables.Nodes)
	if _, err := pool.Exec(ctx, createNodes); err != nil {
		return fmt.Errorf("create %s: %w", tables.Nodes, err)
	}

	indexes := []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_owner_parent ON %[1]s(owner_id, parent_id)`, tables.Nodes),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%[1]s_root_unique ON %[1]s(owner_id, name) WHERE parent_id IS NULL`, tables.Nodes),
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// DropTables removes every table this service owns
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables.Nodes))
	if err != nil {
		return fmt.Errorf("drop %s: %w", tables.Nodes, err)
	}
	return nil
}

// ClearOwnerData deletes all nodes belonging to ownerID
func ClearOwnerData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, ownerID string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE owner_id = $1`, tables.Nodes), ownerID)
	if err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}
	return nil
}
