package filetree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zote/internal/domain"
	models "zote/internal/domain/models/filetree"
	repo "zote/internal/domain/repositories/filetree"
	"zote/internal/repository/postgres"
)

const nodeColumns = `id, owner_id, parent_id, name, kind, sort, icon, meta, created_at, updated_at`

// PostgresNodeRepository implements NodeRepository
type PostgresNodeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(config *postgres.RepositoryConfig) repo.NodeRepository {
	return &PostgresNodeRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a node
func (r *PostgresNodeRepository) Create(ctx context.Context, node *models.FileNode) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.Nodes, nodeColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		node.ID,
		node.OwnerID,
		node.ParentID,
		node.Name,
		node.Kind,
		node.Sort,
		node.Icon,
		node.Meta,
		node.CreatedAt,
		node.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("node '%s': %w", node.Name, domain.ErrConflict)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent node: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create node: %w", err)
	}

	return nil
}

// GetByID retrieves a node by ID
func (r *PostgresNodeRepository) GetByID(ctx context.Context, ownerID, id string) (*models.FileNode, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, nodeColumns, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get node: %w", err)
	}

	return node, nil
}

// Update persists the mutable fields of a node
func (r *PostgresNodeRepository) Update(ctx context.Context, node *models.FileNode) error {
	if !isUUID(node.ID) {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, sort = $3, icon = $4, meta = $5, updated_at = $6
		WHERE id = $7 AND owner_id = $8
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		node.ParentID,
		node.Name,
		node.Sort,
		node.Icon,
		node.Meta,
		node.UpdatedAt,
		node.ID,
		node.OwnerID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("node '%s': %w", node.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update node: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a single node
func (r *PostgresNodeRepository) Delete(ctx context.Context, ownerID, id string) error {
	if !isUUID(id) {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByOwner returns all of the owner's nodes in creation order
func (r *PostgresNodeRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.FileNode, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`, nodeColumns, r.tables.Nodes)

	return r.list(ctx, query, ownerID)
}

// ListChildren returns the immediate children of parentID
func (r *PostgresNodeRepository) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]models.FileNode, error) {
	var query string
	args := []any{ownerID}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE owner_id = $1 AND parent_id IS NULL
			ORDER BY sort ASC, created_at ASC
		`, nodeColumns, r.tables.Nodes)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE owner_id = $1 AND parent_id = $2
			ORDER BY sort ASC, created_at ASC
		`, nodeColumns, r.tables.Nodes)
		args = append(args, *parentID)
	}

	return r.list(ctx, query, args...)
}

// NextSort returns one past the largest sibling sort key (1 for an empty level)
func (r *PostgresNodeRepository) NextSort(ctx context.Context, ownerID string, parentID *string) (float64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(sort), 0) + 1
		FROM %s
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
	`, r.tables.Nodes)

	var next float64
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, ownerID, parentID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sort: %w", err)
	}

	return next, nil
}

func (r *PostgresNodeRepository) list(ctx context.Context, query string, args ...any) ([]models.FileNode, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]models.FileNode, 0)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

func scanNode(row pgx.Row) (*models.FileNode, error) {
	var node models.FileNode
	err := row.Scan(
		&node.ID,
		&node.OwnerID,
		&node.ParentID,
		&node.Name,
		&node.Kind,
		&node.Sort,
		&node.Icon,
		&node.Meta,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// isUUID reports whether id can be compared against the UUID id column;
// anything else cannot match a row
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}
