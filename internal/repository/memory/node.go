// Package memory provides an in-process NodeRepository used when no
// database is configured in dev, and by tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"zote/internal/domain"
	models "zote/internal/domain/models/filetree"
	"zote/internal/domain/repositories"
	repo "zote/internal/domain/repositories/filetree"
)

type entry struct {
	node models.FileNode
	seq  int // insertion order, stands in for created_at ordering
}

// NodeRepository keeps nodes in a map guarded by a RWMutex
type NodeRepository struct {
	mu    sync.RWMutex
	nodes map[string]entry
	seq   int
}

var _ repo.NodeRepository = (*NodeRepository)(nil)

// NewNodeRepository creates an empty repository
func NewNodeRepository() *NodeRepository {
	return &NodeRepository{nodes: make(map[string]entry)}
}

func (r *NodeRepository) Create(ctx context.Context, node *models.FileNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[node.ID]; exists {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrConflict)
	}
	if err := r.checkParent(node); err != nil {
		return err
	}
	if r.nameTaken(node) {
		return fmt.Errorf("node '%s': %w", node.Name, domain.ErrConflict)
	}

	r.seq++
	r.nodes[node.ID] = entry{node: node.Clone(), seq: r.seq}
	return nil
}

func (r *NodeRepository) GetByID(ctx context.Context, ownerID, id string) (*models.FileNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.nodes[id]
	if !ok || e.node.OwnerID != ownerID {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	node := e.node.Clone()
	return &node, nil
}

func (r *NodeRepository) Update(ctx context.Context, node *models.FileNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.nodes[node.ID]
	if !ok || e.node.OwnerID != node.OwnerID {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrNotFound)
	}
	if err := r.checkParent(node); err != nil {
		return err
	}
	if r.nameTaken(node) {
		return fmt.Errorf("node '%s': %w", node.Name, domain.ErrConflict)
	}

	incoming := node.Clone()
	updated := e.node
	updated.ParentID = incoming.ParentID
	updated.Name = incoming.Name
	updated.Sort = incoming.Sort
	updated.Icon = incoming.Icon
	updated.Meta = incoming.Meta
	updated.UpdatedAt = incoming.UpdatedAt
	r.nodes[node.ID] = entry{node: updated, seq: e.seq}
	return nil
}

// Delete removes the node and, like the ON DELETE CASCADE foreign key in
// postgres, everything beneath it
func (r *NodeRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.nodes[id]
	if !ok || e.node.OwnerID != ownerID {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	doomed := []string{id}
	for len(doomed) > 0 {
		current := doomed[0]
		doomed = doomed[1:]
		delete(r.nodes, current)
		for childID, child := range r.nodes {
			if child.node.ParentID != nil && *child.node.ParentID == current {
				doomed = append(doomed, childID)
			}
		}
	}
	return nil
}

func (r *NodeRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.FileNode, error) {
	return r.filter(ownerID, func(models.FileNode) bool { return true }, false), nil
}

func (r *NodeRepository) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]models.FileNode, error) {
	return r.filter(ownerID, func(n models.FileNode) bool { return sameParent(n.ParentID, parentID) }, true), nil
}

func (r *NodeRepository) NextSort(ctx context.Context, ownerID string, parentID *string) (float64, error) {
	children, _ := r.ListChildren(ctx, ownerID, parentID)
	next := 1.0
	for _, child := range children {
		next = max(next, child.Sort+1)
	}
	return next, nil
}

// filter returns copies of the owner's matching nodes in insertion order,
// or by sort key when bySort is set
func (r *NodeRepository) filter(ownerID string, keep func(models.FileNode) bool, bySort bool) []models.FileNode {
	r.mu.RLock()
	entries := make([]entry, 0, len(r.nodes))
	for _, e := range r.nodes {
		if e.node.OwnerID == ownerID && keep(e.node) {
			entries = append(entries, entry{node: e.node.Clone(), seq: e.seq})
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(entries, func(a, b entry) int {
		if bySort {
			if c := cmp.Compare(a.node.Sort, b.node.Sort); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.seq, b.seq)
	})

	nodes := make([]models.FileNode, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, e.node)
	}
	return nodes
}

func (r *NodeRepository) checkParent(node *models.FileNode) error {
	if node.ParentID == nil {
		return nil
	}
	parent, ok := r.nodes[*node.ParentID]
	if !ok || parent.node.OwnerID != node.OwnerID {
		return fmt.Errorf("parent node: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *NodeRepository) nameTaken(node *models.FileNode) bool {
	for id, e := range r.nodes {
		if id != node.ID && e.node.OwnerID == node.OwnerID &&
			e.node.Name == node.Name && sameParent(e.node.ParentID, node.ParentID) {
			return true
		}
	}
	return false
}

func (r *NodeRepository) snapshot() (map[string]entry, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nodes := make(map[string]entry, len(r.nodes))
	for id, e := range r.nodes {
		nodes[id] = entry{node: e.node.Clone(), seq: e.seq}
	}
	return nodes, r.seq
}

func (r *NodeRepository) restore(nodes map[string]entry, seq int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = nodes
	r.seq = seq
}

// TransactionManager serializes transactions against one NodeRepository and
// restores its previous state when the function fails. Writes made outside
// ExecTx during a failing transaction are lost with the rollback; that is
// acceptable for a dev store.
type TransactionManager struct {
	mu   sync.Mutex
	repo *NodeRepository
}

var _ repositories.TransactionManager = (*TransactionManager)(nil)

// NewTransactionManager creates a transaction manager for repo
func NewTransactionManager(repo *NodeRepository) *TransactionManager {
	return &TransactionManager{repo: repo}
}

func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	nodes, seq := tm.repo.snapshot()
	if err := fn(ctx); err != nil {
		tm.repo.restore(nodes, seq)
		return err
	}
	return nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
