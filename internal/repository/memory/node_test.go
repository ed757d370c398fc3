package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zote/internal/domain"
	models "zote/internal/domain/models/filetree"
)

func ptr(s string) *string { return &s }

func seed(t *testing.T, r *NodeRepository, nodes ...models.FileNode) {
	t.Helper()
	for i := range nodes {
		require.NoError(t, r.Create(context.Background(), &nodes[i]))
	}
}

func TestNodeRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewNodeRepository()
	seed(t, r, models.FileNode{ID: "a", OwnerID: "u1", Name: "Docs", Kind: models.NodeKindFolder})

	got, err := r.GetByID(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Equal(t, "Docs", got.Name)

	_, err = r.GetByID(ctx, "u2", "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNodeRepository_CreateRejects(t *testing.T) {
	ctx := context.Background()
	r := NewNodeRepository()
	seed(t, r, models.FileNode{ID: "a", OwnerID: "u1", Name: "Docs"})

	err := r.Create(ctx, &models.FileNode{ID: "b", OwnerID: "u1", Name: "Docs"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = r.Create(ctx, &models.FileNode{ID: "c", OwnerID: "u1", Name: "Page", ParentID: ptr("missing")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Same name under a different parent is fine
	err = r.Create(ctx, &models.FileNode{ID: "d", OwnerID: "u1", Name: "Docs", ParentID: ptr("a")})
	assert.NoError(t, err)
}

func TestNodeRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	r := NewNodeRepository()
	seed(t, r,
		models.FileNode{ID: "a", OwnerID: "u1", Name: "A", Sort: 3},
		models.FileNode{ID: "b", OwnerID: "u1", Name: "B", Sort: 1},
		models.FileNode{ID: "c", OwnerID: "u1", Name: "C", Sort: 2, ParentID: ptr("a")},
		models.FileNode{ID: "x", OwnerID: "u2", Name: "X", Sort: 0},
	)

	all, err := r.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, nodeIDs(all))

	roots, err := r.ListChildren(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, nodeIDs(roots))

	next, err := r.NextSort(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, next)

	next, err = r.NextSort(ctx, "u1", ptr("c"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, next)
}

func TestNodeRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	r := NewNodeRepository()
	seed(t, r,
		models.FileNode{ID: "a", OwnerID: "u1", Name: "A"},
		models.FileNode{ID: "b", OwnerID: "u1", Name: "B", ParentID: ptr("a")},
		models.FileNode{ID: "c", OwnerID: "u1", Name: "C", ParentID: ptr("b")},
		models.FileNode{ID: "d", OwnerID: "u1", Name: "D"},
	)

	require.NoError(t, r.Delete(ctx, "u1", "a"))

	all, _ := r.ListByOwner(ctx, "u1")
	assert.Equal(t, []string{"d"}, nodeIDs(all))
	assert.ErrorIs(t, r.Delete(ctx, "u1", "a"), domain.ErrNotFound)
}

func TestNodeRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewNodeRepository()
	seed(t, r, models.FileNode{ID: "a", OwnerID: "u1", Name: "A"})

	got, _ := r.GetByID(ctx, "u1", "a")
	got.Name = "mutated"

	again, _ := r.GetByID(ctx, "u1", "a")
	assert.Equal(t, "A", again.Name)
}

func TestTransactionManager_RollsBack(t *testing.T) {
	ctx := context.Background()
	r := NewNodeRepository()
	tm := NewTransactionManager(r)
	seed(t, r, models.FileNode{ID: "a", OwnerID: "u1", Name: "A"})

	failure := errors.New("boom")
	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		require.NoError(t, r.Delete(ctx, "u1", "a"))
		return failure
	})
	assert.ErrorIs(t, err, failure)

	_, err = r.GetByID(ctx, "u1", "a")
	assert.NoError(t, err)

	require.NoError(t, tm.ExecTx(ctx, func(ctx context.Context) error {
		return r.Delete(ctx, "u1", "a")
	}))
	_, err = r.GetByID(ctx, "u1", "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func nodeIDs(nodes []models.FileNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}
