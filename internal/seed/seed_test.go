package seed

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zote/internal/domain"
	models "zote/internal/domain/models/filetree"
	"zote/internal/repository/memory"
	"zote/internal/service/filetree"
)

func newSeeder() (*Seeder, *memory.NodeRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewNodeRepository()
	nodes := filetree.NewNodeService(repo, memory.NewTransactionManager(repo), logger)
	return NewSeeder(nodes, logger), repo
}

func TestDefaultFixture(t *testing.T) {
	f, err := DefaultFixture()
	require.NoError(t, err)
	assert.NotEmpty(t, f.Nodes)
}

func TestLoadFixture_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "missing key", yaml: "nodes:\n  - name: a\n    type: page\n", want: "missing key"},
		{name: "duplicate key", yaml: "nodes:\n  - {key: a, name: a, type: page}\n  - {key: a, name: b, type: page}\n", want: "duplicate key"},
		{name: "unknown type", yaml: "nodes:\n  - {key: a, name: a, type: file}\n", want: "unknown type"},
		{name: "unknown parent", yaml: "nodes:\n  - {key: a, parent: b, name: a, type: page}\n", want: "unknown parent"},
		{name: "unknown field", yaml: "nodes:\n  - {key: a, name: a, type: page, colour: red}\n", want: "decode fixture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFixture(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSeed_DefaultFixture(t *testing.T) {
	ctx := context.Background()
	seeder, repo := newSeeder()
	f, err := DefaultFixture()
	require.NoError(t, err)

	created, err := seeder.Seed(ctx, "dev-user", f)
	require.NoError(t, err)
	assert.Len(t, created, len(f.Nodes))

	nodes, err := repo.ListByOwner(ctx, "dev-user")
	require.NoError(t, err)
	tree := filetree.BuildTree(nodes)
	assert.Equal(t, len(f.Nodes), tree.Count())
	assert.False(t, tree.Report.HasDefects())

	// Explicit sort keys put Kickoff before Weekly meetings
	for _, root := range tree.Nodes {
		if root.Name == "Meeting notes" {
			require.Len(t, root.Children, 2)
			assert.Equal(t, "Kickoff", root.Children[0].Name)
			assert.Equal(t, "Weekly meetings", root.Children[1].Name)
		}
	}
}

func TestSeed_ChildListedBeforeParent(t *testing.T) {
	ctx := context.Background()
	seeder, repo := newSeeder()
	f, err := LoadFixture(strings.NewReader(`
nodes:
  - {key: leaf, parent: mid, name: Leaf, type: page}
  - {key: mid, parent: top, name: Mid, type: folder}
  - {key: top, name: Top, type: folder}
`))
	require.NoError(t, err)

	created, err := seeder.Seed(ctx, "dev-user", f)
	require.NoError(t, err)

	leaf, err := repo.GetByID(ctx, "dev-user", created["leaf"])
	require.NoError(t, err)
	assert.Equal(t, created["mid"], *leaf.ParentID)
	assert.Equal(t, models.NodeKindPage, leaf.Kind)
}

func TestSeed_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("cycle", func(t *testing.T) {
		seeder, _ := newSeeder()
		f := &Fixture{Nodes: []FixtureNode{
			{Key: "a", Parent: "b", Name: "A", Type: "folder"},
			{Key: "b", Parent: "a", Name: "B", Type: "folder"},
		}}
		_, err := seeder.Seed(ctx, "dev-user", f)
		assert.ErrorContains(t, err, "cycle")
	})

	t.Run("service rejects node", func(t *testing.T) {
		seeder, _ := newSeeder()
		f := &Fixture{Nodes: []FixtureNode{
			{Key: "a", Name: "Same", Type: "page"},
			{Key: "b", Name: "Same", Type: "page"},
		}}
		created, err := seeder.Seed(ctx, "dev-user", f)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Len(t, created, 1)
	})
}
