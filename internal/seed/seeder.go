package seed

import (
	"context"
	"fmt"
	"log/slog"

	svc "zote/internal/domain/services/filetree"
)

// Seeder creates fixture nodes through the node service, so seeded data
// passes the same validation as API writes
type Seeder struct {
	nodes  svc.NodeService
	logger *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(nodes svc.NodeService, logger *slog.Logger) *Seeder {
	return &Seeder{
		nodes:  nodes,
		logger: logger,
	}
}

// Seed creates every fixture node for ownerID, parents before children,
// and returns the created ids by fixture key
func (s *Seeder) Seed(ctx context.Context, ownerID string, f *Fixture) (map[string]string, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	created := make(map[string]string, len(f.Nodes))
	pending := f.Nodes

	// Each round creates every node whose parent already exists; a round
	// without progress means the parent references form a cycle
	for len(pending) > 0 {
		var next []FixtureNode
		for _, n := range pending {
			var parentID *string
			if n.Parent != "" {
				id, ok := created[n.Parent]
				if !ok {
					next = append(next, n)
					continue
				}
				parentID = &id
			}

			kind, _ := n.Kind()
			node, err := s.nodes.CreateNode(ctx, &svc.CreateNodeRequest{
				OwnerID:  ownerID,
				ParentID: parentID,
				Name:     n.Name,
				Kind:     kind,
				Sort:     n.Sort,
				Icon:     n.Icon,
				Meta:     n.Meta,
			})
			if err != nil {
				return created, fmt.Errorf("create %q: %w", n.Key, err)
			}
			created[n.Key] = node.ID
			s.logger.Debug("seeded node", "key", n.Key, "id", node.ID, "name", node.Name)
		}

		if len(next) == len(pending) {
			return created, fmt.Errorf("fixture parent references form a cycle at %q", next[0].Key)
		}
		pending = next
	}

	s.logger.Info("fixture seeded", "owner_id", ownerID, "node_count", len(created))
	return created, nil
}
