package filetree

import (
	"context"
	"log/slog"

	models "zote/internal/domain/models/filetree"
	repo "zote/internal/domain/repositories/filetree"
	svc "zote/internal/domain/services/filetree"
)

// treeService implements the TreeService interface
type treeService struct {
	nodeRepo repo.NodeRepository
	logger   *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(nodeRepo repo.NodeRepository, logger *slog.Logger) svc.TreeService {
	return &treeService{
		nodeRepo: nodeRepo,
		logger:   logger,
	}
}

// GetTree loads the owner's flat node list and builds the navigator tree
func (s *treeService) GetTree(ctx context.Context, ownerID string) (*models.Tree, error) {
	nodes, err := s.nodeRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	tree := BuildTree(nodes)

	if tree.Report.HasDefects() {
		s.logger.Warn("tree built with data defects",
			"owner_id", ownerID,
			"duplicate_count", tree.Report.DuplicateCount(),
			"duplicates", tree.Report.Duplicates,
			"self_parents", tree.Report.SelfParents,
			"cycles", tree.Report.Cycles,
		)
	}

	s.logger.Info("tree built",
		"owner_id", ownerID,
		"node_count", len(nodes),
		"root_count", len(tree.Nodes),
	)

	return tree, nil
}
