package filetree

import (
	"context"

	models "zote/internal/domain/models/filetree"
)

// TreeService builds the navigator tree
type TreeService interface {
	// GetTree loads the owner's flat nodes and returns them as an ordered tree
	GetTree(ctx context.Context, ownerID string) (*models.Tree, error)
}
