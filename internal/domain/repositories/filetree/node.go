package filetree

import (
	"context"

	models "zote/internal/domain/models/filetree"
)

// NodeRepository defines data access operations for navigator nodes.
// Every method is scoped to an owner.
type NodeRepository interface {
	// Create inserts a node; ID and timestamps must already be set
	Create(ctx context.Context, node *models.FileNode) error

	// GetByID retrieves a node by ID
	GetByID(ctx context.Context, ownerID, id string) (*models.FileNode, error)

	// Update persists name, parent, sort, icon and meta
	Update(ctx context.Context, node *models.FileNode) error

	// Delete removes a single node
	Delete(ctx context.Context, ownerID, id string) error

	// ListByOwner returns the owner's nodes as a flat list in creation order
	ListByOwner(ctx context.Context, ownerID string) ([]models.FileNode, error)

	// ListChildren returns the immediate children of parentID (nil = root level)
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]models.FileNode, error)

	// NextSort returns a sort key placing a new node after all of parentID's children
	NextSort(ctx context.Context, ownerID string, parentID *string) (float64, error)
}
