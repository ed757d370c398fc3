package filetree

import (
	"context"

	models "zote/internal/domain/models/filetree"
)

// NodeService handles node business logic
type NodeService interface {
	CreateNode(ctx context.Context, req *CreateNodeRequest) (*models.FileNode, error)

	GetNode(ctx context.Context, ownerID, id string) (*models.FileNode, error)

	// ListNodes returns the owner's nodes as a flat list
	ListNodes(ctx context.Context, ownerID string) ([]models.FileNode, error)

	// UpdateNode renames, re-sorts or moves a node
	UpdateNode(ctx context.Context, ownerID, id string, req *UpdateNodeRequest) (*models.FileNode, error)

	// DeleteNode deletes a node and all of its descendants
	DeleteNode(ctx context.Context, ownerID, id string) error
}

// CreateNodeRequest represents a node creation request
type CreateNodeRequest struct {
	OwnerID  string           `json:"-"`
	ParentID *string          `json:"parent_id,omitempty"` // null for root
	Name     string           `json:"name"`
	Kind     models.NodeKind  `json:"type"`
	Sort     *float64         `json:"sort,omitempty"` // nil = after last sibling
	Icon     string           `json:"icon,omitempty"`
	Meta     *models.NodeMeta `json:"meta,omitempty"`
}

// UpdateNodeRequest represents a node update request.
// The handler maps the PATCH body onto it.
type UpdateNodeRequest struct {
	Name     *string
	ParentID OptionalParentID
	Sort     *float64
	Icon     *string
	Meta     *models.NodeMeta
}

// OptionalParentID tracks tri-state semantics for moves (RFC 7396 PATCH).
// Transport-agnostic; the handler maps from httputil.OptionalString.
//   - Present=false: keep the current parent
//   - Present=true, Value=nil or &"": move to root
//   - Present=true, Value=&"id": move under id
type OptionalParentID struct {
	Present bool
	Value   *string
}
