package filetree

import (
	"fmt"
	"time"
)

// NodeKind distinguishes folders from pages. It is payload only: tree
// construction never branches on it.
type NodeKind int

const (
	NodeKindPage   NodeKind = 1
	NodeKindFolder NodeKind = 2
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindPage:
		return "page"
	case NodeKindFolder:
		return "folder"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kinds
func (k NodeKind) Valid() bool {
	return k == NodeKindPage || k == NodeKindFolder
}

// NodeMeta holds UI state owned by the navigator (expanded, selected, ...).
// The backend stores it verbatim and never interprets it.
type NodeMeta struct {
	IsOpen          *bool `json:"is_open,omitempty" yaml:"is_open,omitempty"`
	IsSelected      *bool `json:"is_selected,omitempty" yaml:"is_selected,omitempty"`
	IsIndeterminate *bool `json:"is_indeterminate,omitempty" yaml:"is_indeterminate,omitempty"`
	IsCreating      *bool `json:"is_creating,omitempty" yaml:"is_creating,omitempty"`
	IsRenaming      *bool `json:"is_renaming,omitempty" yaml:"is_renaming,omitempty"`
}

// Clone deep-copies the flags; nil stays nil
func (m *NodeMeta) Clone() *NodeMeta {
	if m == nil {
		return nil
	}
	return &NodeMeta{
		IsOpen:          cloneFlag(m.IsOpen),
		IsSelected:      cloneFlag(m.IsSelected),
		IsIndeterminate: cloneFlag(m.IsIndeterminate),
		IsCreating:      cloneFlag(m.IsCreating),
		IsRenaming:      cloneFlag(m.IsRenaming),
	}
}

func cloneFlag(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// FileNode is a flat navigator record pointing at its parent
type FileNode struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name      string    `json:"name" db:"name"`
	Kind      NodeKind  `json:"type" db:"kind"`
	Sort      float64   `json:"sort" db:"sort"`
	Icon      string    `json:"icon,omitempty" db:"icon"`
	Meta      *NodeMeta `json:"meta,omitempty" db:"meta"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Clone returns a copy that shares no pointers with n
func (n FileNode) Clone() FileNode {
	if n.ParentID != nil {
		parentID := *n.ParentID
		n.ParentID = &parentID
	}
	n.Meta = n.Meta.Clone()
	return n
}

// IsRoot reports whether the node declares no parent
func (n *FileNode) IsRoot() bool {
	return n.ParentID == nil
}
