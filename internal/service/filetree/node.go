package filetree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"zote/internal/config"
	"zote/internal/domain"
	models "zote/internal/domain/models/filetree"
	"zote/internal/domain/repositories"
	repo "zote/internal/domain/repositories/filetree"
	svc "zote/internal/domain/services/filetree"
)

var nodeNamePattern = regexp.MustCompile(`^[^/]+$`)

type nodeService struct {
	nodeRepo  repo.NodeRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewNodeService creates a new node service
func NewNodeService(
	nodeRepo repo.NodeRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) svc.NodeService {
	return &nodeService{
		nodeRepo:  nodeRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// CreateNode creates a folder or page under an optional parent.
// Without an explicit sort the node goes after its last sibling.
func (s *nodeService) CreateNode(ctx context.Context, req *svc.CreateNodeRequest) (*models.FileNode, error) {
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil {
		if _, err := s.nodeRepo.GetByID(ctx, req.OwnerID, *req.ParentID); err != nil {
			return nil, fmt.Errorf("invalid parent: %w", err)
		}
	}

	if err := s.checkSiblingName(ctx, req.OwnerID, req.ParentID, "", req.Name); err != nil {
		return nil, err
	}

	now := time.Now()
	node := &models.FileNode{
		ID:        uuid.NewString(),
		OwnerID:   req.OwnerID,
		ParentID:  req.ParentID,
		Name:      req.Name,
		Kind:      req.Kind,
		Icon:      req.Icon,
		Meta:      req.Meta,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.Sort != nil {
		node.Sort = *req.Sort
	} else {
		next, err := s.nodeRepo.NextSort(ctx, req.OwnerID, req.ParentID)
		if err != nil {
			return nil, err
		}
		node.Sort = next
	}

	if err := s.nodeRepo.Create(ctx, node); err != nil {
		return nil, err
	}

	s.logger.Info("node created",
		"id", node.ID,
		"name", node.Name,
		"type", node.Kind.String(),
		"parent_id", node.ParentID,
		"sort", node.Sort,
	)

	return node, nil
}

func (s *nodeService) GetNode(ctx context.Context, ownerID, id string) (*models.FileNode, error) {
	return s.nodeRepo.GetByID(ctx, ownerID, id)
}

func (s *nodeService) ListNodes(ctx context.Context, ownerID string) ([]models.FileNode, error) {
	return s.nodeRepo.ListByOwner(ctx, ownerID)
}

// UpdateNode renames, re-sorts, re-decorates or moves a node
func (s *nodeService) UpdateNode(ctx context.Context, ownerID, id string, req *svc.UpdateNodeRequest) (*models.FileNode, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}

	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	node, err := s.nodeRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		node.Name = *req.Name
	}
	if req.Sort != nil {
		node.Sort = *req.Sort
	}
	if req.Icon != nil {
		node.Icon = *req.Icon
	}
	if req.Meta != nil {
		node.Meta = req.Meta
	}

	// Tri-state: only move when parent_id was present in the request
	if req.ParentID.Present {
		if req.ParentID.Value != nil && *req.ParentID.Value != "" {
			newParentID := *req.ParentID.Value
			if err := s.validateNoCircularReference(ctx, ownerID, id, newParentID); err != nil {
				return nil, err
			}
			node.ParentID = &newParentID
			s.logger.Debug("moving node", "id", id, "new_parent_id", newParentID)
		} else {
			node.ParentID = nil
			s.logger.Debug("moving node to root", "id", id)
		}
	}

	if req.Name != nil || req.ParentID.Present {
		if err := s.checkSiblingName(ctx, ownerID, node.ParentID, node.ID, node.Name); err != nil {
			return nil, err
		}
	}

	node.UpdatedAt = time.Now()

	if err := s.nodeRepo.Update(ctx, node); err != nil {
		return nil, err
	}

	s.logger.Info("node updated",
		"id", node.ID,
		"name", node.Name,
		"parent_id", node.ParentID,
		"sort", node.Sort,
	)

	return node, nil
}

// DeleteNode deletes a node and its whole subtree in one transaction,
// children first
func (s *nodeService) DeleteNode(ctx context.Context, ownerID, id string) error {
	var deleted int

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		nodes, err := s.nodeRepo.ListByOwner(txCtx, ownerID)
		if err != nil {
			return err
		}

		subtree := findSubtree(BuildTree(nodes).Nodes, id)
		if subtree == nil {
			return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}

		order := postOrder(subtree)
		for _, n := range order {
			if err := s.nodeRepo.Delete(txCtx, ownerID, n.ID); err != nil {
				return fmt.Errorf("delete node %q: %w", n.Name, err)
			}
		}
		deleted = len(order)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("node deleted",
		"id", id,
		"owner_id", ownerID,
		"deleted_count", deleted,
	)

	return nil
}

// checkSiblingName rejects a name already used by another child of parentID
func (s *nodeService) checkSiblingName(ctx context.Context, ownerID string, parentID *string, selfID, name string) error {
	siblings, err := s.nodeRepo.ListChildren(ctx, ownerID, parentID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != selfID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a node named %q already exists in this location", name),
				ResourceType: "node",
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

// validateNoCircularReference walks up from newParentID and fails if it
// reaches nodeID. The walk is bounded by the number of stored nodes so that
// a corrupted chain cannot loop forever.
func (s *nodeService) validateNoCircularReference(ctx context.Context, ownerID, nodeID, newParentID string) error {
	if nodeID == newParentID {
		return fmt.Errorf("%w: cannot move node to be its own parent", domain.ErrValidation)
	}

	nodes, err := s.nodeRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	parents := make(map[string]*string, len(nodes))
	for i := range nodes {
		parents[nodes[i].ID] = nodes[i].ParentID
	}

	if _, ok := parents[newParentID]; !ok {
		return fmt.Errorf("parent node %s: %w", newParentID, domain.ErrNotFound)
	}

	current := newParentID
	for steps := 0; steps <= len(nodes); steps++ {
		parentID, ok := parents[current]
		if !ok || parentID == nil {
			return nil
		}
		if *parentID == nodeID {
			return fmt.Errorf("%w: cannot move node under its own descendant", domain.ErrValidation)
		}
		current = *parentID
	}

	return errors.New("parent chain does not terminate")
}

func (s *nodeService) validateCreateRequest(req *svc.CreateNodeRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.OwnerID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxNodeNameLength),
			validation.Match(nodeNamePattern).Error("node name cannot contain slashes"),
		),
		validation.Field(&req.Kind, validation.By(validKind)),
		validation.Field(&req.Sort, validation.By(finiteSort)),
		validation.Field(&req.Icon, validation.RuneLength(0, config.MaxIconLength)),
	)
}

func (s *nodeService) validateUpdateRequest(req *svc.UpdateNodeRequest) error {
	if req.Name == nil && !req.ParentID.Present && req.Sort == nil && req.Icon == nil && req.Meta == nil {
		return errors.New("at least one field must be provided")
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.RuneLength(1, config.MaxNodeNameLength),
			validation.Match(nodeNamePattern).Error("node name cannot contain slashes"),
		),
		validation.Field(&req.Sort, validation.By(finiteSort)),
		validation.Field(&req.Icon, validation.RuneLength(0, config.MaxIconLength)),
	)
}

func validKind(value interface{}) error {
	kind, _ := value.(models.NodeKind)
	if !kind.Valid() {
		return errors.New("must be 1 (page) or 2 (folder)")
	}
	return nil
}

func finiteSort(value interface{}) error {
	sort, ok := value.(*float64)
	if !ok || sort == nil {
		return nil
	}
	if math.IsNaN(*sort) || math.IsInf(*sort, 0) {
		return errors.New("must be a finite number")
	}
	return nil
}

// findSubtree returns the node with the given id, searching breadth first
func findSubtree(roots []*models.TreeNode, id string) *models.TreeNode {
	queue := append([]*models.TreeNode(nil), roots...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.ID == id {
			return n
		}
		queue = append(queue, n.Children...)
	}
	return nil
}

// postOrder lists a subtree with every child before its parent
func postOrder(root *models.TreeNode) []*models.TreeNode {
	var out []*models.TreeNode
	stack := []*models.TreeNode{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		stack = append(stack, n.Children...)
	}
	// Reversed pre-order puts children before parents
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
