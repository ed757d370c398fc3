package handler

import (
	"log/slog"
	"net/http"

	models "zote/internal/domain/models/filetree"
	svc "zote/internal/domain/services/filetree"
	"zote/internal/httputil"
)

// updateNodeBody is the PATCH /api/v1/nodes/{id} payload
type updateNodeBody struct {
	Name     *string                 `json:"name"`
	ParentID httputil.OptionalString `json:"parent_id"` // absent = keep, null = root
	Sort     *float64                `json:"sort"`
	Icon     *string                 `json:"icon"`
	Meta     *models.NodeMeta        `json:"meta"`
}

func (b *updateNodeBody) toRequest() *svc.UpdateNodeRequest {
	return &svc.UpdateNodeRequest{
		Name: b.Name,
		ParentID: svc.OptionalParentID{
			Present: b.ParentID.Present,
			Value:   b.ParentID.Value,
		},
		Sort: b.Sort,
		Icon: b.Icon,
		Meta: b.Meta,
	}
}

// NodeHandler handles node HTTP requests
type NodeHandler struct {
	nodeService svc.NodeService
	logger      *slog.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(nodeService svc.NodeService, logger *slog.Logger) *NodeHandler {
	return &NodeHandler{
		nodeService: nodeService,
		logger:      logger,
	}
}

// ListNodes returns the caller's nodes as a flat list
// GET /api/v1/nodes
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	nodes, err := h.nodeService.ListNodes(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, nodes)
}

// CreateNode creates a folder or page
// POST /api/v1/nodes
// Returns 201 if created, 409 with the existing node on a sibling name clash
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req svc.CreateNodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.OwnerID = userID

	node, err := h.nodeService.CreateNode(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, h.logger, err, func(id string) (*models.FileNode, error) {
			return h.nodeService.GetNode(r.Context(), userID, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, node)
}

// GetNode returns a single node
// GET /api/v1/nodes/{id}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	node, err := h.nodeService.GetNode(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// UpdateNode renames, re-sorts or moves a node
// PATCH /api/v1/nodes/{id}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body updateNodeBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := h.nodeService.UpdateNode(r.Context(), userID, r.PathValue("id"), body.toRequest())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// DeleteNode deletes a node and everything under it
// DELETE /api/v1/nodes/{id}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.nodeService.DeleteNode(r.Context(), userID, r.PathValue("id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
