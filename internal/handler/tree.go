package handler

import (
	"log/slog"
	"net/http"

	svc "zote/internal/domain/services/filetree"
	"zote/internal/httputil"
)

// TreeHandler serves the navigator tree
type TreeHandler struct {
	treeService svc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService svc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the caller's nodes as an ordered tree plus the build report
// GET /api/v1/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tree, err := h.treeService.GetTree(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
