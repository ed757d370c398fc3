package handler

import "net/http"

// Register mounts every route on mux (Go 1.22+ method patterns)
func Register(mux *http.ServeMux, trees *TreeHandler, nodes *NodeHandler) {
	mux.HandleFunc("GET /health", HealthCheck)

	mux.HandleFunc("GET /api/v1/tree", trees.GetTree)

	mux.HandleFunc("GET /api/v1/nodes", nodes.ListNodes)
	mux.HandleFunc("POST /api/v1/nodes", nodes.CreateNode)
	mux.HandleFunc("GET /api/v1/nodes/{id}", nodes.GetNode)
	mux.HandleFunc("PATCH /api/v1/nodes/{id}", nodes.UpdateNode)
	mux.HandleFunc("DELETE /api/v1/nodes/{id}", nodes.DeleteNode)
}
