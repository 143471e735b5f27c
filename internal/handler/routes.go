package handler

import (
	"net/http"

	models "newsdesk/internal/domain/models/publishing"
)

// Handlers groups every HTTP handler the API mounts
type Handlers struct {
	Health     *HealthHandler
	Content    *ContentHandler
	Bulk       *BulkHandler
	Categories *CategoryHandler
	Active     *ActiveItemHandler
	Mirror     *MirrorHandler
}

// NewRouter registers all routes (Go 1.22+ method and wildcard patterns)
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", h.Health.HealthCheck)

	// Post routes
	mux.HandleFunc("GET /api/posts", h.Content.ListPosts)
	mux.HandleFunc("POST /api/posts", h.Content.CreatePost)
	mux.HandleFunc("GET /api/posts/slug/{slug}", h.Content.GetPostBySlug)
	mux.HandleFunc("GET /api/posts/{id}", h.Content.GetPost)
	mux.HandleFunc("PATCH /api/posts/{id}", h.Content.UpdatePost)
	mux.HandleFunc("DELETE /api/posts/{id}", h.Content.DeletePost)
	mux.HandleFunc("POST /api/posts/{id}/view", h.Content.RecordView)

	// Bulk routes
	mux.HandleFunc("POST /api/posts/bulk/status", h.Bulk.SetStatus)
	mux.HandleFunc("POST /api/posts/bulk/delete", h.Bulk.Delete)

	// Category routes
	mux.HandleFunc("GET /api/categories", h.Categories.ListCategories)
	mux.HandleFunc("POST /api/categories", h.Categories.CreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", h.Categories.GetCategory)
	mux.HandleFunc("PATCH /api/categories/{id}", h.Categories.UpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", h.Categories.DeleteCategory)

	// Active-flagged collections
	h.Active.Register(mux, models.ActiveKindBreakingNews)
	h.Active.Register(mux, models.ActiveKindLastNews)

	// Mirror maintenance
	if h.Mirror != nil {
		mux.HandleFunc("POST /api/admin/mirror/reconcile", h.Mirror.Reconcile)
		mux.HandleFunc("GET /api/admin/mirror/export", h.Mirror.Export)
	}

	return mux
}
