package handler

import (
	"log/slog"
	"net/http"

	pubSvc "newsdesk/internal/domain/services/publishing"
	"newsdesk/internal/httputil"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService pubSvc.CategoryService
	logger          *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService pubSvc.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// ListCategories returns all categories
// GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, cats)
}

// CreateCategory creates a category
// POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireDesk(w, r); !ok {
		return
	}

	var req pubSvc.CategoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	cat, err := h.categoryService.CreateCategory(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, cat)
}

// GetCategory retrieves a category
// GET /api/categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	cat, err := h.categoryService.GetCategory(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, cat)
}

// UpdateCategory renames a category
// PATCH /api/categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireDesk(w, r); !ok {
		return
	}
	id, err := httputil.PathID(r, "id")
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	var req pubSvc.CategoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	cat, err := h.categoryService.UpdateCategory(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, cat)
}

// DeleteCategory deletes a category; 409 while posts reference it
// DELETE /api/categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireDesk(w, r); !ok {
		return
	}
	id, err := httputil.PathID(r, "id")
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondMessage(w, http.StatusOK, "category deleted")
}
