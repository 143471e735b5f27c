package handler

import (
	"log/slog"
	"net/http"

	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"
	"newsdesk/internal/httputil"
)

// ContentHandler handles post HTTP requests
type ContentHandler struct {
	contentService pubSvc.ContentService
	logger         *slog.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService pubSvc.ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		logger:         logger,
	}
}

// CreatePost creates a new post
// POST /api/posts
func (h *ContentHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req pubSvc.CreateContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	req.Principal = principal

	rec, err := h.contentService.CreateContent(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, rec)
}

// GetPost retrieves a post by ID
// GET /api/posts/{id}
func (h *ContentHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	rec, err := h.contentService.GetContent(r.Context(), id)
	if err == nil {
		err = hideDraft(r, rec)
	}
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, rec)
}

// GetPostBySlug retrieves a post by slug
// GET /api/posts/slug/{slug}
func (h *ContentHandler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	rec, err := h.contentService.GetContentBySlug(r.Context(), r.PathValue("slug"))
	if err == nil {
		err = hideDraft(r, rec)
	}
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, rec)
}

// ListPosts lists posts. Anonymous callers only see published posts.
// GET /api/posts?category_id=&published=&featured=&tag=&q=&limit=&offset=
func (h *ContentHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseContentFilter(r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if _, ok := httputil.GetPrincipal(r); !ok {
		published := true
		filter.IsPublished = &published
	}

	page, err := h.contentService.ListContent(r.Context(), filter)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// UpdatePost applies a partial update
// PATCH /api/posts/{id}
func (h *ContentHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, err := httputil.PathID(r, "id")
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	var req pubSvc.UpdateContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	req.Principal = principal

	rec, err := h.contentService.UpdateContent(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, rec)
}

// DeletePost deletes a post
// DELETE /api/posts/{id}
func (h *ContentHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}
	id, err := httputil.PathID(r, "id")
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if err := h.contentService.DeleteContent(r.Context(), id); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "post deleted")
}

// RecordView increments the view counter. Public, but anonymous callers
// cannot count views on drafts.
// POST /api/posts/{id}/view
func (h *ContentHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if _, ok := httputil.GetPrincipal(r); !ok {
		rec, err := h.contentService.GetContent(r.Context(), id)
		if err == nil {
			err = hideDraft(r, rec)
		}
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}
	}

	views, err := h.contentService.RecordView(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"views": views})
}

// hideDraft reports a draft as missing to anonymous callers
func hideDraft(r *http.Request, rec *models.ContentRecord) error {
	if rec.IsPublished {
		return nil
	}
	if _, ok := httputil.GetPrincipal(r); ok {
		return nil
	}
	return domain.NewNotFound("post", rec.ID)
}

func parseContentFilter(r *http.Request) (*models.ContentFilter, error) {
	var (
		filter models.ContentFilter
		err    error
	)
	if filter.CategoryID, err = httputil.QueryInt64(r, "category_id"); err != nil {
		return nil, err
	}
	if filter.IsPublished, err = httputil.QueryBool(r, "published"); err != nil {
		return nil, err
	}
	if filter.IsFeatured, err = httputil.QueryBool(r, "featured"); err != nil {
		return nil, err
	}
	if filter.Limit, err = httputil.QueryInt(r, "limit", models.DefaultListLimit); err != nil {
		return nil, err
	}
	if filter.Offset, err = httputil.QueryInt(r, "offset", 0); err != nil {
		return nil, err
	}
	q := r.URL.Query()
	filter.Tag = q.Get("tag")
	filter.Query = q.Get("q")
	return &filter, nil
}
