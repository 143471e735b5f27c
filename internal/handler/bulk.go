package handler

import (
	"log/slog"
	"net/http"

	pubSvc "newsdesk/internal/domain/services/publishing"
	"newsdesk/internal/httputil"
)

// BulkHandler handles bulk post operations
type BulkHandler struct {
	bulkService pubSvc.BulkService
	logger      *slog.Logger
}

// NewBulkHandler creates a new bulk handler
func NewBulkHandler(bulkService pubSvc.BulkService, logger *slog.Logger) *BulkHandler {
	return &BulkHandler{
		bulkService: bulkService,
		logger:      logger,
	}
}

// SetStatus publishes or drafts many posts
// POST /api/posts/bulk/status
func (h *BulkHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req pubSvc.BulkStatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	req.Principal = principal

	res, err := h.bulkService.BulkSetStatus(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, res)
}

// Delete deletes many posts
// POST /api/posts/bulk/delete
func (h *BulkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req pubSvc.BulkDeleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	req.Principal = principal

	res, err := h.bulkService.BulkDelete(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, res)
}
