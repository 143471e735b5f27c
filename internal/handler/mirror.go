package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	models "newsdesk/internal/domain/models/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"
	"newsdesk/internal/httputil"
)

// MirrorExporter streams a zip archive of the file mirror
type MirrorExporter interface {
	Export(ctx context.Context, w io.Writer) error
}

// MirrorHandler exposes mirror maintenance to admins
type MirrorHandler struct {
	reconciler pubSvc.MirrorReconciler
	exporter   MirrorExporter
	logger     *slog.Logger
}

// NewMirrorHandler creates a new mirror handler
func NewMirrorHandler(reconciler pubSvc.MirrorReconciler, exporter MirrorExporter, logger *slog.Logger) *MirrorHandler {
	return &MirrorHandler{
		reconciler: reconciler,
		exporter:   exporter,
		logger:     logger,
	}
}

// Reconcile runs one reconcile pass and reports what it repaired
// POST /api/admin/mirror/reconcile
func (h *MirrorHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	report, err := h.reconciler.Reconcile(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, report)
}

// Export streams the mirror as a zip archive
// GET /api/admin/mirror/export
func (h *MirrorHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	name := fmt.Sprintf("mirror-%s.zip", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	// Headers are already sent once the archive starts streaming
	if err := h.exporter.Export(r.Context(), w); err != nil {
		h.logger.Error("mirror export failed", "error", err, "request_id", httputil.GetRequestID(r))
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return false
	}
	if p.Role != models.RoleAdmin {
		httputil.RespondError(w, http.StatusForbidden, "admin role required")
		return false
	}
	return true
}
