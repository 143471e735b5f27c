package handler

import (
	"context"
	"log/slog"
	"net/http"

	models "newsdesk/internal/domain/models/publishing"
	pubSvc "newsdesk/internal/domain/services/publishing"
	"newsdesk/internal/httputil"
)

// ActiveItemHandler serves the breaking-news style collections. One handler
// serves every kind; Register binds the routes of one kind.
type ActiveItemHandler struct {
	itemService pubSvc.ActiveItemService
	logger      *slog.Logger
}

// NewActiveItemHandler creates a new active item handler
func NewActiveItemHandler(itemService pubSvc.ActiveItemService, logger *slog.Logger) *ActiveItemHandler {
	return &ActiveItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// Register mounts the routes of kind under /api/<kind>
func (h *ActiveItemHandler) Register(mux *http.ServeMux, kind models.ActiveKind) {
	base := "/api/" + string(kind)

	mux.HandleFunc("GET "+base, h.list(kind))
	mux.HandleFunc("POST "+base, h.create(kind))
	mux.HandleFunc("GET "+base+"/current", h.current(kind)) // Must come before {id} route
	mux.HandleFunc("GET "+base+"/{id}", h.get(kind))
	mux.HandleFunc("PATCH "+base+"/{id}", h.update(kind))
	mux.HandleFunc("DELETE "+base+"/{id}", h.delete(kind))
	mux.HandleFunc("POST "+base+"/{id}/activate", h.transition(kind, h.itemService.Activate))
	mux.HandleFunc("POST "+base+"/{id}/deactivate", h.transition(kind, h.itemService.Deactivate))
	mux.HandleFunc("POST "+base+"/{id}/toggle", h.transition(kind, h.itemService.Toggle))
}

func (h *ActiveItemHandler) list(kind models.ActiveKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.itemService.ListItems(r.Context(), kind)
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, items)
	}
}

func (h *ActiveItemHandler) current(kind models.ActiveKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.itemService.Current(r.Context(), kind)
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, items)
	}
}

func (h *ActiveItemHandler) create(kind models.ActiveKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireDesk(w, r); !ok {
			return
		}

		var req pubSvc.ActiveItemRequest
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			handleError(w, r, h.logger, err)
			return
		}

		item, err := h.itemService.CreateItem(r.Context(), kind, &req)
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}
		httputil.RespondJSON(w, http.StatusCreated, item)
	}
}

func (h *ActiveItemHandler) get(kind models.ActiveKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.PathID(r, "id")
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}

		item, err := h.itemService.GetItem(r.Context(), kind, id)
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, item)
	}
}

func (h *ActiveItemHandler) update(kind models.ActiveKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireDesk(w, r); !ok {
			return
		}
		id, err := httputil.PathID(r, "id")
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}

		var req pubSvc.UpdateActiveItemRequest
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			handleError(w, r, h.logger, err)
			return
		}

		item, err := h.itemService.UpdateItem(r.Context(), kind, id, &req)
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, item)
	}
}

func (h *ActiveItemHandler) delete(kind models.ActiveKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireDesk(w, r); !ok {
			return
		}
		id, err := httputil.PathID(r, "id")
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}

		if err := h.itemService.DeleteItem(r.Context(), kind, id); err != nil {
			handleError(w, r, h.logger, err)
			return
		}
		httputil.RespondMessage(w, http.StatusOK, "item deleted")
	}
}

type transitionFn func(ctx context.Context, kind models.ActiveKind, id int64) (*models.ActiveItem, error)

// transition serves activate, deactivate and toggle
func (h *ActiveItemHandler) transition(kind models.ActiveKind, fn transitionFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireDesk(w, r); !ok {
			return
		}
		id, err := httputil.PathID(r, "id")
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}

		item, err := fn(r.Context(), kind, id)
		if err != nil {
			handleError(w, r, h.logger, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, item)
	}
}
