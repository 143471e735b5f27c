package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"newsdesk/internal/domain"
	models "newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Unmapped errors are
// logged and reported as a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var conflictErr *domain.ConflictError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", httputil.GetRequestID(r),
			"error", err,
		)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requirePrincipal returns the caller, or writes 401 when the request is anonymous
func requirePrincipal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return models.Principal{}, false
	}
	return p, true
}

// requireDesk allows only roles that run the news desk (editors and admins)
func requireDesk(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return p, false
	}
	if !p.Role.CanPublish() {
		httputil.RespondError(w, http.StatusForbidden, "editor or admin role required")
		return p, false
	}
	return p, true
}
