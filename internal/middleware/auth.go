package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"newsdesk/internal/auth"
	models "newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/httputil"
)

// Auth verifies bearer tokens and stores the principal in the request context.
// Requests without a token pass through anonymously; handlers that mutate
// state require a principal. A token that is present but invalid is rejected.
func Auth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, present := bearerToken(r)
			if !present {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected",
					"path", r.URL.Path,
					"request_id", httputil.GetRequestID(r),
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithPrincipal(r, auth.Principal(claims)))
		})
	}
}

// StaticPrincipal runs every request as p. Only wired when auth is disabled
// outside production.
func StaticPrincipal(p models.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, httputil.WithPrincipal(r, p))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}
