package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"newsdesk/internal/domain"
	"newsdesk/internal/domain/models"
	pub "newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/httputil"
	"newsdesk/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier map[string]*models.EditorClaims

func (f fakeVerifier) VerifyToken(token string) (*models.EditorClaims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, domain.ErrUnauthorized
}

func (fakeVerifier) Close() error { return nil }

func principalEcho(w http.ResponseWriter, r *http.Request) {
	p, ok := httputil.GetPrincipal(r)
	if !ok {
		httputil.RespondMessage(w, http.StatusOK, "anonymous")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, p)
}

func TestAuth(t *testing.T) {
	verifier := fakeVerifier{
		"good": {RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}, Role: "author"},
	}
	h := Auth(verifier, testutil.NewTestLogger())(http.HandlerFunc(principalEcho))

	tests := []struct {
		name   string
		method string
		header string
		status int
		body   string
	}{
		{"anonymous read", http.MethodGet, "", http.StatusOK, `"message":"anonymous"`},
		{"anonymous write passes through", http.MethodPost, "", http.StatusOK, `"message":"anonymous"`},
		{"valid token", http.MethodPost, "Bearer good", http.StatusOK, `"user_id":"u1"`},
		{"invalid token on read", http.MethodGet, "Bearer bad", http.StatusUnauthorized, `"invalid token"`},
		{"wrong scheme", http.MethodPost, "Basic good", http.StatusUnauthorized, `"invalid token"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.body)
		})
	}
}

func TestStaticPrincipal(t *testing.T) {
	h := StaticPrincipal(pub.Principal{UserID: "dev", Role: pub.RoleAdmin})(http.HandlerFunc(principalEcho))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/posts/1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"role":"admin"`)
}

func TestRecovery(t *testing.T) {
	h := Recovery(testutil.NewTestLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, rr.Body.String())
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(testutil.NewTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetRequestID(r)
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	inbound := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, inbound)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, inbound, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "<script>", seen)
}
