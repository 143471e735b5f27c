package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"newsdesk/internal/domain"
	"newsdesk/internal/domain/models"
	"newsdesk/internal/domain/models/publishing"
	"newsdesk/internal/testutil"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKID = "newsroom-test"

func newTestVerifier(t *testing.T) (*JWKSVerifier, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	b64 := base64.RawURLEncoding.EncodeToString
	jwks, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKID,
			"alg": "RS256",
			"use": "sig",
			"n":   b64(key.N.Bytes()),
			"e":   b64(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)

	kf, err := keyfunc.NewJWKSetJSON(jwks)
	require.NoError(t, err)

	return newVerifier(kf, testutil.NewTestLogger()), key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims *models.EditorClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(sub, role string, exp time.Time) *models.EditorClaims {
	return &models.EditorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	}
}

func TestVerifyToken(t *testing.T) {
	v, key := newTestVerifier(t)
	future := time.Now().Add(time.Hour)

	claims, err := v.VerifyToken(sign(t, key, claimsFor("user-9", "editor", future)))
	require.NoError(t, err)
	assert.Equal(t, publishing.Principal{UserID: "user-9", Role: publishing.RoleEditor}, Principal(claims))

	tests := []struct {
		name  string
		token string
	}{
		{"expired", sign(t, key, claimsFor("user-9", "editor", time.Now().Add(-time.Hour)))},
		{"missing subject", sign(t, key, claimsFor("", "editor", future))},
		{"unknown role", sign(t, key, claimsFor("user-9", "authenticated", future))},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestVerifyToken_WrongKey(t *testing.T) {
	v, _ := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	_, err = v.VerifyToken(sign(t, other, claimsFor("user-9", "admin", time.Now().Add(time.Hour))))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
