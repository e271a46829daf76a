package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msetiadi/leadintel/internal/middleware"
)

var secret = []byte("unit-test-secret")

func protected(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seenUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = middleware.GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return middleware.BearerAuth(secret)(next), &seenUser
}

func sign(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestBearerAuth_ValidToken(t *testing.T) {
	handler, seenUser := protected(t)

	token := sign(t, jwt.MapClaims{"sub": "user-42", "exp": time.Now().Add(time.Hour).Unix()}, secret)
	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", *seenUser)
}

func TestBearerAuth_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "missing header", token: ""},
		{name: "garbage token", token: "definitely-not-a-jwt"},
		{name: "wrong key", token: sign(t, jwt.MapClaims{"sub": "user-42", "exp": time.Now().Add(time.Hour).Unix()}, []byte("other-secret"))},
		{name: "expired token", token: sign(t, jwt.MapClaims{"sub": "user-42", "exp": time.Now().Add(-time.Hour).Unix()}, secret)},
		{name: "no subject", token: sign(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, secret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := protected(t)
			req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
