package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	validTokens map[string]uuid.UUID
}

func (v *testTokenValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	userID, ok := v.validTokens[tokenString]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return testClaims(userID), nil
}

type testClaims uuid.UUID

func (c testClaims) GetUserID() uuid.UUID { return uuid.UUID(c) }

// echoUser writes the user ID from the context, or "guest".
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserID(r)
	if err != nil {
		_, _ = w.Write([]byte("guest"))
		return
	}
	_, _ = w.Write([]byte(userID.String()))
})

func TestAuthMiddlewares(t *testing.T) {
	userID := uuid.New()
	validator := &testTokenValidator{validTokens: map[string]uuid.UUID{"good": userID}}

	tests := []struct {
		name         string
		header       string
		wantRequired int
		wantOptional int
		wantBody     string // body for the optional middleware
	}{
		{"valid token", "Bearer good", http.StatusOK, http.StatusOK, userID.String()},
		{"lowercase scheme", "bearer good", http.StatusOK, http.StatusOK, userID.String()},
		{"missing header", "", http.StatusUnauthorized, http.StatusOK, "guest"},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, http.StatusUnauthorized, ""},
		{"no token", "Bearer", http.StatusUnauthorized, http.StatusUnauthorized, ""},
		{"extra parts", "Bearer good extra", http.StatusUnauthorized, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/resumes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			AuthMiddleware(validator)(echoUser).ServeHTTP(w, req)
			assert.Equal(t, tt.wantRequired, w.Code)

			w = httptest.NewRecorder()
			OptionalAuth(validator)(echoUser).ServeHTTP(w, req)
			assert.Equal(t, tt.wantOptional, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := GetUserID(req)
	assert.Error(t, err)

	req = req.WithContext(WithUserID(req.Context(), userID))
	got, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	req = req.WithContext(context.WithValue(context.Background(), userIDKey, "not-a-uuid"))
	_, err = GetUserID(req)
	assert.Error(t, err)
}
