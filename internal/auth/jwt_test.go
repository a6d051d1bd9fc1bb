package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorgio/shortlink-be/internal/models"
)

const testSecret = "unit-test-secret"

func TestManager_GenerateValidate(t *testing.T) {
	m := NewManager(testSecret)
	user := models.User{ID: "u-1", Username: "alice"}

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestManager_Validate_Rejects(t *testing.T) {
	m := NewManager(testSecret)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not-a-token")
		require.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewManager("other-secret").Generate(models.User{ID: "u-1"})
		require.NoError(t, err)
		_, err = m.Validate(token)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			UserID: "u-1",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		tokenStr, err := expired.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.Validate(tokenStr)
		require.Error(t, err)
	})

	t.Run("wrong signing method", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"})
		tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Validate(tokenStr)
		require.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	m := NewManager(testSecret)
	valid, err := m.Generate(models.User{ID: "u-1", Username: "alice"})
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "not a bearer header", header: "Basic abc", expectedStatus: http.StatusUnauthorized},
		{name: "malformed token", header: "Bearer nope", expectedStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + valid, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/urls", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rr := httptest.NewRecorder()
			handler := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := ClaimsFromContext(r.Context())
				require.True(t, ok, "claims must reach the handler")
				assert.Equal(t, "u-1", claims.UserID)
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
