package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corray333/food-delivery/internal/service/models/role"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	return signed
}

func runMiddleware(token string) (*httptest.ResponseRecorder, role.Actor, bool) {
	var gotActor role.Actor
	var gotOK bool

	handler := NewAuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, gotOK = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec, gotActor, gotOK
}

func TestAuthMiddlewareStoresActor(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": float64(42), "role": "customer"})

	rec, actor, ok := runMiddleware("Bearer " + token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, int64(42), actor.UserID)
	assert.Equal(t, role.RoleCustomer, actor.Role)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	rec, _, ok := runMiddleware("")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	rec, _, _ := runMiddleware("Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsBadSignature(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": float64(1), "role": "admin"})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	rec, _, _ := runMiddleware("Bearer " + signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsUnknownRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": float64(1), "role": "superuser"})

	rec, _, _ := runMiddleware("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
