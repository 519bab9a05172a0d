package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battled-crew/battled-system/models"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, userID int, role models.UserRole) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func protectedEndpoint(cap models.Capability) http.Handler {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler = RequireCapability(cap)(handler)
	return Authenticate(testSecret)(handler)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/battles/1/start", nil)

	protectedEndpoint(models.CapStartBattle).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsBadSignature(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1, "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/battles/1/start", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	protectedEndpoint(models.CapStartBattle).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireCapabilityAllowsRoleWithCapability(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/battles/1/start", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 1, models.RoleMC))

	protectedEndpoint(models.CapStartBattle).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireCapabilityForbidsRoleWithoutCapability(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/battles/1/result", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 1, models.RoleMC))

	protectedEndpoint(models.CapEncodeResult).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClaimsFromContextRoundTrip(t *testing.T) {
	var got *Claims
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		got = claims
	})
	handler = Authenticate(testSecret)(handler)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, models.RoleJudge))
	handler.ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.Equal(t, 42, got.UserID)
	assert.Equal(t, models.RoleJudge, got.Role)
}
