package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/projects", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt("user_id"),
			"role_id": c.GetInt("role_id"),
		})
	})
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func signToken(t *testing.T, userID, roleID int, exp time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(SigningKey())
	require.NoError(t, err)
	return s
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r := newAuthRouter()
	token := signToken(t, 7, 30, time.Now().Add(15*time.Minute))

	w := doRequest(r, http.MethodGet, "/projects", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
	assert.Contains(t, w.Body.String(), `"role_id":30`)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	r := newAuthRouter()

	w := doRequest(r, http.MethodGet, "/projects", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareExpiryLeeway(t *testing.T) {
	r := newAuthRouter()

	// just expired, inside the leeway window
	w := doRequest(r, http.MethodGet, "/projects", signToken(t, 7, 30, time.Now().Add(-time.Minute)))
	assert.Equal(t, http.StatusOK, w.Code)

	// expired beyond the leeway
	w = doRequest(r, http.MethodGet, "/projects", signToken(t, 7, 30, time.Now().Add(-5*time.Minute)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRequiresExpiry(t *testing.T) {
	r := newAuthRouter()

	claims := &Claims{UserID: 7, RoleID: 30}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(SigningKey())
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/projects", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsUnsignedAlgorithm(t *testing.T) {
	r := newAuthRouter()

	claims := &Claims{
		UserID: 7, RoleID: 30,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/projects", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareSkipsPublicPaths(t *testing.T) {
	r := newAuthRouter()

	w := doRequest(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIsPublicPath(t *testing.T) {
	assert.True(t, isPublicPath("/login"))
	assert.True(t, isPublicPath("/password/forgot"))
	assert.True(t, isPublicPath("/swagger/index.html"))
	assert.True(t, isPublicPath("/healthz"))
	assert.False(t, isPublicPath("/projects"))
	assert.False(t, isPublicPath("/reviews"))
}
