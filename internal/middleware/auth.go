package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var signingKey = []byte("dev-only-secret")

// SetSigningKey installs the HMAC key from config; call once at startup.
func SetSigningKey(secret string) {
	if strings.TrimSpace(secret) != "" {
		signingKey = []byte(secret)
	}
}

func SigningKey() []byte { return signingKey }

// Claims is the access-token payload: who the caller is and which role the
// authorization checks run against.
type Claims struct {
	UserID int `json:"user_id"`
	RoleID int `json:"role_id"`
	jwt.RegisteredClaims
}

// Reachable without a token: the auth flow itself plus docs and the health
// probe.
var publicExact = map[string]struct{}{
	"/login":           {},
	"/refresh":         {},
	"/register":        {},
	"/password/forgot": {},
	"/password/reset":  {},
}

var publicPrefixes = []string{"/swagger", "/healthz"}

func isPublicPath(path string) bool {
	if _, ok := publicExact[path]; ok {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bearerToken extracts the token from the Authorization header; empty when
// the header is missing or not a Bearer scheme.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

const expiryLeeway = 2 * time.Minute

// AuthMiddleware validates the bearer token and puts the caller's identity
// into the request context. Only HS256 tokens with an expiry are accepted;
// the parser applies a small clock leeway.
func AuthMiddleware() gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(expiryLeeway),
		jwt.WithExpirationRequired(),
	)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims := &Claims{}
		token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
			return signingKey, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role_id", claims.RoleID)
		c.Next()
	}
}
