// Package middleware - bearer token authentication.
//
// The service trusts an upstream identity provider: requests carry an HS256
// JWT whose subject is the opaque caller id. The ledger never stores users;
// ownership checks compare this id against the wallet's user_id.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Haleralex/ledgerhub/internal/pkg/logger"
)

// AuthUserIDKey keys the authenticated caller id in the gin context.
const AuthUserIDKey = "auth_user_id"

// AuthConfig configures the auth middleware.
type AuthConfig struct {
	// Secret is the HS256 signing key shared with the identity provider.
	Secret string
	// Issuer, when non-empty, must match the token's iss claim.
	Issuer string
	// SkipPaths bypass authentication entirely.
	SkipPaths []string
}

// Auth verifies the bearer token and stores the caller id in both the gin
// context and the request context.
func Auth(config *AuthConfig) gin.HandlerFunc {
	skipMap := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipMap[path] = true
	}

	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Secret), nil
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(config.Issuer))
	}
	parser := jwt.NewParser(parserOpts...)

	return func(c *gin.Context) {
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithUnauthorized(c, "authorization header is required")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abortWithUnauthorized(c, "invalid authorization header format")
			return
		}

		token, err := parser.Parse(parts[1], keyFunc)
		if err != nil || !token.Valid {
			abortWithUnauthorized(c, "invalid or expired token")
			return
		}
		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			abortWithUnauthorized(c, "token has no subject")
			return
		}

		c.Set(AuthUserIDKey, subject)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), subject))
		c.Next()
	}
}

func abortWithUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
		"request_id": GetRequestID(c),
		"timestamp":  time.Now().UTC(),
	})
}

// GetAuthUserID reads the authenticated caller id, or "".
func GetAuthUserID(c *gin.Context) string {
	if id, exists := c.Get(AuthUserIDKey); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// SignTestToken mints a token for development and tests.
func SignTestToken(secret, issuer, userID string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
