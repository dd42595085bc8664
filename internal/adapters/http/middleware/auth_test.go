package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "ledgerhub-test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(cfg *AuthConfig) *gin.Engine {
	r := gin.New()
	r.Use(Auth(cfg))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetAuthUserID(c)})
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_ValidToken(t *testing.T) {
	r := authRouter(&AuthConfig{Secret: testSecret, Issuer: testIssuer})

	token, err := SignTestToken(testSecret, testIssuer, "user-42", time.Hour)
	require.NoError(t, err)

	w := doRequest(r, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
}

func TestAuth_MissingHeader(t *testing.T) {
	r := authRouter(&AuthConfig{Secret: testSecret})

	w := doRequest(r, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	r := authRouter(&AuthConfig{Secret: testSecret})

	for _, header := range []string{"Bearer", "Bearer ", "Basic abc", "token-without-scheme"} {
		w := doRequest(r, "/protected", header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuth_WrongSecret(t *testing.T) {
	r := authRouter(&AuthConfig{Secret: testSecret})

	token, err := SignTestToken("other-secret", "", "user-42", time.Hour)
	require.NoError(t, err)

	w := doRequest(r, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	r := authRouter(&AuthConfig{Secret: testSecret})

	token, err := SignTestToken(testSecret, "", "user-42", -time.Minute)
	require.NoError(t, err)

	w := doRequest(r, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongIssuer(t *testing.T) {
	r := authRouter(&AuthConfig{Secret: testSecret, Issuer: testIssuer})

	token, err := SignTestToken(testSecret, "someone-else", "user-42", time.Hour)
	require.NoError(t, err)

	w := doRequest(r, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_SkipPaths(t *testing.T) {
	r := authRouter(&AuthConfig{Secret: testSecret, SkipPaths: []string{"/health"}})

	w := doRequest(r, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAuthUserID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetAuthUserID(c))
}
