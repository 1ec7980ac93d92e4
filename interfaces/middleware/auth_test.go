package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postpilot/infrastructure/configuration"
	"postpilot/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth())
	router.GET("/whoami", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"user_id": ctx.GetString("user_id")})
	})
	return router
}

func issueToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	token, err := utils.GenerateToken(map[string]interface{}{
		"iss":       "42",
		"user_name": "tester",
		"exp":       time.Now().Add(expiresIn).Unix(),
	}, secret)
	require.NoError(t, err)
	return token
}

func TestAuthAcceptsValidToken(t *testing.T) {
	configuration.C.App.SecretKey = "test-secret"
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "test-secret", time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"42"`)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	configuration.C.App.SecretKey = "test-secret"
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	configuration.C.App.SecretKey = "test-secret"
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "test-secret", -time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Timing is everything")
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	configuration.C.App.SecretKey = "test-secret"
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "other-secret", time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
