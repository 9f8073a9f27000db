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

func init() {
	gin.SetMode(gin.TestMode)
	SetJWTConfig(&JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 2 * time.Hour,
		Issuer:          "trendies-test",
	})
}

func TestGenerateTokenPair_RoundTrip(t *testing.T) {
	access, refresh, err := GenerateTokenPair(42, "a@example.com", "Amal")
	require.NoError(t, err)

	claims, err := ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "access", claims.Subject)

	_, err = ParseRefreshToken(access)
	assert.Error(t, err, "access token 不能用于刷新")

	rc, err := ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", rc.Email)
}

func TestParseToken_WrongSecret(t *testing.T) {
	access, err := GenerateAccessToken(1, "", "")
	require.NoError(t, err)

	old := GetJWTConfig()
	SetJWTConfig(&JWTConfig{SecretKey: "other", Issuer: old.Issuer, AccessTokenTTL: time.Hour})
	defer SetJWTConfig(old)

	_, err = ParseToken(access)
	assert.Error(t, err)
}

func TestJWTAuth(t *testing.T) {
	router := gin.New()
	router.GET("/me", JWTAuth(), func(c *gin.Context) {
		id, ok := IdentityFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "ctx_user_id": GetUserID(c)})
	})

	access, refresh, err := GenerateTokenPair(7, "u@example.com", "U")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"无认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + access, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"非法 token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"正常", "Bearer " + access, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestOptionalAuth_PassesThrough(t *testing.T) {
	router := gin.New()
	router.GET("/open", OptionalAuth(), func(c *gin.Context) {
		_, ok := ContextIdentityResolver{}.CurrentUser(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}
