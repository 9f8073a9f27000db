package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"trendies_market_v1/internal/controller"
	"trendies_market_v1/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter() *gin.Engine {
	return SetupRouter(zap.NewNop(), Controllers{
		Auth:    controller.NewAuthController(nil, nil),
		User:    controller.NewUserController(nil),
		Listing: controller.NewListingController(nil),
		Wizard:  controller.NewWizardController(nil, nil),
	})
}

func TestSetupRouter_Healthz(t *testing.T) {
	r := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestSetupRouter_WizardRequiresLogin(t *testing.T) {
	r := setupTestRouter()

	for _, path := range []string{"/api/wizard", "/api/wizard/next", "/api/wizard/submit"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestSetupRouter_PriceBreakdownIsPublic(t *testing.T) {
	r := setupTestRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/listings/price-breakdown?price=100", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
