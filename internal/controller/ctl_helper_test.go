package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/model"
	"trendies_market_v1/internal/repository"
	"trendies_market_v1/internal/service"
	"trendies_market_v1/internal/wizard"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       "controller-test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 2 * time.Hour,
		Issuer:          "trendies-test",
	})
}

// ==================== 测试替身 ====================

type fakeSuggester struct {
	mu    sync.Mutex
	price float64
	err   error
	calls int
}

func (f *fakeSuggester) Suggest(_ context.Context, _ int64, _ service.PriceItem) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.price, f.err
}

// ==================== 测试辅助 ====================

type testEnv struct {
	router   *gin.Engine
	db       *gorm.DB
	prices   *fakeSuggester
	sessions *wizard.SessionStore
}

func setupCtlTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Listing{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// setupCtlRouter 与生产路由同样的中间件组合
func setupCtlRouter(t *testing.T) *testEnv {
	db := setupCtlTestDB(t)
	prices := &fakeSuggester{price: 450}

	listingSvc := service.NewListingService(service.ListingServiceDeps{
		Store:  repository.NewListingRepository(db),
		Prices: prices,
		Logger: zap.NewNop(),
	})
	sessions := wizard.NewSessionStore(listingSvc.Schema(), listingSvc, time.Minute)

	listingCtl := NewListingController(listingSvc)
	wizardCtl := NewWizardController(sessions, zap.NewNop())

	r := gin.New()
	r.Use(gin.Recovery())
	api := r.Group("/api")

	listings := api.Group("/listings", middleware.OptionalAuth())
	{
		listings.POST("", listingCtl.CreateListing)
		listings.GET("/mine", listingCtl.ListMyListings)
		listings.POST("/suggest-price", listingCtl.SuggestPrice)
		listings.GET("/price-breakdown", listingCtl.PriceBreakdown)
	}

	wz := api.Group("/wizard", middleware.JWTAuth())
	{
		wz.POST("", wizardCtl.Start)
		wz.GET("", wizardCtl.Get)
		wz.DELETE("", wizardCtl.Discard)
		wz.PATCH("/fields", wizardCtl.SetFields)
		wz.PUT("/photos/:slot", wizardCtl.UploadPhoto)
		wz.DELETE("/photos/:slot", wizardCtl.ClearPhoto)
		wz.POST("/next", wizardCtl.Next)
		wz.POST("/back", wizardCtl.Back)
		wz.POST("/suggest-price", wizardCtl.SuggestPrice)
		wz.POST("/submit", wizardCtl.Submit)
	}

	return &testEnv{router: r, db: db, prices: prices, sessions: sessions}
}

func bearer(t *testing.T, userID int64) string {
	token, err := middleware.GenerateAccessToken(userID, "seller@example.com", "Seller")
	if err != nil {
		t.Fatalf("生成 token 失败: %v", err)
	}
	return "Bearer " + token
}

func doRequest(r http.Handler, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("解析响应失败: %v, body=%s", err, w.Body.String())
	}
	return env
}

func validListingBody() map[string]interface{} {
	return map[string]interface{}{
		"title":          "Rolex Watch",
		"brand":          "Rolex",
		"category":       "Watches",
		"condition":      "Mint",
		"targetAudience": "Man",
		"description":    "Submariner from 1998, full set.",
		"price":          4500,
	}
}
