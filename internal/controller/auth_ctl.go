package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trendies_market_v1/internal/service"
)

type AuthController struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewAuthController(s *service.AuthService, log *zap.Logger) *AuthController {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthController{authService: s, log: log}
}

// Login
// @Summary 跳转 Google 授权页
// @Tags Auth
// @Success 302
// @Router /api/auth/google/login [get]
func (ctrl *AuthController) Login(c *gin.Context) {
	url, err := ctrl.authService.GenerateLoginURL()
	if err != nil {
		ctrl.log.Error("生成授权链接失败", zap.Error(err))
		fail(c, http.StatusInternalServerError, "生成授权链接失败", nil)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Callback
// @Summary Google 授权回调
// @Description 校验 state，换取 token，写入用户并签发 JWT
// @Tags Auth
// @Param code query string true "授权码"
// @Param state query string true "安全校验码"
// @Success 200 {object} service.TokenPair
// @Router /api/auth/google/callback [get]
func (ctrl *AuthController) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		fail(c, http.StatusBadRequest, "用户拒绝了授权", gin.H{"google_msg": errParam})
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		fail(c, http.StatusBadRequest, "缺少必要参数 code 或 state", nil)
		return
	}

	pair, err := ctrl.authService.HandleCallback(c.Request.Context(), code, state)
	if err != nil {
		if errors.Is(err, service.ErrInvalidState) {
			fail(c, http.StatusBadRequest, "state 无效或已过期", nil)
			return
		}
		ctrl.log.Error("登录回调失败", zap.Error(err))
		fail(c, http.StatusBadGateway, "授权失败", nil)
		return
	}
	ok(c, http.StatusOK, pair)
}

// RefreshRequest 刷新请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken 用 refresh token 换新的 token 对
// @Summary 刷新登录态
// @Tags Auth
// @Accept json
// @Param body body RefreshRequest true "refresh token"
// @Success 200 {object} service.TokenPair
// @Router /api/auth/refresh [post]
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error(), nil)
		return
	}

	pair, err := ctrl.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			fail(c, http.StatusUnauthorized, "Token 无效或已过期", nil)
			return
		}
		ctrl.log.Error("刷新 token 失败", zap.Error(err))
		fail(c, http.StatusInternalServerError, "刷新失败", nil)
		return
	}
	ok(c, http.StatusOK, pair)
}
