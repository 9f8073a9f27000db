package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trendies_market_v1/internal/service"
)

// ==================== UserController 用户控制器 ====================

// UserController 用户控制器
type UserController struct {
	userService *service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// Me 获取当前用户信息
// @Summary 当前用户资料与近 30 天估价用量
// @Tags User
// @Produce json
// @Success 200 {object} service.UserProfile
// @Failure 401 {object} map[string]interface{}
// @Router /api/users/me [get]
func (ctrl *UserController) Me(c *gin.Context) {
	profile, err := ctrl.userService.Me(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationRequired):
			fail(c, http.StatusUnauthorized, service.MsgAuthenticationRequired, nil)
		case errors.Is(err, service.ErrUserNotFound):
			fail(c, http.StatusNotFound, "用户不存在", nil)
		default:
			fail(c, http.StatusInternalServerError, "获取用户信息失败", nil)
		}
		return
	}
	ok(c, http.StatusOK, profile)
}
