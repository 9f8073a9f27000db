package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trendies_market_v1/internal/service"
	"trendies_market_v1/internal/wizard"
)

// ==================== 统一响应 ====================

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, message string, data any) {
	body := gin.H{
		"code":    status,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// statusOf 把业务错误映射为 HTTP 状态码
func statusOf(err error) int {
	var validationErr *service.ValidationError
	var stepErr *wizard.StepValidationError
	var suggestionErr *service.SuggestionError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.As(err, &validationErr), errors.As(err, &stepErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSuggestionThrottled):
		return http.StatusTooManyRequests
	case errors.As(err, &suggestionErr):
		return http.StatusBadGateway
	case errors.Is(err, wizard.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrBusy),
		errors.Is(err, wizard.ErrFirstStep),
		errors.Is(err, wizard.ErrLastStep),
		errors.Is(err, wizard.ErrNotFinalStep):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrUnknownField), errors.Is(err, wizard.ErrUnknownSlot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
