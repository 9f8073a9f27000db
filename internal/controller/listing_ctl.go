package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"trendies_market_v1/internal/schema"
	"trendies_market_v1/internal/service"
)

// ==================== 控制器 ====================

// ListingController 商品提交与查询
type ListingController struct {
	listingService *service.ListingService
}

func NewListingController(listingService *service.ListingService) *ListingController {
	return &ListingController{listingService: listingService}
}

// ==================== API 方法 ====================

// CreateListing 创建商品
// @Summary 完整校验后创建商品
// @Tags Listing
// @Accept json
// @Produce json
// @Success 201 {object} service.CreateListingResult
// @Failure 401,422,500 {object} service.CreateListingResult
// @Router /api/listings [post]
func (ctrl *ListingController) CreateListing(c *gin.Context) {
	var in schema.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, service.MsgInvalidData, nil)
		return
	}

	res := ctrl.listingService.CreateListing(c.Request.Context(), in)
	if !res.Success {
		fail(c, statusOf(res.Err), res.Error, res)
		return
	}
	ok(c, http.StatusCreated, res)
}

// ListMyListings 我的商品
// @Summary 当前用户商品，按创建时间倒序
// @Tags Listing
// @Produce json
// @Success 200 {object} service.ListListingsResult
// @Router /api/listings/mine [get]
func (ctrl *ListingController) ListMyListings(c *gin.Context) {
	res := ctrl.listingService.ListMyListings(c.Request.Context())
	if !res.Success {
		fail(c, statusOf(res.Err), res.Error, res)
		return
	}
	ok(c, http.StatusOK, res)
}

// SuggestPrice 获取 AI 建议价格
// @Summary 按商品描述获取建议价格
// @Tags Listing
// @Accept json
// @Produce json
// @Param body body service.PriceItem true "商品信息"
// @Success 200 {object} service.SuggestPriceResult
// @Router /api/listings/suggest-price [post]
func (ctrl *ListingController) SuggestPrice(c *gin.Context) {
	var item service.PriceItem
	if err := c.ShouldBindJSON(&item); err != nil {
		fail(c, http.StatusBadRequest, service.MsgInvalidData, nil)
		return
	}

	res := ctrl.listingService.SuggestPrice(c.Request.Context(), item)
	if !res.Success {
		fail(c, statusOf(res.Err), res.Error, res)
		return
	}
	ok(c, http.StatusOK, res)
}

// PriceBreakdown 卖家到手价拆分
// @Summary 佣金、服务费、平台费与到手价
// @Tags Listing
// @Param price query number true "售价"
// @Success 200 {object} service.PriceBreakdown
// @Router /api/listings/price-breakdown [get]
func (ctrl *ListingController) PriceBreakdown(c *gin.Context) {
	price, err := cast.ToFloat64E(c.Query("price"))
	if err != nil || price <= 0 {
		fail(c, http.StatusBadRequest, "Price must be a positive number.", nil)
		return
	}
	ok(c, http.StatusOK, service.CalculateBreakdown(price))
}
