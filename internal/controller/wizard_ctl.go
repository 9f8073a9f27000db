package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/schema"
	"trendies_market_v1/internal/wizard"
	"trendies_market_v1/pkg/utils"
)

// ==================== 控制器 ====================

// WizardController 多步发布向导，每个用户一个会话
type WizardController struct {
	sessions *wizard.SessionStore
	log      *zap.Logger
}

func NewWizardController(sessions *wizard.SessionStore, log *zap.Logger) *WizardController {
	if log == nil {
		log = zap.NewNop()
	}
	return &WizardController{sessions: sessions, log: log}
}

// session 取当前用户会话，不存在时直接写 404
func (ctrl *WizardController) session(c *gin.Context) (*wizard.Wizard, bool) {
	w, found := ctrl.sessions.Get(middleware.GetUserID(c))
	if !found {
		fail(c, http.StatusNotFound, wizard.ErrNoSession.Error(), nil)
		return nil, false
	}
	return w, true
}

// respond 成功返回最新状态；失败时附带状态便于前端回显错误
func (ctrl *WizardController) respond(c *gin.Context, w *wizard.Wizard, err error) {
	if err != nil {
		fail(c, statusOf(err), err.Error(), w.State())
		return
	}
	ok(c, http.StatusOK, w.State())
}

// ==================== 会话 ====================

// Start 开始（或重新开始）向导
// @Summary 新建向导会话，已有会话被丢弃
// @Tags Wizard
// @Produce json
// @Success 201 {object} wizard.State
// @Router /api/wizard [post]
func (ctrl *WizardController) Start(c *gin.Context) {
	w := ctrl.sessions.Start(middleware.GetUserID(c))
	ok(c, http.StatusCreated, w.State())
}

// Get 当前向导状态
// @Summary 获取向导快照
// @Tags Wizard
// @Produce json
// @Success 200 {object} wizard.State
// @Router /api/wizard [get]
func (ctrl *WizardController) Get(c *gin.Context) {
	w, found := ctrl.session(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, w.State())
}

// Discard 放弃向导
// @Summary 丢弃当前会话
// @Tags Wizard
// @Router /api/wizard [delete]
func (ctrl *WizardController) Discard(c *gin.Context) {
	ctrl.sessions.Discard(middleware.GetUserID(c))
	ok(c, http.StatusOK, nil)
}

// ==================== 字段 ====================

// SetFields 批量修改字段，值为 null 或空串表示清空
// @Summary 修改草稿字段
// @Tags Wizard
// @Accept json
// @Router /api/wizard/fields [patch]
func (ctrl *WizardController) SetFields(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil || len(values) == 0 {
		fail(c, http.StatusBadRequest, "参数错误: 需要字段对象", nil)
		return
	}
	w, found := ctrl.session(c)
	if !found {
		return
	}
	ctrl.respond(c, w, w.SetFields(values))
}

// UploadPhoto 上传图片位，只保留元数据，MIME 按文件头识别
// @Summary 设置图片位
// @Tags Wizard
// @Accept multipart/form-data
// @Param slot path string true "front|back|side|logo|material|interior"
// @Param file formData file true "图片"
// @Router /api/wizard/photos/{slot} [put]
func (ctrl *WizardController) UploadPhoto(c *gin.Context) {
	slot := c.Param("slot")
	if !schema.IsPhotoSlot(slot) {
		fail(c, http.StatusBadRequest, wizard.ErrUnknownSlot.Error(), nil)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "Expected a file.", nil)
		return
	}
	w, found := ctrl.session(c)
	if !found {
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "读取文件失败", nil)
		return
	}
	defer file.Close()

	contentType, err := utils.DetectContentType(file)
	if err != nil {
		ctrl.log.Warn("识别图片类型失败", zap.String("slot", slot), zap.Error(err))
		contentType = header.Header.Get("Content-Type")
	}

	ctrl.respond(c, w, w.SetPhoto(slot, &schema.File{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: contentType,
	}))
}

// ClearPhoto 清空图片位
// @Summary 清空图片位
// @Tags Wizard
// @Router /api/wizard/photos/{slot} [delete]
func (ctrl *WizardController) ClearPhoto(c *gin.Context) {
	w, found := ctrl.session(c)
	if !found {
		return
	}
	ctrl.respond(c, w, w.ClearPhoto(c.Param("slot")))
}

// ==================== 步骤 ====================

// Next 校验当前步骤并前进
// @Summary 下一步
// @Tags Wizard
// @Router /api/wizard/next [post]
func (ctrl *WizardController) Next(c *gin.Context) {
	w, found := ctrl.session(c)
	if !found {
		return
	}
	ctrl.respond(c, w, w.Next())
}

// Back 后退一步
// @Summary 上一步
// @Tags Wizard
// @Router /api/wizard/back [post]
func (ctrl *WizardController) Back(c *gin.Context) {
	w, found := ctrl.session(c)
	if !found {
		return
	}
	ctrl.respond(c, w, w.Back())
}

// SuggestPrice 用草稿请求建议价格，成功后写入 price
// @Summary 向导内获取建议价格
// @Tags Wizard
// @Router /api/wizard/suggest-price [post]
func (ctrl *WizardController) SuggestPrice(c *gin.Context) {
	w, found := ctrl.session(c)
	if !found {
		return
	}

	res, err := w.SuggestPrice(c.Request.Context())
	if err != nil {
		ctrl.respond(c, w, err)
		return
	}
	if !res.Success {
		fail(c, statusOf(res.Err), res.Error, gin.H{"result": res, "state": w.State()})
		return
	}
	ok(c, http.StatusOK, gin.H{"result": res, "state": w.State()})
}

// Submit 从最后一步提交，成功后结束会话并返回跳转地址
// @Summary 提交向导
// @Tags Wizard
// @Router /api/wizard/submit [post]
func (ctrl *WizardController) Submit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	w, found := ctrl.session(c)
	if !found {
		return
	}

	res, err := w.Submit(c.Request.Context())
	if err != nil {
		ctrl.respond(c, w, err)
		return
	}
	if !res.Success {
		fail(c, statusOf(res.Err), res.Error, gin.H{"result": res, "state": w.State()})
		return
	}

	ctrl.sessions.Discard(userID)
	ok(c, http.StatusCreated, gin.H{"result": res, "redirect": wizard.HomeRedirect})
}
