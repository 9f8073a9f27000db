package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"trendies_market_v1/internal/schema"
	"trendies_market_v1/internal/service"
)

// HomeRedirect 提交成功后跳转的页面
const HomeRedirect = "/"

// Pipeline 服务端提交流水线
type Pipeline interface {
	CreateListing(ctx context.Context, in schema.Input) service.CreateListingResult
	SuggestPrice(ctx context.Context, item service.PriceItem) service.SuggestPriceResult
}

// State 向导快照
type State struct {
	ID        string             `json:"id"`
	Step      int                `json:"step"`
	StepName  string             `json:"step_name"`
	Steps     []Step             `json:"steps"`
	Draft     schema.Input       `json:"draft"`
	Errors    schema.FieldErrors `json:"errors,omitempty"`
	Busy      bool               `json:"busy"`
	LastError string             `json:"last_error,omitempty"`
}

// Wizard 多步表单状态机，每个会话一个实例
// 状态变更串行执行；提交与估价期间 busy 标志拒绝其他转换
type Wizard struct {
	id       string
	schema   *schema.ListingSchema
	pipeline Pipeline

	mu         sync.Mutex
	step       int
	draft      schema.Input
	errors     schema.FieldErrors
	busy       bool
	lastError  string
	lastActive time.Time

	subscribers     []chan Event
	subscriberMutex sync.RWMutex
}

// New 创建向导：第一步，空草稿
func New(s *schema.ListingSchema, p Pipeline) *Wizard {
	return &Wizard{
		id:         uuid.NewString(),
		schema:     s,
		pipeline:   p,
		step:       FirstStep,
		draft:      schema.Input{},
		lastActive: time.Now(),
	}
}

// ID 会话 ID
func (w *Wizard) ID() string { return w.id }

// ==================== 事件订阅 ====================

// Subscribe 订阅状态变化
func (w *Wizard) Subscribe() chan Event {
	w.subscriberMutex.Lock()
	defer w.subscriberMutex.Unlock()

	ch := make(chan Event, 16)
	w.subscribers = append(w.subscribers, ch)
	return ch
}

// Unsubscribe 取消订阅
func (w *Wizard) Unsubscribe(ch chan Event) {
	w.subscriberMutex.Lock()
	defer w.subscriberMutex.Unlock()

	for i, sub := range w.subscribers {
		if sub == ch {
			w.subscribers = append(w.subscribers[:i], w.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close 关闭所有订阅
func (w *Wizard) Close() {
	w.subscriberMutex.Lock()
	defer w.subscriberMutex.Unlock()

	for _, ch := range w.subscribers {
		close(ch)
	}
	w.subscribers = nil
}

func (w *Wizard) notify(evt Event) {
	w.subscriberMutex.RLock()
	defer w.subscriberMutex.RUnlock()

	for _, ch := range w.subscribers {
		select {
		case ch <- evt:
		default:
			// channel 已满，跳过
		}
	}
}

// ==================== 状态读取 ====================

// State 当前快照
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Wizard) stateLocked() State {
	return State{
		ID:        w.id,
		Step:      w.step,
		StepName:  StepName(w.step),
		Steps:     Steps,
		Draft:     w.draft.Clone(),
		Errors:    copyErrors(w.errors),
		Busy:      w.busy,
		LastError: w.lastError,
	}
}

// LastActive 最后一次操作时间
func (w *Wizard) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

// Busy 是否有未完成的提交或估价
func (w *Wizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// ==================== 字段编辑 ====================

// SetField 修改单个字段，nil 或空串表示清空
func (w *Wizard) SetField(path string, value any) error {
	return w.SetFields(map[string]any{path: value})
}

// SetFields 批量修改字段，任一字段非法则整体拒绝
func (w *Wizard) SetFields(values map[string]any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return ErrBusy
	}
	for path := range values {
		if !w.editable(path) {
			return ErrUnknownField
		}
	}

	w.touch()
	for path, v := range values {
		w.setLocked(path, v)
	}
	return nil
}

// editable 图片走 SetPhoto，其余字段必须属于 schema
func (w *Wizard) editable(path string) bool {
	if strings.HasPrefix(path, "photos.") {
		return false
	}
	for _, f := range w.schema.Fields() {
		if f == path {
			return true
		}
	}
	return false
}

func (w *Wizard) setLocked(path string, v any) {
	if v == nil || v == "" {
		delete(w.draft, path)
	} else {
		w.draft[path] = v
	}
	w.notify(Event{Type: EventFieldChanged, Step: w.step, Field: path})

	// 修改后清除该字段的旧错误，下一次 Next 重新校验
	if _, had := w.errors[path]; had {
		delete(w.errors, path)
		w.notify(Event{Type: EventErrorsChanged, Step: w.step, Errors: copyErrors(w.errors)})
	}
}

// SetPhoto 设置图片位
func (w *Wizard) SetPhoto(slot string, file *schema.File) error {
	if !schema.IsPhotoSlot(slot) {
		return ErrUnknownSlot
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return ErrBusy
	}
	w.touch()
	if file == nil {
		w.setLocked(schema.PhotoField(slot), nil)
	} else {
		w.setLocked(schema.PhotoField(slot), file)
	}
	return nil
}

// ClearPhoto 清空图片位
func (w *Wizard) ClearPhoto(slot string) error {
	return w.SetPhoto(slot, nil)
}

// ==================== 步骤转换 ====================

// Next 校验当前步骤字段，通过后前进一步
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return ErrBusy
	}
	w.touch()
	if w.step >= LastStep {
		return ErrLastStep
	}

	res := w.schema.ValidateFields(w.draft, StepFields(w.step)...)
	if !res.OK() {
		w.errors = copyErrors(res.Errors())
		w.notify(Event{Type: EventErrorsChanged, Step: w.step, Errors: res.Errors()})
		return &StepValidationError{Step: w.step, Fields: res.Errors()}
	}

	if len(w.errors) > 0 {
		w.errors = nil
		w.notify(Event{Type: EventErrorsChanged, Step: w.step})
	}
	w.step++
	w.notify(Event{Type: EventStepChanged, Step: w.step})
	return nil
}

// Back 后退一步，不做校验
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return ErrBusy
	}
	w.touch()
	if w.step <= FirstStep {
		return ErrFirstStep
	}

	w.step--
	w.notify(Event{Type: EventStepChanged, Step: w.step})
	return nil
}

// Submit 仅在最后一步可用：去掉图片后交给流水线
// 成功时清空草稿回到第一步；失败时停留在最后一步等待重试
func (w *Wizard) Submit(ctx context.Context) (service.CreateListingResult, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return service.CreateListingResult{}, ErrBusy
	}
	w.touch()
	if w.step != LastStep {
		w.mu.Unlock()
		return service.CreateListingResult{}, ErrNotFinalStep
	}
	payload := persistablePayload(w.draft)
	w.busy = true
	w.lastError = ""
	w.notify(Event{Type: EventSubmitting, Step: w.step})
	w.mu.Unlock()

	res := w.pipeline.CreateListing(ctx, payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	w.touch()

	if res.Success {
		w.draft = schema.Input{}
		w.errors = nil
		w.step = FirstStep
		w.notify(Event{Type: EventSubmitted, Step: w.step, ListingID: res.ListingID, Redirect: HomeRedirect})
		return res, nil
	}

	w.lastError = res.Error
	w.errors = copyErrors(res.FieldErrors)
	w.notify(Event{Type: EventFailed, Step: w.step, Message: res.Error, Errors: res.FieldErrors})
	return res, nil
}

// SuggestPrice 用当前草稿请求建议价格，成功后写入 price（用户可再修改）
func (w *Wizard) SuggestPrice(ctx context.Context) (service.SuggestPriceResult, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return service.SuggestPriceResult{}, ErrBusy
	}
	w.touch()
	item := priceItem(w.draft)
	w.busy = true
	w.mu.Unlock()

	res := w.pipeline.SuggestPrice(ctx, item)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	w.touch()

	if res.Success && res.Price != nil {
		w.setLocked(schema.FieldPrice, *res.Price)
	}
	return res, nil
}

// ==================== 辅助函数 ====================

func copyErrors(errs schema.FieldErrors) schema.FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	out := make(schema.FieldErrors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}

func (w *Wizard) touch() {
	w.lastActive = time.Now()
}

// persistablePayload 去掉图片等不落库的字段
func persistablePayload(draft schema.Input) schema.Input {
	out := make(schema.Input, len(draft))
	for k, v := range draft {
		if k == "photos" || strings.HasPrefix(k, "photos.") {
			continue
		}
		out[k] = v
	}
	return out
}

func priceItem(draft schema.Input) service.PriceItem {
	str := func(k string) string { return cast.ToString(draft[k]) }
	return service.PriceItem{
		Title:          str(schema.FieldTitle),
		Description:    str(schema.FieldDescription),
		Brand:          str(schema.FieldBrand),
		Category:       str(schema.FieldCategory),
		Condition:      str(schema.FieldCondition),
		SizeDimensions: str(schema.FieldSizeDimensions),
		Material:       str(schema.FieldMaterial),
		Color:          str(schema.FieldColor),
		TargetAudience: str(schema.FieldTargetAudience),
	}
}
