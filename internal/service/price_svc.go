package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/model"
	"trendies_market_v1/internal/repository"
)

// ==================== 配置 ====================

// PriceConfig 价格建议配置
type PriceConfig struct {
	Timeout  time.Duration // 单次上游调用超时，不重试
	Cooldown time.Duration // 同一用户两次请求的最小间隔
}

// PriceItem 用于估价的商品属性（不含价格）
type PriceItem struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Brand          string `json:"brand"`
	Category       string `json:"category"`
	Condition      string `json:"condition"`
	SizeDimensions string `json:"sizeDimensions,omitempty"`
	Material       string `json:"material,omitempty"`
	Color          string `json:"color,omitempty"`
	TargetAudience string `json:"targetAudience,omitempty"`
}

// ==================== 服务 ====================

// PriceSuggestionService 调用文本生成上游，从自由文本中提取价格
type PriceSuggestionService struct {
	provider TextGenerator
	limiter  *middleware.CooldownLimiter
	logRepo  repository.AICallLogRepository
	cfg      PriceConfig
	log      *zap.Logger
}

// NewPriceSuggestionService 创建价格建议服务，logRepo 可为 nil
func NewPriceSuggestionService(
	provider TextGenerator,
	limiter *middleware.CooldownLimiter,
	logRepo repository.AICallLogRepository,
	cfg PriceConfig,
	log *zap.Logger,
) *PriceSuggestionService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if limiter == nil {
		limiter = middleware.NewCooldownLimiter()
	}
	return &PriceSuggestionService{
		provider: provider,
		limiter:  limiter,
		logRepo:  logRepo,
		cfg:      cfg,
		log:      log,
	}
}

// Suggest 返回建议价格
// 失败时返回 ErrSuggestionThrottled 或 *SuggestionError
func (s *PriceSuggestionService) Suggest(ctx context.Context, userID int64, item PriceItem) (float64, error) {
	if res := s.limiter.Check(middleware.SuggestionKey(userID), s.cfg.Cooldown); !res.Allowed {
		return 0, fmt.Errorf("%w: retry after %s", ErrSuggestionThrottled, res.RetryAfter.Round(time.Millisecond))
	}

	start := time.Now()
	price, err := s.suggest(ctx, item)
	s.record(ctx, userID, item, price, time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return price, nil
}

func (s *PriceSuggestionService) suggest(ctx context.Context, item PriceItem) (float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	text, err := s.provider.Generate(callCtx, BuildPricePrompt(item))
	if err != nil {
		return 0, classifyCallError(callCtx, err)
	}

	price, err := ExtractPrice(text)
	if err != nil {
		return 0, &SuggestionError{Kind: FailureNoNumber, Err: fmt.Errorf("%w | 原始输出: %s", err, truncate(text, 200))}
	}
	return price, nil
}

// record 写调用日志，失败不影响主流程
func (s *PriceSuggestionService) record(ctx context.Context, userID int64, item PriceItem, price float64, elapsed time.Duration, callErr error) {
	entry := &model.AICallLog{
		UserID:         userID,
		Provider:       s.provider.Name(),
		ModelName:      s.provider.Model(),
		SuggestedPrice: price,
		DurationMs:     elapsed.Milliseconds(),
		Status:         model.AICallStatusSuccess,
	}
	if attrs, err := json.Marshal(item); err == nil {
		entry.Attributes = datatypes.JSON(attrs)
	}

	fields := []zap.Field{
		zap.Int64("user_id", userID),
		zap.String("provider", entry.Provider),
		zap.Duration("elapsed", elapsed),
	}
	if callErr != nil {
		entry.Status = model.AICallStatusFailed
		entry.ErrorMsg = truncate(callErr.Error(), 1000)
		var se *SuggestionError
		if errors.As(callErr, &se) {
			entry.FailureKind = string(se.Kind)
		}
		s.log.Warn("价格建议失败", append(fields, zap.String("kind", entry.FailureKind), zap.Error(callErr))...)
	} else {
		s.log.Info("价格建议完成", append(fields, zap.Float64("price", price))...)
	}

	if s.logRepo == nil {
		return
	}
	// 请求可能已取消，日志写入使用独立 context
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.logRepo.Create(logCtx, entry); err != nil {
		s.log.Warn("写入 AI 调用日志失败", zap.Error(err))
	}
}

// ==================== Prompt 与解析 ====================

// BuildPricePrompt 构建估价 Prompt
func BuildPricePrompt(item PriceItem) string {
	var sb strings.Builder
	sb.WriteString("You are a pricing expert for vintage luxury second-hand items especially from Moroccan origin.\n")
	sb.WriteString("Suggest a fair market price based on the following details:\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", item.Title)
	fmt.Fprintf(&sb, "Description: %s\n", item.Description)
	fmt.Fprintf(&sb, "Brand: %s\n", item.Brand)
	fmt.Fprintf(&sb, "Category: %s\n", item.Category)
	fmt.Fprintf(&sb, "Condition: %s\n", item.Condition)

	optional := []struct{ label, value string }{
		{"Size/Dimensions", item.SizeDimensions},
		{"Material", item.Material},
		{"Color", item.Color},
		{"Target audience", item.TargetAudience},
	}
	for _, o := range optional {
		if o.value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", o.label, o.value)
		}
	}

	sb.WriteString("\nConsider:\n")
	sb.WriteString("- Current market trends for similar items\n")
	sb.WriteString("- Rarity and desirability of the brand\n")
	sb.WriteString("- Item condition (mint, like new, good, fair)\n")
	sb.WriteString("- Recent sales of similar items\n\n")
	sb.WriteString("Return only the numerical price value without any currency symbols or text.")
	return sb.String()
}

var priceToken = regexp.MustCompile(`\d+(\.\d+)?`)

// errNoPrice 输出中没有可用的数字
var errNoPrice = errors.New("no numeric price in output")

// ExtractPrice 取文本中第一个数字（整数或小数），按分四舍五入
// 超出 decimal(12,2) 范围的结果视为不可用
func ExtractPrice(text string) (float64, error) {
	token := priceToken.FindString(text)
	if token == "" {
		return 0, errNoPrice
	}
	price, err := strconv.ParseFloat(token, 64)
	if err != nil || price > model.MaxPrice {
		return 0, errNoPrice
	}
	price = math.Round(price*100) / 100
	if price <= 0 {
		return 0, errNoPrice
	}
	return price, nil
}
