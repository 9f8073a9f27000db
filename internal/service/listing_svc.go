package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trendies_market_v1/internal/cache"
	"trendies_market_v1/internal/event"
	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/model"
	"trendies_market_v1/internal/repository"
	"trendies_market_v1/internal/schema"
)

// ==================== 依赖接口 ====================

// IdentityResolver 解析当前登录用户
type IdentityResolver interface {
	CurrentUser(ctx context.Context) (*middleware.Identity, bool)
}

// PriceSuggester 价格建议能力
type PriceSuggester interface {
	Suggest(ctx context.Context, userID int64, item PriceItem) (float64, error)
}

// ==================== 返回结构 ====================
// 所有对外操作都返回结果值，调用方按 Success 分支，Err 仅供服务端映射状态码

// SuggestPriceResult 价格建议结果
type SuggestPriceResult struct {
	Success bool     `json:"success"`
	Price   *float64 `json:"price,omitempty"`
	Error   string   `json:"error,omitempty"`
	Err     error    `json:"-"`
}

// CreateListingResult 创建商品结果
type CreateListingResult struct {
	Success     bool               `json:"success"`
	ListingID   int64              `json:"listingId,omitempty"`
	Error       string             `json:"error,omitempty"`
	FieldErrors schema.FieldErrors `json:"fieldErrors,omitempty"`
	Err         error              `json:"-"`
}

// ListListingsResult 我的商品列表结果
type ListListingsResult struct {
	Success  bool            `json:"success"`
	Listings []model.Listing `json:"listings"`
	Error    string          `json:"error,omitempty"`
	Err      error           `json:"-"`
}

// ==================== 服务 ====================

// ListingService 商品提交流水线：鉴权 -> 完整校验 -> 落库 -> 失效缓存
type ListingService struct {
	store    repository.ListingRepository
	prices   PriceSuggester
	schema   *schema.ListingSchema
	views    cache.ViewCache
	events   event.Publisher
	identity IdentityResolver
	log      *zap.Logger
}

// ListingServiceDeps 依赖
type ListingServiceDeps struct {
	Store    repository.ListingRepository
	Prices   PriceSuggester
	Schema   *schema.ListingSchema
	Views    cache.ViewCache  // 可为 nil
	Events   event.Publisher  // 可为 nil
	Identity IdentityResolver // 为 nil 时从 request context 解析
	Logger   *zap.Logger
}

// NewListingService 创建商品服务
func NewListingService(deps ListingServiceDeps) *ListingService {
	s := &ListingService{
		store:    deps.Store,
		prices:   deps.Prices,
		schema:   deps.Schema,
		views:    deps.Views,
		events:   deps.Events,
		identity: deps.Identity,
		log:      deps.Logger,
	}
	if s.schema == nil {
		s.schema = schema.NewListingSchema()
	}
	if s.events == nil {
		s.events = event.NoopPublisher{}
	}
	if s.identity == nil {
		s.identity = middleware.ContextIdentityResolver{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Schema 共享的商品 Schema
func (s *ListingService) Schema() *schema.ListingSchema {
	return s.schema
}

// SuggestPrice 获取 AI 建议价格
func (s *ListingService) SuggestPrice(ctx context.Context, item PriceItem) SuggestPriceResult {
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return SuggestPriceResult{Error: MsgAuthenticationRequired, Err: ErrAuthenticationRequired}
	}

	price, err := s.prices.Suggest(ctx, user.UserID, item)
	if err != nil {
		if errors.Is(err, ErrSuggestionThrottled) {
			return SuggestPriceResult{Error: MsgSuggestionThrottled, Err: err}
		}
		s.log.Error("AI Price Suggestion Error", zap.Int64("user_id", user.UserID), zap.Error(err))
		return SuggestPriceResult{Error: MsgSuggestionFailed, Err: err}
	}
	return SuggestPriceResult{Success: true, Price: &price}
}

// CreateListing 创建商品
func (s *ListingService) CreateListing(ctx context.Context, in schema.Input) CreateListingResult {
	// 1. 身份
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return CreateListingResult{Error: MsgAuthenticationRequired, Err: ErrAuthenticationRequired}
	}

	// 2. 完整校验
	res := s.schema.Validate(in)
	if !res.OK() {
		return CreateListingResult{
			Error:       MsgInvalidData,
			FieldErrors: res.Errors(),
			Err:         &ValidationError{Fields: res.Errors()},
		}
	}
	data := res.Value()

	// 3. 落库（图片等非持久化字段不写入）
	listing := &model.Listing{
		UserID:      user.UserID,
		Title:       data.Title,
		Description: data.Description,
		Brand:       data.Brand,
		Category:    data.Category,
		Condition:   data.Condition,
		Price:       data.Price,
	}
	if err := s.store.Create(ctx, listing); err != nil {
		s.log.Error("Create Listing Error", zap.Int64("user_id", user.UserID), zap.Error(err))
		return CreateListingResult{Error: MsgCreateFailed, Err: fmt.Errorf("%w: create listing", ErrStorageFailed)}
	}

	// 4. 失效首页视图并发布事件，均为尽力而为
	s.invalidateHome(ctx)
	s.publishCreated(ctx, listing)

	s.log.Info("商品已创建", zap.Int64("user_id", user.UserID), zap.Int64("listing_id", listing.ID))
	return CreateListingResult{Success: true, ListingID: listing.ID}
}

// ListMyListings 当前用户的商品，按创建时间倒序
func (s *ListingService) ListMyListings(ctx context.Context) ListListingsResult {
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return ListListingsResult{Error: MsgAuthenticationRequired, Err: ErrAuthenticationRequired}
	}

	// 先取代数再读库；期间若有新商品写入，代数前进，本次结果不回写
	gen, cacheable := s.viewGeneration(ctx, cache.HomePath)
	key := cache.ViewKey(cache.HomePath, gen, user.UserID)
	if cacheable {
		if cached, hit := s.readView(ctx, key); hit {
			return ListListingsResult{Success: true, Listings: cached}
		}
	}

	listings, err := s.store.ListByOwner(ctx, user.UserID)
	if err != nil {
		s.log.Error("Error fetching listings", zap.Int64("user_id", user.UserID), zap.Error(err))
		return ListListingsResult{Error: MsgListFailed, Err: fmt.Errorf("%w: list listings", ErrStorageFailed)}
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	if cacheable {
		if now, ok := s.viewGeneration(ctx, cache.HomePath); ok && now == gen {
			s.writeView(ctx, key, listings)
		}
	}
	return ListListingsResult{Success: true, Listings: listings}
}

// ==================== 缓存与事件 ====================

// viewGeneration 读取路径代数，缓存不可用时返回 false
func (s *ListingService) viewGeneration(ctx context.Context, path string) (int64, bool) {
	if s.views == nil {
		return 0, false
	}
	gen, err := s.views.Generation(ctx, path)
	if err != nil {
		s.log.Warn("读取视图代数失败", zap.String("path", path), zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *ListingService) readView(ctx context.Context, key string) ([]model.Listing, bool) {
	if s.views == nil {
		return nil, false
	}
	data, hit, err := s.views.Get(ctx, key)
	if err != nil {
		s.log.Warn("读取视图缓存失败", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var listings []model.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		s.log.Warn("视图缓存内容损坏", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return listings, true
}

func (s *ListingService) writeView(ctx context.Context, key string, listings []model.Listing) {
	if s.views == nil {
		return
	}
	data, err := json.Marshal(listings)
	if err != nil {
		return
	}
	if err := s.views.Set(ctx, key, data); err != nil {
		s.log.Warn("写入视图缓存失败", zap.String("key", key), zap.Error(err))
	}
}

func (s *ListingService) invalidateHome(ctx context.Context) {
	if s.views == nil {
		return
	}
	if err := s.views.InvalidatePath(ctx, cache.HomePath); err != nil {
		s.log.Warn("失效首页缓存失败", zap.Error(err))
	}
}

func (s *ListingService) publishCreated(ctx context.Context, l *model.Listing) {
	err := s.events.PublishListingCreated(ctx, event.ListingCreated{
		ListingID: l.ID,
		UserID:    l.UserID,
		Title:     l.Title,
		Brand:     l.Brand,
		Category:  l.Category,
		Price:     l.Price,
		CreatedAt: l.CreatedAt,
	})
	if err != nil {
		s.log.Warn("发布商品创建事件失败", zap.Int64("listing_id", l.ID), zap.Error(err))
	}
}
