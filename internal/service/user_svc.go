package service

import (
	"context"
	"errors"
	"time"

	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/model"
	"trendies_market_v1/internal/repository"
)

// ErrUserNotFound 令牌有效但用户已不存在
var ErrUserNotFound = errors.New("user not found")

// ==================== UserService 用户服务 ====================

// UserProfile 当前用户资料与近期估价用量
type UserProfile struct {
	User       *model.User              `json:"user"`
	AIUsage    *repository.AIUsageStats `json:"ai_usage,omitempty"`
	UsageSince time.Time                `json:"usage_since"`
}

// UserService 用户服务
type UserService struct {
	userRepo  repository.UserRepository
	aiLogRepo repository.AICallLogRepository
	identity  IdentityResolver
	usageDays int
}

// NewUserService 创建用户服务，aiLogRepo 可为 nil
func NewUserService(userRepo repository.UserRepository, aiLogRepo repository.AICallLogRepository, identity IdentityResolver) *UserService {
	if identity == nil {
		identity = middleware.ContextIdentityResolver{}
	}
	return &UserService{
		userRepo:  userRepo,
		aiLogRepo: aiLogRepo,
		identity:  identity,
		usageDays: 30,
	}
}

// Me 当前登录用户资料
func (s *UserService) Me(ctx context.Context) (*UserProfile, error) {
	id, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return nil, ErrAuthenticationRequired
	}

	user, err := s.userRepo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	since := time.Now().AddDate(0, 0, -s.usageDays)
	profile := &UserProfile{User: user, UsageSince: since}
	if s.aiLogRepo != nil {
		stats, err := s.aiLogRepo.GetUsageByUser(ctx, user.ID, since, time.Time{})
		if err != nil {
			return nil, err
		}
		profile.AIUsage = stats
	}
	return profile, nil
}
