package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/model"
	"trendies_market_v1/internal/repository"
	"trendies_market_v1/pkg/utils"
)

// 业务常量
const (
	GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	stateKeyPrefix    = "oauth_state:"
)

var (
	ErrInvalidState = errors.New("invalid or expired oauth state")
	ErrInvalidToken = errors.New("invalid refresh token")
)

// AuthConfig Google 登录配置
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint // 为空时使用 google.Endpoint
	UserInfoURL  string          // 为空时使用 GoogleUserInfoURL
}

// GoogleProfile userinfo 返回
type GoogleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// TokenPair 登录/刷新返回
type TokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *model.User `json:"user,omitempty"`
}

// AuthService Google OAuth 登录，签发会话 JWT
type AuthService struct {
	oauth       *oauth2.Config
	userInfoURL string
	users       repository.UserRepository
	states      *utils.TTLStore
	http        *resty.Client
	log         *zap.Logger
}

// NewAuthService 工厂方法
func NewAuthService(cfg AuthConfig, users repository.UserRepository, states *utils.TTLStore, log *zap.Logger) *AuthService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = GoogleUserInfoURL
	}
	if states == nil {
		states = utils.NewTTLStore(0)
	}
	return &AuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
		users:       users,
		states:      states,
		http:        utils.NewHTTPClient(0),
		log:         log,
	}
}

// GenerateLoginURL 生成授权链接，state 与 PKCE verifier 暂存 10 分钟
func (s *AuthService) GenerateLoginURL() (string, error) {
	state, err := utils.GenerateRandomString(32)
	if err != nil {
		return "", err
	}
	verifier := oauth2.GenerateVerifier()
	s.states.Set(stateKeyPrefix+state, verifier)

	return s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
	), nil
}

// HandleCallback 校验 state，换取 token，拉取资料并签发会话
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) (*TokenPair, error) {
	verifier, ok := s.states.Take(stateKeyPrefix + state)
	if !ok {
		return nil, ErrInvalidState
	}

	token, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("换取 token 失败: %w", err)
	}

	var profile GoogleProfile
	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetResult(&profile).
		Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("获取用户信息失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("获取用户信息失败: status %d", resp.StatusCode())
	}
	if profile.Sub == "" {
		return nil, errors.New("用户信息缺少 sub")
	}

	user := &model.User{
		Subject:   profile.Sub,
		Email:     profile.Email,
		Name:      profile.Name,
		AvatarURL: profile.Picture,
	}
	if err := s.users.UpsertBySubject(ctx, user); err != nil {
		return nil, fmt.Errorf("保存用户失败: %w", err)
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	s.log.Info("用户登录", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Refresh 用 refresh token 换新的 token 对
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := middleware.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
