package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trendies_market_v1/internal/cache"
	"trendies_market_v1/internal/config"
	"trendies_market_v1/internal/controller"
	"trendies_market_v1/internal/event"
	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/model"
	"trendies_market_v1/internal/repository"
	"trendies_market_v1/internal/router"
	"trendies_market_v1/internal/schema"
	"trendies_market_v1/internal/service"
	"trendies_market_v1/internal/task"
	"trendies_market_v1/internal/wizard"
	"trendies_market_v1/pkg/database"
	"trendies_market_v1/pkg/logger"
	"trendies_market_v1/pkg/utils"
)

func main() {
	configPath := flag.String("config", ".", "配置文件或所在目录")
	flag.Parse()

	// 1. 配置与日志
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
		Issuer:          cfg.JWT.Issuer,
	})
	gin.SetMode(cfg.Server.Mode)

	// 2. 初始化依赖
	ctx := context.Background()
	deps, err := initDependencies(ctx, cfg, log)
	if err != nil {
		log.Fatal("初始化依赖失败", zap.Error(err))
	}
	defer deps.Close()

	// 3. 启动后台任务
	if err := deps.Tasks.Start(); err != nil {
		log.Fatal("启动后台任务失败", zap.Error(err))
	}
	defer deps.Tasks.Stop()

	// 4. 初始化路由
	r := router.SetupRouter(log, *deps.Controllers)

	// 5. 启动服务
	startServer(r, cfg.Server, log)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	Sessions    *wizard.SessionStore
	Tasks       *task.TaskManager

	closers []io.Closer
	events  event.Publisher
}

// Repositories 仓库集合
type Repositories struct {
	User      repository.UserRepository
	Listing   repository.ListingRepository
	AiCallLog repository.AICallLogRepository
}

// Services 服务集合
type Services struct {
	Auth    *service.AuthService
	User    *service.UserService
	Price   *service.PriceSuggestionService
	Listing *service.ListingService
}

// Close 释放外部连接
func (d *Dependencies) Close() {
	if d.events != nil {
		d.events.Close()
	}
	for _, c := range d.closers {
		_ = c.Close()
	}
}

// ==================== 初始化函数 ====================

// initDependencies 初始化所有依赖
func initDependencies(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	// -------- 数据库 --------
	db, err := database.InitDB(database.Options{
		DSN:         cfg.Database.DSN,
		LogSQL:      cfg.Database.LogSQL,
		AutoMigrate: cfg.Database.AutoMigrate,
	}, log, &model.User{}, &model.Listing{}, &model.AICallLog{})
	if err != nil {
		return nil, err
	}
	deps.DB = db

	// -------- Repo 层 --------
	deps.Repos = &Repositories{
		User:      repository.NewUserRepository(db),
		Listing:   repository.NewListingRepository(db),
		AiCallLog: repository.NewAICallLogRepository(db),
	}

	// -------- 外部组件 --------
	provider, err := initPriceProvider(ctx, cfg.AI, deps)
	if err != nil {
		return nil, err
	}
	views, err := initViewCache(ctx, cfg.Cache, deps)
	if err != nil {
		return nil, err
	}
	deps.events = initPublisher(cfg.NATS, log)

	// -------- 业务服务 --------
	limiter := middleware.NewCooldownLimiter()
	listingSchema := schema.NewListingSchema()

	services := &Services{}
	services.Auth = service.NewAuthService(service.AuthConfig{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
	}, deps.Repos.User, utils.NewTTLStore(10*time.Minute), log)
	services.User = service.NewUserService(deps.Repos.User, deps.Repos.AiCallLog, nil)
	services.Price = service.NewPriceSuggestionService(provider, limiter, deps.Repos.AiCallLog, service.PriceConfig{
		Timeout:  cfg.AI.Timeout,
		Cooldown: cfg.AI.Cooldown,
	}, log)
	services.Listing = service.NewListingService(service.ListingServiceDeps{
		Store:  deps.Repos.Listing,
		Prices: services.Price,
		Schema: listingSchema,
		Views:  views,
		Events: deps.events,
		Logger: log,
	})
	deps.Services = services

	// -------- 向导会话 --------
	deps.Sessions = wizard.NewSessionStore(listingSchema, services.Listing, cfg.Wizard.SessionTTL)

	// -------- Controller 层 --------
	deps.Controllers = &router.Controllers{
		Auth:    controller.NewAuthController(services.Auth, log),
		User:    controller.NewUserController(services.User),
		Listing: controller.NewListingController(services.Listing),
		Wizard:  controller.NewWizardController(deps.Sessions, log),
	}

	// -------- 后台任务 --------
	deps.Tasks = task.NewTaskManager(&task.TaskManagerDeps{
		Sessions: deps.Sessions,
		Limiter:  limiter,
		Logger:   log,
	}, &task.TaskManagerConfig{
		SessionCleanupEnabled: true,
		SessionCleanupSpec:    cfg.Wizard.CleanupSpec,
	})

	return deps, nil
}

// initPriceProvider 按配置选择文本生成上游
func initPriceProvider(ctx context.Context, cfg config.AIConfig, deps *Dependencies) (service.TextGenerator, error) {
	switch cfg.Provider {
	case "gemini":
		p, err := service.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, p)
		return p, nil
	default:
		return service.NewChatProvider(cfg.Endpoint, cfg.APIKey, cfg.Model), nil
	}
}

// initViewCache 视图缓存，redis 或进程内
func initViewCache(ctx context.Context, cfg config.CacheConfig, deps *Dependencies) (cache.ViewCache, error) {
	if cfg.Driver != "redis" {
		return cache.NewMemoryCache(cfg.TTL), nil
	}
	rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.TTL)
	if err != nil {
		return nil, err
	}
	deps.closers = append(deps.closers, rc)
	return rc, nil
}

// initPublisher 未配置 NATS 或连接失败时不发布事件
func initPublisher(cfg config.NATSConfig, log *zap.Logger) event.Publisher {
	if cfg.URL == "" {
		return event.NoopPublisher{}
	}
	p, err := event.NewNATSPublisher(cfg.URL, cfg.Subject)
	if err != nil {
		log.Warn("NATS 不可用，商品事件将不会发布", zap.Error(err))
		return event.NoopPublisher{}
	}
	return p
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(r *gin.Engine, cfg config.ServerConfig, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("服务强制关闭", zap.Error(err))
	}
	log.Info("服务已退出")
}
