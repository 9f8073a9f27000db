package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ==================== 配置结构 ====================

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	AI       AIConfig       `mapstructure:"ai"`
	Cache    CacheConfig    `mapstructure:"cache"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Wizard   WizardConfig   `mapstructure:"wizard"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug | release | test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	LogSQL      bool   `mapstructure:"log_sql"`
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// OAuthConfig Google 登录
type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	RedirectURL        string `mapstructure:"redirect_url"`
}

// AIConfig 价格建议上游配置
type AIConfig struct {
	Provider string        `mapstructure:"provider"` // chat | gemini
	Endpoint string        `mapstructure:"endpoint"` // chat 模式下的完整 URL
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

type CacheConfig struct {
	Driver    string        `mapstructure:"driver"` // memory | redis
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisPass string        `mapstructure:"redis_password"`
	RedisDB   int           `mapstructure:"redis_db"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"` // 为空时不发布事件
	Subject string `mapstructure:"subject"`
}

type WizardConfig struct {
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	CleanupSpec string        `mapstructure:"cleanup_spec"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

// ==================== 加载 ====================

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("database.dsn", "host=localhost user=trendies password=trendies dbname=trendies port=5432 sslmode=disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_sql", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "trendies")
	v.SetDefault("jwt.access_token_ttl", "2h")
	v.SetDefault("jwt.refresh_token_ttl", "168h")

	// 无默认值的键也需要注册，AutomaticEnv 才能在 Unmarshal 时生效
	v.SetDefault("oauth.google_client_id", "")
	v.SetDefault("oauth.google_client_secret", "")
	v.SetDefault("oauth.redirect_url", "http://localhost:8080/api/auth/google/callback")

	v.SetDefault("ai.provider", "chat")
	v.SetDefault("ai.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.timeout", "20s")
	v.SetDefault("ai.cooldown", "3s")

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "listing.created")

	v.SetDefault("wizard.session_ttl", "30m")
	v.SetDefault("wizard.cleanup_spec", "@every 5m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load 加载配置
// 优先级：环境变量 > config.yaml > 默认值；.env 文件会先被读入环境变量
func Load(path string) (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if fi, err := os.Stat(path); err == nil {
			if fi.IsDir() {
				v.AddConfigPath(path)
				v.SetConfigName("config")
				v.SetConfigType("yaml")
			} else {
				v.SetConfigFile(path)
			}
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return nil, fmt.Errorf("读取配置文件失败: %w", err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验关键配置
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret 未配置 (JWT_SECRET)")
	}
	switch c.AI.Provider {
	case "chat", "gemini":
	default:
		return fmt.Errorf("不支持的 ai.provider: %s", c.AI.Provider)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("不支持的 cache.driver: %s", c.Cache.Driver)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout 必须大于 0")
	}
	return nil
}
