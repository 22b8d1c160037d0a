package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Tree      TreeConfig      `mapstructure:"tree"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port" validate:"required"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"` // gin 模式
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver" validate:"oneof=postgres mysql sqlite"` // 数据库类型
	Host         string        `mapstructure:"host"`                                          // 主机地址
	Port         int           `mapstructure:"port"`                                          // 端口
	User         string        `mapstructure:"user"`                                          // 用户名
	Password     string        `mapstructure:"password"`                                      // 密码
	Name         string        `mapstructure:"name" validate:"required"`                      // 数据库名，sqlite 时为文件路径
	SSLMode      string        `mapstructure:"sslmode"`                                       // postgres sslmode
	MaxIdleConns int           `mapstructure:"max_idle_conns"`                                // 最大空闲连接数
	MaxOpenConns int           `mapstructure:"max_open_conns"`                                // 最大打开连接数
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`                                  // 连接最大生命周期
	LogLevel     string        `mapstructure:"log_level" validate:"oneof=silent error warn info"`
	AutoMigrate  bool          `mapstructure:"auto_migrate"`
	Retry        RetryConfig   `mapstructure:"retry"`
}

// DSN 按驱动拼接连接串
func (c DatabaseConfig) DSN() (string, error) {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Name), nil
	case "sqlite":
		return c.Name, nil
	}
	return "", fmt.Errorf("unsupported database driver: %s", c.Driver)
}

// RedisConfig 视图状态存储配置，未启用时使用内存存储
type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Addr       string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	SessionTTL time.Duration `mapstructure:"session_ttl"` // 浏览会话过期时间
	Breaker    CircuitConfig `mapstructure:"breaker"`
}

// AuthConfig 令牌校验配置
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// TreeConfig 家谱树展示配置
type TreeConfig struct {
	Locale           string `mapstructure:"locale" validate:"required"`          // 姓名排序语言
	ExpandGeneration int    `mapstructure:"expand_generation" validate:"gte=0"` // 默认展开到第几代
	PageSize         int    `mapstructure:"page_size" validate:"gt=0"`
	MaxPageSize      int    `mapstructure:"max_page_size" validate:"gtefield=PageSize"`
}

// Language 解析排序语言，无法识别时回退到印尼语
func (c TreeConfig) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Indonesian
	}
	return tag
}

// legacyEnv 兼容旧的环境变量名
var legacyEnv = map[string]string{
	"server.port":       "PORT",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
	"redis.addr":        "REDIS_ADDR",
	"redis.password":    "REDIS_PASSWORD",
	"auth.jwt_secret":   "JWT_SECRET",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "silsilah")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.retry.max_attempts", 5)
	v.SetDefault("database.retry.initial_interval", 500*time.Millisecond)
	v.SetDefault("database.retry.max_interval", 10*time.Second)
	v.SetDefault("database.retry.multiplier", 2.0)
	v.SetDefault("database.retry.strategy", string(RetryStrategyExponential))

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.session_ttl", 24*time.Hour)
	v.SetDefault("redis.breaker.failure_threshold", 3)
	v.SetDefault("redis.breaker.reset_timeout", 30*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "silsilah")
	v.SetDefault("logger.file_path", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.enable_caller", true)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("tree.locale", "id")
	v.SetDefault("tree.expand_generation", 1)
	v.SetDefault("tree.page_size", 20)
	v.SetDefault("tree.max_page_size", 200)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rate", 5.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)
}

// LoadConfig 加载配置：.env、配置文件（可选）、环境变量，后者覆盖前者
func LoadConfig(path string) (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SILSILAH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		envKey := "SILSILAH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := NewValidator().Struct(&cfg); err != nil {
		return nil, NewError(ErrConfig, "invalid configuration", err)
	}
	return &cfg, nil
}
