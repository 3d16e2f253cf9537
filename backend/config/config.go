package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config 应用全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Feature  FeatureConfig  `mapstructure:"feature"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	BodyLimit    int64         `mapstructure:"body_limit"`   // bytes
	UploadLimit  int64         `mapstructure:"upload_limit"` // bytes, multipart attachments
	RateLimit    int           `mapstructure:"rate_limit"`   // requests per minute per client, 0 disables
	CORS         CORSConfig    `mapstructure:"cors"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// 数据库驱动
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// DatabaseConfig 记录存储配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	Path            string `mapstructure:"path"` // sqlite file, ":memory:" allowed
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 连接配置，Addr 为空时不启用
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig S3 兼容的附件存储配置，Bucket 为空时禁用上传
type StorageConfig struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	Endpoint         string `mapstructure:"endpoint"`
	CloudFrontDomain string `mapstructure:"cloudfront_domain"`
	KeyPrefix        string `mapstructure:"key_prefix"`
}

// 序列后端
const (
	SequenceDatabase = "database"
	SequenceRedis    = "redis"
	SequenceMemory   = "memory"
)

// EngineConfig 记录生命周期引擎配置
type EngineConfig struct {
	IDYearNamespace bool   `mapstructure:"id_year_namespace"`
	NCRReopen       string `mapstructure:"ncr_reopen"` // flagged | deny
	SequenceBackend string `mapstructure:"sequence_backend"`
	IDAttempts      int    `mapstructure:"id_attempts"`
}

// FeatureConfig 可选后台功能
type FeatureConfig struct {
	// OverdueSweepCron robfig/cron 表达式，为空则不执行逾期扫描
	OverdueSweepCron string `mapstructure:"overdue_sweep_cron"`
}

// Load 从配置文件与环境变量加载配置
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.upload_limit", 20<<20)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "depot_records")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.path", "depot.db")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)
	v.SetDefault("db.auto_migrate", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("storage.region", "ap-south-1")
	v.SetDefault("storage.key_prefix", "attachments/")

	v.SetDefault("engine.id_year_namespace", true)
	v.SetDefault("engine.ncr_reopen", "flagged")
	v.SetDefault("engine.sequence_backend", SequenceDatabase)
	v.SetDefault("engine.id_attempts", 8)

	v.SetDefault("feature.overdue_sweep_cron", "")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("DEPOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// 无配置文件：仅使用默认值与环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("invalid config: db.driver %q is not one of postgres, sqlite, memory", c.Database.Driver)
	}
	switch c.Engine.NCRReopen {
	case "flagged", "deny":
	default:
		return fmt.Errorf("invalid config: engine.ncr_reopen %q is not one of flagged, deny", c.Engine.NCRReopen)
	}
	switch c.Engine.SequenceBackend {
	case SequenceDatabase, SequenceMemory:
	case SequenceRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("invalid config: engine.sequence_backend redis requires redis.addr")
		}
	default:
		return fmt.Errorf("invalid config: engine.sequence_backend %q is not one of database, redis, memory", c.Engine.SequenceBackend)
	}
	if c.Engine.SequenceBackend == SequenceDatabase && c.Database.Driver == DriverMemory {
		return fmt.Errorf("invalid config: engine.sequence_backend database requires a sql db.driver")
	}
	if c.Engine.IDAttempts <= 0 {
		return fmt.Errorf("invalid config: engine.id_attempts must be positive")
	}
	if spec := c.Feature.OverdueSweepCron; spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid config: feature.overdue_sweep_cron: %w", err)
		}
	}
	return nil
}
