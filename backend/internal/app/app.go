package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"depot-records/backend/config"
	"depot-records/backend/internal/api/handler"
	"depot-records/backend/internal/api/middleware"
	"depot-records/backend/internal/api/router"
	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/repository"
	"depot-records/backend/internal/service"
	"depot-records/backend/pkg/database"
	applogger "depot-records/backend/pkg/logger"
	"depot-records/backend/pkg/redis"
	"depot-records/backend/pkg/s3"
)

// App 装配完成的依赖图：Repository → Engine → Service → Handler
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *gorm.DB      // nil with the memory driver
	Redis   *redis.Client // nil when redis.addr is empty
	Engine  *engine.Engine
	Service *service.Service
	Handler *handler.Handler
}

// New 连接配置的后端并装配引擎
// Redis 可选，除非它承载编号序列
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	// 1. 记录存储
	var repo *repository.Repository
	if cfg.Database.Driver == config.DriverMemory {
		repo = repository.NewMemoryRepository()
		logger.Warn("using in-memory record store, records are lost on exit")
	} else {
		db, err := database.NewDB(&cfg.Database, applogger.GormLevel(cfg.Log.Level), logger)
		if err != nil {
			return nil, err
		}
		a.DB = db
		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(db, repository.Models(), logger); err != nil {
				a.Close()
				return nil, err
			}
		}
		repo = repository.NewRepository(db)
	}

	// 2. Redis
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			if cfg.Engine.SequenceBackend == config.SequenceRedis {
				a.Close()
				return nil, err
			}
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			a.Redis = rdb
		}
	}

	// 3. 编号序列
	counter := repo.Sequences
	switch cfg.Engine.SequenceBackend {
	case config.SequenceRedis:
		counter = repository.NewRedisCounter(a.Redis)
	case config.SequenceMemory:
		counter = engine.NewMemoryCounter()
	}

	// 4. 附件存储
	var uploader service.ObjectUploader
	if cfg.Storage.Bucket != "" {
		up, err := s3.NewUploader(ctx, cfg.Storage)
		if err != nil {
			a.Close()
			return nil, err
		}
		uploader = up
	}

	// 5. 引擎与服务
	a.Engine = engine.New(repo.Records, engine.NewGenerator(counter, cfg.Engine.IDYearNamespace),
		engine.WithJournal(repo.Events),
		engine.WithLogger(logger),
		engine.WithReopenPolicy(engine.ReopenPolicy(cfg.Engine.NCRReopen)),
		engine.WithIDAttempts(cfg.Engine.IDAttempts),
	)
	a.Service = service.NewService(cfg, a.Engine, uploader, time.Now, logger)
	a.Handler = handler.NewHandler(a.Service, cfg.Server.UploadLimit, a.healthChecks())
	return a, nil
}

func (a *App) healthChecks() map[string]handler.Pinger {
	checks := map[string]handler.Pinger{}
	if a.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis.Ping
	}
	return checks
}

// Router 构建 HTTP 路由
func (a *App) Router() *gin.Engine {
	// nil 的 *redis.Client 不能变成非 nil 的 Limiter
	var limiter middleware.Limiter
	if a.Redis != nil {
		limiter = a.Redis
	}
	return router.Setup(a.Config, a.Handler, limiter, a.Logger)
}

// Migrate 执行数据库迁移，不受 db.auto_migrate 影响
func (a *App) Migrate() error {
	if a.DB == nil {
		return fmt.Errorf("db driver %q has no schema to migrate", a.Config.Database.Driver)
	}
	return database.RunMigrations(a.DB, repository.Models(), a.Logger)
}

// Close 释放数据库与 Redis 连接
func (a *App) Close() {
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
}
