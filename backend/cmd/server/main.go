package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"depot-records/backend/config"
	"depot-records/backend/internal/app"
	applogger "depot-records/backend/pkg/logger"
)

func main() {
	// 1. 加载 .env（可选）与配置
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("DEPOT_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting depot records server",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("sequence_backend", cfg.Engine.SequenceBackend),
	)

	// 3. 依赖注入：Repository → Engine → Service → Handler
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("wire application", zap.Error(err))
	}
	defer a.Close()

	// 4. 后台任务
	if err := a.Service.Sweeper.Start(); err != nil {
		logger.Fatal("start overdue sweep", zap.Error(err))
	}

	// 5. 启动 HTTP 服务并优雅关闭
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	select {
	case <-a.Service.Sweeper.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("overdue sweep still running at shutdown")
	}

	logger.Info("server stopped")
}
