package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"

	"depot-records/backend/config"
)

// NewLogger 初始化 Zap 日志
// console 格式使用开发模式编码器与彩色级别，其余使用生产 JSON 编码器
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}

// GormLevel 将应用日志级别映射为 gorm SQL 日志级别
// 仅 debug 级别输出 SQL 语句
func GormLevel(level string) gormlogger.LogLevel {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return gormlogger.Warn
	}
	switch {
	case lvl <= zapcore.DebugLevel:
		return gormlogger.Info
	case lvl <= zapcore.WarnLevel:
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
