package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"depot-records/backend/config"
	"depot-records/backend/internal/api/handler"
	"depot-records/backend/internal/api/middleware"
	"depot-records/backend/internal/model"
)

// Setup 初始化 Gin 引擎，limiter 为 nil 时不限流
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.Limiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Actor())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", h.Meta.Health)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(limiter, cfg.Server.RateLimit, time.Minute))
	{
		v1.GET("/options", h.Meta.GetOptions)

		// 上传使用 server.upload_limit，而不是 JSON 请求体限制
		v1.POST("/attachments", middleware.BodyLimit(cfg.Server.UploadLimit), h.Attachment.UploadAttachment)

		// 记录台账
		for _, kind := range model.EntityTypes() {
			records := v1.Group("/"+handler.KindSlug(kind), handler.WithKind(kind))
			{
				records.GET("", h.Record.ListRecords)
				records.POST("", middleware.BodyLimit(cfg.Server.BodyLimit), h.Record.CreateRecord)
				records.POST("/validate", middleware.BodyLimit(cfg.Server.BodyLimit), h.Record.ValidateRecord)
				records.POST("/import", middleware.BodyLimit(cfg.Server.UploadLimit), h.Record.ImportRecords)
				records.GET("/:id", h.Record.GetRecord)
				records.PATCH("/:id", middleware.BodyLimit(cfg.Server.BodyLimit), h.Record.EditRecord)
				records.POST("/:id/transitions", middleware.BodyLimit(cfg.Server.BodyLimit), h.Record.TransitionRecord)
				records.GET("/:id/history", h.Record.GetHistory)
			}
		}

		// 导出
		export := v1.Group("/export")
		{
			for _, kind := range model.EntityTypes() {
				export.GET("/"+handler.KindSlug(kind)+".xlsx", handler.WithKind(kind), h.Export.ExportRegister)
			}
		}

		v1.GET("/calendar/job-cards.ics", h.Export.JobCardCalendar)
	}

	return r
}
