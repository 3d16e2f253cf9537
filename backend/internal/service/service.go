package service

import (
	"time"

	"go.uber.org/zap"

	"depot-records/backend/config"
	"depot-records/backend/internal/engine"
)

// Service 聚合所有 Service
type Service struct {
	Records     RecordService
	Export      ExportService
	Import      ImportService
	Calendar    CalendarService
	Attachments AttachmentService
	Sweeper     *OverdueSweeper
}

// NewService 围绕引擎装配各服务，未配置附件存储时 uploader 可为 nil
func NewService(
	cfg *config.Config,
	eng *engine.Engine,
	uploader ObjectUploader,
	now func() time.Time,
	logger *zap.Logger,
) *Service {
	records := NewRecordService(eng, logger)
	return &Service{
		Records:     records,
		Export:      NewExportService(records, now, logger),
		Import:      NewImportService(records, logger),
		Calendar:    NewCalendarService(records, calendarDomain(cfg.Server.BaseURL), now, logger),
		Attachments: NewAttachmentService(uploader, cfg.Storage.KeyPrefix, now, logger),
		Sweeper:     NewOverdueSweeper(records, cfg.Feature.OverdueSweepCron, now, logger),
	}
}
