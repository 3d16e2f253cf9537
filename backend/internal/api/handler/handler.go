package handler

import "depot-records/backend/internal/service"

// Handler 聚合所有 Handler
type Handler struct {
	Record     *RecordHandler
	Export     *ExportHandler
	Attachment *AttachmentHandler
	Meta       *MetaHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, uploadLimit int64, checks map[string]Pinger) *Handler {
	return &Handler{
		Record:     NewRecordHandler(svc.Records, svc.Import, uploadLimit),
		Export:     NewExportHandler(svc.Export, svc.Calendar),
		Attachment: NewAttachmentHandler(svc.Attachments, uploadLimit),
		Meta:       NewMetaHandler(checks),
	}
}
