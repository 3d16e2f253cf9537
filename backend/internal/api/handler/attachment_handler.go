package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"depot-records/backend/internal/service"
	"depot-records/backend/pkg/response"
)

// AttachmentHandler 接收 NCR 报告与函件的附件
type AttachmentHandler struct {
	attachmentSvc service.AttachmentService
	uploadLimit   int64
}

func NewAttachmentHandler(attachmentSvc service.AttachmentService, uploadLimit int64) *AttachmentHandler {
	return &AttachmentHandler{attachmentSvc: attachmentSvc, uploadLimit: uploadLimit}
}

// UploadAttachment 上传附件
// POST /api/v1/attachments（multipart，字段 "file"）
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeBadRequest, "file is required")
		return
	}
	defer file.Close()
	if h.uploadLimit > 0 && header.Size > h.uploadLimit {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	att, err := h.attachmentSvc.Upload(c.Request.Context(), header.Filename, contentType, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttachmentsDisabled):
			response.ServiceUnavailable(c, codeAttachmentDisabled, "attachment storage is not configured")
		case errors.Is(err, service.ErrAttachmentType):
			response.Error(c, http.StatusUnsupportedMediaType, codeAttachmentType, "file type is not allowed")
		case errors.Is(err, service.ErrAttachmentEmpty):
			response.BadRequest(c, codeAttachmentEmpty, "file is empty")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, att)
}
