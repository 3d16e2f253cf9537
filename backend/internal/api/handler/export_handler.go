package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"depot-records/backend/internal/dto"
	"depot-records/backend/internal/model"
	"depot-records/backend/internal/service"
	"depot-records/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 台账下载与日历订阅
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// ExportRegister 导出台账 xlsx，支持列表过滤条件
// GET /api/v1/export/{kind}.xlsx
func (h *ExportHandler) ExportRegister(c *gin.Context) {
	kind, ok := MustGetKind(c)
	if !ok {
		return
	}
	var req dto.ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid query parameters")
		return
	}

	buf, filename, err := h.exportSvc.ExportRegister(c.Request.Context(), kind, req.Filter())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// JobCardCalendar 以 iCalendar 发布未完成的作业卡
// GET /api/v1/calendar/job-cards.ics
func (h *ExportHandler) JobCardCalendar(c *gin.Context) {
	var req dto.ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid query parameters")
		return
	}

	feed, err := h.calendarSvc.JobCardFeed(c.Request.Context(), req.Filter())
	if err != nil {
		handleRecordError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+KindSlug(model.EntityJobCard)+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, codeExportEmpty, "no records match the export filter")
	case errors.Is(err, service.ErrExportTooLarge):
		response.BadRequest(c, codeExportTooLarge, "too many records to export, narrow the filter")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleRecordError(c, err)
	}
}
