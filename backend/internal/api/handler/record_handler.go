package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"depot-records/backend/internal/dto"
	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/service"
	"depot-records/backend/pkg/response"
)

// RecordHandler 各类记录的生命周期接口
// 记录类型由路由分组决定（见 WithKind）
type RecordHandler struct {
	recordSvc   service.RecordService
	importSvc   service.ImportService
	uploadLimit int64
}

func NewRecordHandler(recordSvc service.RecordService, importSvc service.ImportService, uploadLimit int64) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc, importSvc: importSvc, uploadLimit: uploadLimit}
}

// bindDocument 将请求体解码为 JSON 对象
func bindDocument(c *gin.Context) (engine.Document, bool) {
	doc, err := engine.DecodeDocument(c.Request.Body)
	if err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			return nil, false
		}
		response.BadRequest(c, codeBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return doc, true
}

// CreateRecord 创建记录
// POST /api/v1/{kind}
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	kind, ok := MustGetKind(c)
	if !ok {
		return
	}
	draft, ok := bindDocument(c)
	if !ok {
		return
	}

	rec, err := h.recordSvc.Create(c.Request.Context(), kind, draft, Actor(c))
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.Created(c, rec)
}

// ListRecords 记录列表
// GET /api/v1/{kind}?status=&trainId=&carId=&q=&dueBefore=&page=&pageSize=
func (h *RecordHandler) ListRecords(c *gin.Context) {
	kind, ok := MustGetKind(c)
	if !ok {
		return
	}
	var req dto.ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid query parameters")
		return
	}

	list, total, err := h.recordSvc.List(c.Request.Context(), kind, req.Filter())
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetRecord 记录详情
// GET /api/v1/{kind}/:id
func (h *RecordHandler) GetRecord(c *gin.Context) {
	kind, ok := MustGetKind(c)
	if !ok {
		return
	}

	rec, err := h.recordSvc.Get(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OK(c, rec)
}

// EditRecord 编辑记录
// PATCH /api/v1/{kind}/:id
func (h *RecordHandler) EditRecord(c *gin.Context) {
	kind, ok := MustGetKind(c)
	if !ok {
		return
	}
	var req dto.EditRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			return
		}
		response.BadRequest(c, codeBadRequest, "expectedUpdatedAt and patch are required")
		return
	}
	patch, err := engine.ParseDocument(req.Patch)
	if err != nil {
		response.BadRequest(c, codeBadRequest, "patch must be a JSON object")
		return
	}

	rec, err := h.recordSvc.Edit(c.Request.Context(), kind, c.Param("id"), patch, *req.ExpectedUpdatedAt, Actor(c))
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OK(c, rec)
}

// TransitionRecord 状态流转
// POST /api/v1/{kind}/:id/transitions
func (h *RecordHandler) TransitionRecord(c *gin.Context) {
	kind, ok := MustGetKind(c)
	if !ok {
		return
	}
	var req dto.TransitionRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "status is required")
		return
	}

	res, err := h.recordSvc.Transition(c.Request.Context(), kind, c.Param("id"), req.ToEngine(), Actor(c))
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OK(c, dto.TransitionResponse{Record: res.Record, Event: res.Event})
}

// GetHistory 状态流转历史
// GET /api/v1/{kind}/:id/history
func (h *RecordHandler) GetHistory(c *gin.Context) {
	kind, ok := MustGetKind(c)
	if !ok {
		return
	}

	events, err := h.recordSvc.History(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// ValidateRecord 创建校验试运行
// POST /api/v1/{kind}/validate
func (h *RecordHandler) ValidateRecord(c *gin.Context) {
	kind, ok := MustGetKind(c)
	if !ok {
		return
	}
	candidate, ok := bindDocument(c)
	if !ok {
		return
	}

	errs, err := h.recordSvc.Validate(c.Request.Context(), kind, candidate)
	if err != nil {
		handleRecordError(c, err)
		return
	}
	if errs == nil {
		errs = engine.FieldErrors{}
	}

	response.OK(c, dto.ValidateResponse{Valid: len(errs) == 0, Errors: errs})
}

// ImportRecords 从上传的工作簿批量创建记录
// POST /api/v1/{kind}/import（multipart，字段 "file"）
func (h *RecordHandler) ImportRecords(c *gin.Context) {
	kind, ok := MustGetKind(c)
	if !ok {
		return
	}
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

	rows, err := h.importSvc.ParseImportFile(kind, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportNoData),
			errors.Is(err, service.ErrImportTooManyRows),
			errors.Is(err, service.ErrImportBadHeader):
			response.BadRequest(c, codeImportInvalid, err.Error())
		default:
			response.BadRequest(c, codeImportInvalid, "cannot read workbook")
		}
		return
	}

	result, err := h.importSvc.ImportRecords(c.Request.Context(), kind, rows, Actor(c))
	if err != nil {
		handleRecordError(c, err)
		return
	}

	response.OK(c, result)
}
