package dto

import (
	"encoding/json"
	"time"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

// ── 记录请求 ──

// ListRecordsRequest GET /{kind}
type ListRecordsRequest struct {
	PaginationRequest
	Status    string `form:"status"    binding:"omitempty,max=32"`
	TrainID   string `form:"trainId"   binding:"omitempty,max=16"`
	CarID     string `form:"carId"     binding:"omitempty,max=16"`
	Query     string `form:"q"         binding:"omitempty,max=100"`
	DueBefore string `form:"dueBefore" binding:"omitempty,datetime=2006-01-02"`
}

// Filter 将查询参数转换为存储层过滤条件
func (r *ListRecordsRequest) Filter() engine.ListFilter {
	f := engine.ListFilter{
		Status:  r.Status,
		TrainID: r.TrainID,
		CarID:   r.CarID,
		Query:   r.Query,
		Offset:  r.GetOffset(),
		Limit:   r.GetPageSize(),
	}
	if d, err := model.ParseDate(r.DueBefore); err == nil {
		f.DueBefore = &d
	}
	return f
}

// EditRecordRequest PATCH /{kind}/:id
//
// Patch 单独解码，保留数字的原始文本
type EditRecordRequest struct {
	ExpectedUpdatedAt *time.Time      `json:"expectedUpdatedAt" binding:"required"`
	Patch             json.RawMessage `json:"patch"             binding:"required"`
}

// TransitionRecordRequest POST /{kind}/:id/transitions
type TransitionRecordRequest struct {
	Status            string     `json:"status"            binding:"required,max=32"`
	Reopen            bool       `json:"reopen"`
	Reason            string     `json:"reason"            binding:"omitempty,max=1000"`
	ExpectedUpdatedAt *time.Time `json:"expectedUpdatedAt"`
}

// ToEngine 构造引擎请求
func (r *TransitionRecordRequest) ToEngine() engine.TransitionRequest {
	return engine.TransitionRequest{
		To:                r.Status,
		Reopen:            r.Reopen,
		Reason:            r.Reason,
		ExpectedUpdatedAt: r.ExpectedUpdatedAt,
	}
}

// ── 记录响应 ──

// ValidateResponse POST /{kind}/validate
type ValidateResponse struct {
	Valid  bool               `json:"valid"`
	Errors engine.FieldErrors `json:"errors"`
}

// TransitionResponse 已接受的状态流转及其流水事件
type TransitionResponse struct {
	Record model.Record           `json:"record"`
	Event  *model.TransitionEvent `json:"event"`
}

// TransitionErrorData 409 状态流转拒绝的响应体
type TransitionErrorData struct {
	Code      engine.TransitionErrorCode `json:"code"`
	From      string                     `json:"from"`
	To        string                     `json:"to"`
	Invariant string                     `json:"invariant,omitempty"`
	Errors    engine.FieldErrors         `json:"errors,omitempty"`
}

// OptionsResponse GET /options
type OptionsResponse struct {
	JobCardCategories []model.JobCardCategory `json:"jobCardCategories"`
	Priorities        []model.Priority        `json:"priorities"`
	JobCardStatuses   []model.JobCardStatus   `json:"jobCardStatuses"`
	NCRStatuses       []model.NCRStatus       `json:"ncrStatuses"`
	Modifications     []model.Modification    `json:"modifications"`
	Responsibilities  []model.Responsibility  `json:"responsibilities"`
	NCRSources        []model.NCRSource       `json:"ncrSources"`
	RepairOutcomes    []model.RepairOutcome   `json:"repairOutcomes"`
	LetterDirections  []model.LetterDirection `json:"letterDirections"`
	ContractStatuses  []model.ContractStatus  `json:"contractStatuses"`
	Subsystems        []model.Subsystem       `json:"subsystems"`
}

// NewOptionsResponse 列出全部选项集
func NewOptionsResponse() OptionsResponse {
	return OptionsResponse{
		JobCardCategories: model.JobCardCategories(),
		Priorities:        model.Priorities(),
		JobCardStatuses:   model.JobCardStatuses(),
		NCRStatuses:       model.NCRStatuses(),
		Modifications:     model.Modifications(),
		Responsibilities:  model.Responsibilities(),
		NCRSources:        model.NCRSources(),
		RepairOutcomes:    model.RepairOutcomes(),
		LetterDirections:  model.LetterDirections(),
		ContractStatuses:  model.ContractStatuses(),
		Subsystems:        model.Subsystems(),
	}
}

// AttachmentResponse POST /attachments
type AttachmentResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// ── 导入 ──

// ImportRowError 被拒绝的工作表行
type ImportRowError struct {
	Row    int                `json:"row"`
	Errors engine.FieldErrors `json:"errors,omitempty"`
	Reason string             `json:"reason,omitempty"`
}

// ImportResponse POST /{kind}/import
type ImportResponse struct {
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Failed  int              `json:"failed"`
	IDs     []string         `json:"ids"`
	Errors  []ImportRowError `json:"errors"`
}
