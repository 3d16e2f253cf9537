package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"depot-records/backend/internal/api/middleware"
	"depot-records/backend/internal/dto"
	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
	"depot-records/backend/internal/service"
	"depot-records/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock 服务
// ═══════════════════════════════════════════════════════════

// ── Mock RecordService ──

type mockRecordService struct {
	createResult     model.Record
	createErr        error
	getResult        model.Record
	getErr           error
	listResult       []model.Record
	listTotal        int64
	listErr          error
	editResult       model.Record
	editErr          error
	transitionResult *engine.TransitionResult
	transitionErr    error
	validateResult   engine.FieldErrors
	validateErr      error
	historyResult    []model.TransitionEvent
	historyErr       error

	gotKind    model.EntityType
	gotActor   string
	gotDoc     engine.Document
	gotFilter  engine.ListFilter
	gotRequest engine.TransitionRequest
}

func (m *mockRecordService) Create(_ context.Context, kind model.EntityType, draft engine.Document, actor string) (model.Record, error) {
	m.gotKind, m.gotDoc, m.gotActor = kind, draft, actor
	return m.createResult, m.createErr
}
func (m *mockRecordService) Get(_ context.Context, kind model.EntityType, _ string) (model.Record, error) {
	m.gotKind = kind
	return m.getResult, m.getErr
}
func (m *mockRecordService) List(_ context.Context, kind model.EntityType, filter engine.ListFilter) ([]model.Record, int64, error) {
	m.gotKind, m.gotFilter = kind, filter
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockRecordService) Edit(_ context.Context, kind model.EntityType, _ string, patch engine.Document, _ time.Time, actor string) (model.Record, error) {
	m.gotKind, m.gotDoc, m.gotActor = kind, patch, actor
	return m.editResult, m.editErr
}
func (m *mockRecordService) Transition(_ context.Context, kind model.EntityType, _ string, req engine.TransitionRequest, actor string) (*engine.TransitionResult, error) {
	m.gotKind, m.gotRequest, m.gotActor = kind, req, actor
	return m.transitionResult, m.transitionErr
}
func (m *mockRecordService) Validate(_ context.Context, kind model.EntityType, candidate engine.Document) (engine.FieldErrors, error) {
	m.gotKind, m.gotDoc = kind, candidate
	return m.validateResult, m.validateErr
}
func (m *mockRecordService) History(_ context.Context, kind model.EntityType, _ string) ([]model.TransitionEvent, error) {
	m.gotKind = kind
	return m.historyResult, m.historyErr
}

// ── Mock ImportService ──

type mockImportService struct {
	rows      []service.ImportRow
	parseErr  error
	result    *dto.ImportResponse
	importErr error
}

func (m *mockImportService) ParseImportFile(_ model.EntityType, _ io.Reader) ([]service.ImportRow, error) {
	return m.rows, m.parseErr
}
func (m *mockImportService) ImportRecords(_ context.Context, _ model.EntityType, _ []service.ImportRow, _ string) (*dto.ImportResponse, error) {
	return m.result, m.importErr
}

// ── Mock ExportService / CalendarService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportRegister(_ context.Context, _ model.EntityType, _ engine.ListFilter) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

type mockCalendarService struct {
	feed string
	err  error
}

func (m *mockCalendarService) JobCardFeed(_ context.Context, _ engine.ListFilter) (string, error) {
	return m.feed, m.err
}

// ── Mock AttachmentService ──

type mockAttachmentService struct {
	result *dto.AttachmentResponse
	err    error
}

func (m *mockAttachmentService) Upload(_ context.Context, _, _ string, _ int64, _ io.Reader) (*dto.AttachmentResponse, error) {
	return m.result, m.err
}

// ═══════════════════════════════════════════════════════════
// 测试辅助
// ═══════════════════════════════════════════════════════════

func recordRouter(h *RecordHandler, kind model.EntityType) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Actor())
	g := r.Group("/"+KindSlug(kind), WithKind(kind))
	g.GET("", h.ListRecords)
	g.POST("", h.CreateRecord)
	g.POST("/validate", h.ValidateRecord)
	g.POST("/import", h.ImportRecords)
	g.GET("/:id", h.GetRecord)
	g.PATCH("/:id", h.EditRecord)
	g.POST("/:id/transitions", h.TransitionRecord)
	g.GET("/:id/history", h.GetHistory)
	return r
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, "inspector-7")
	r.ServeHTTP(w, req)
	return w
}

func sampleJobCard() *model.JobCard {
	return &model.JobCard{
		JCNo:     "JC-2025-0001",
		TrainID:  "TS01",
		CarID:    "DMC1",
		Category: model.CategoryInspection,
		Priority: model.PriorityMedium,
		Status:   model.JobCardPending,
		DueDate:  model.NewDate(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
	}
}

// ═══════════════════════════════════════════════════════════
// RecordHandler 测试
// ═══════════════════════════════════════════════════════════

func TestRecordHandler_Create_Success(t *testing.T) {
	mock := &mockRecordService{createResult: sampleJobCard()}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityJobCard)

	w := serve(r, "POST", "/job-cards", strings.NewReader(`{"trainId":"TS01","carId":"DMC1","quantity":2}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotKind != model.EntityJobCard {
		t.Errorf("expected kind job_card, got %s", mock.gotKind)
	}
	if mock.gotActor != "inspector-7" {
		t.Errorf("expected actor inspector-7, got %q", mock.gotActor)
	}
	if _, ok := mock.gotDoc["quantity"].(json.Number); !ok {
		t.Errorf("numbers should decode as json.Number, got %T", mock.gotDoc["quantity"])
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	if data["jcNo"] != "JC-2025-0001" {
		t.Errorf("expected jcNo in response, got %v", resp.Data)
	}
}

func TestRecordHandler_Create_BadJSON(t *testing.T) {
	r := recordRouter(NewRecordHandler(&mockRecordService{}, &mockImportService{}, 0), model.EntityJobCard)

	w := serve(r, "POST", "/job-cards", strings.NewReader("[1,2"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRecordHandler_Create_ValidationFailed(t *testing.T) {
	mock := &mockRecordService{createErr: &engine.ValidationError{Fields: engine.FieldErrors{
		"trainId": {"is required"},
	}}}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityJobCard)

	w := serve(r, "POST", "/job-cards", jsonBody(map[string]string{"carId": "DMC1"}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != codeValidationFailed {
		t.Errorf("expected code %d, got %d", codeValidationFailed, resp.Code)
	}
	data, _ := resp.Data.(map[string]interface{})
	fields, _ := data["errors"].(map[string]interface{})
	if _, ok := fields["trainId"]; !ok {
		t.Errorf("expected trainId in data.errors, got %v", resp.Data)
	}
}

func TestRecordHandler_Create_SequenceExhausted(t *testing.T) {
	mock := &mockRecordService{createErr: engine.ErrSequenceExhausted}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityLetter)

	w := serve(r, "POST", "/letters", jsonBody(map[string]string{"subject": "x"}))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestRecordHandler_Create_ActorTooLong(t *testing.T) {
	mock := &mockRecordService{createErr: engine.ErrActorTooLong}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityLetter)

	w := serve(r, "POST", "/letters", jsonBody(map[string]string{"subject": "x"}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeActorRequired {
		t.Errorf("expected code %d, got %d", codeActorRequired, resp.Code)
	}
}

func TestRecordHandler_Create_DefaultActor(t *testing.T) {
	mock := &mockRecordService{createResult: sampleJobCard()}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityJobCard)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/job-cards", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	if mock.gotActor != middleware.DefaultActor {
		t.Errorf("expected actor %q, got %q", middleware.DefaultActor, mock.gotActor)
	}
}

func TestRecordHandler_Get_NotFound(t *testing.T) {
	mock := &mockRecordService{getErr: engine.ErrNotFound}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityVendor)

	w := serve(r, "GET", "/vendors/VEN-0099", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeNotFound {
		t.Errorf("expected code %d, got %d", codeNotFound, resp.Code)
	}
}

func TestRecordHandler_List_Filters(t *testing.T) {
	mock := &mockRecordService{listResult: []model.Record{sampleJobCard()}, listTotal: 41}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityJobCard)

	w := serve(r, "GET", "/job-cards?status=pending&trainId=TS01&q=brake&dueBefore=2025-07-01&page=3&pageSize=20", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	f := mock.gotFilter
	if f.Status != "pending" || f.TrainID != "TS01" || f.Query != "brake" {
		t.Errorf("unexpected filter %+v", f)
	}
	if f.Offset != 40 || f.Limit != 20 {
		t.Errorf("expected offset 40 limit 20, got %d/%d", f.Offset, f.Limit)
	}
	if f.DueBefore == nil || f.DueBefore.String() != "2025-07-01" {
		t.Errorf("expected dueBefore 2025-07-01, got %v", f.DueBefore)
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	pagination, _ := data["pagination"].(map[string]interface{})
	if pagination["totalPages"] != float64(3) {
		t.Errorf("expected 3 pages, got %v", pagination["totalPages"])
	}
}

func TestRecordHandler_List_BadQuery(t *testing.T) {
	r := recordRouter(NewRecordHandler(&mockRecordService{}, &mockImportService{}, 0), model.EntityJobCard)

	w := serve(r, "GET", "/job-cards?dueBefore=tomorrow", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRecordHandler_Edit_MissingExpectedUpdatedAt(t *testing.T) {
	r := recordRouter(NewRecordHandler(&mockRecordService{}, &mockImportService{}, 0), model.EntityNCRReport)

	w := serve(r, "PATCH", "/ncr-reports/NCR-2025-0001", jsonBody(map[string]interface{}{
		"patch": map[string]interface{}{"remarks": "x"},
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRecordHandler_Edit_Conflict(t *testing.T) {
	mock := &mockRecordService{editErr: engine.ErrConflict}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityNCRReport)

	w := serve(r, "PATCH", "/ncr-reports/NCR-2025-0001", jsonBody(map[string]interface{}{
		"expectedUpdatedAt": "2025-06-10T08:00:01Z",
		"patch":             map[string]interface{}{"remarks": "x"},
	}))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeConflict {
		t.Errorf("expected code %d, got %d", codeConflict, resp.Code)
	}
	if mock.gotDoc["remarks"] != "x" {
		t.Errorf("patch not forwarded: %v", mock.gotDoc)
	}
}

func TestRecordHandler_Transition_Success(t *testing.T) {
	jc := sampleJobCard()
	jc.Status = model.JobCardInProgress
	mock := &mockRecordService{transitionResult: &engine.TransitionResult{
		Record: jc,
		Event:  &model.TransitionEvent{FromStatus: "pending", ToStatus: "in_progress"},
	}}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityJobCard)

	w := serve(r, "POST", "/job-cards/JC-2025-0001/transitions", jsonBody(map[string]interface{}{
		"status": "in_progress",
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotRequest.To != "in_progress" {
		t.Errorf("expected target in_progress, got %q", mock.gotRequest.To)
	}
}

func TestRecordHandler_Transition_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{
			name:     "invalid",
			err:      &engine.TransitionError{Code: engine.CodeInvalidTransition, Entity: model.EntityNCRReport, From: "Closed", To: "Open"},
			wantHTTP: http.StatusConflict,
			wantCode: codeInvalidTransition,
		},
		{
			name: "guard",
			err: &engine.TransitionError{Code: engine.CodeGuardFailed, Entity: model.EntityNCRReport, From: "Open", To: "Closed",
				Invariant: engine.InvariantClosure, Fields: engine.FieldErrors{"ncrClosedByDocument": {"must be true when status is Closed"}}},
			wantHTTP: http.StatusConflict,
			wantCode: codeGuardFailed,
		},
		{
			name:     "stale",
			err:      engine.ErrConflict,
			wantHTTP: http.StatusConflict,
			wantCode: codeConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRecordService{transitionErr: tt.err}
			r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityNCRReport)

			w := serve(r, "POST", "/ncr-reports/NCR-2025-0001/transitions", jsonBody(map[string]interface{}{
				"status": "Closed",
			}))

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestRecordHandler_Transition_GuardDetails(t *testing.T) {
	mock := &mockRecordService{transitionErr: &engine.TransitionError{
		Code: engine.CodeGuardFailed, From: "Open", To: "Closed", Invariant: engine.InvariantClosure,
	}}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityNCRReport)

	w := serve(r, "POST", "/ncr-reports/NCR-2025-0001/transitions", jsonBody(map[string]interface{}{
		"status": "Closed",
	}))

	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	if data["code"] != string(engine.CodeGuardFailed) || data["invariant"] != engine.InvariantClosure {
		t.Errorf("unexpected data %v", resp.Data)
	}
}

func TestRecordHandler_Transition_MissingStatus(t *testing.T) {
	r := recordRouter(NewRecordHandler(&mockRecordService{}, &mockImportService{}, 0), model.EntityJobCard)

	w := serve(r, "POST", "/job-cards/JC-2025-0001/transitions", jsonBody(map[string]interface{}{}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRecordHandler_Validate(t *testing.T) {
	mock := &mockRecordService{validateResult: engine.FieldErrors{"email": {"must be a valid email address"}}}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityVendor)

	w := serve(r, "POST", "/vendors/validate", jsonBody(map[string]string{"name": "Acme", "email": "nope"}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	if data["valid"] != false {
		t.Errorf("expected valid=false, got %v", data["valid"])
	}
}

func TestRecordHandler_History(t *testing.T) {
	mock := &mockRecordService{historyResult: []model.TransitionEvent{{FromStatus: "Open", ToStatus: "Investigation"}}}
	r := recordRouter(NewRecordHandler(mock, &mockImportService{}, 0), model.EntityNCRReport)

	w := serve(r, "GET", "/ncr-reports/NCR-2025-0001/history", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()
	return buf, mw.FormDataContentType()
}

func TestRecordHandler_Import(t *testing.T) {
	imp := &mockImportService{
		rows:   []service.ImportRow{{Row: 2}},
		result: &dto.ImportResponse{Total: 1, Created: 1, IDs: []string{"VEN-0001"}},
	}
	r := recordRouter(NewRecordHandler(&mockRecordService{}, imp, 0), model.EntityVendor)

	body, contentType := multipartBody(t, "file", "vendors.xlsx", []byte("xlsx"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/vendors/import", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecordHandler_Import_BadHeader(t *testing.T) {
	imp := &mockImportService{parseErr: service.ErrImportBadHeader}
	r := recordRouter(NewRecordHandler(&mockRecordService{}, imp, 0), model.EntityVendor)

	body, contentType := multipartBody(t, "file", "vendors.xlsx", []byte("xlsx"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/vendors/import", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != codeImportInvalid {
		t.Errorf("expected code %d, got %d", codeImportInvalid, resp.Code)
	}
}

func TestMustGetKind_Unbound(t *testing.T) {
	h := NewRecordHandler(&mockRecordService{}, &mockImportService{}, 0)
	r := gin.New()
	r.GET("/records", h.ListRecords)

	w := serve(r, "GET", "/records", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestKindFromSlug(t *testing.T) {
	for _, kind := range model.EntityTypes() {
		got, ok := KindFromSlug(KindSlug(kind))
		if !ok || got != kind {
			t.Errorf("round trip of %s failed: %s %v", kind, got, ok)
		}
	}
	if _, ok := KindFromSlug("trains"); ok {
		t.Error("unknown slug should not resolve")
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler 测试
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportRegister_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "job_card_20250610.xlsx"}
	h := NewExportHandler(mock, &mockCalendarService{})
	r := gin.New()
	r.GET("/export/job-cards.xlsx", WithKind(model.EntityJobCard), h.ExportRegister)

	w := serve(r, "GET", "/export/job-cards.xlsx", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "job_card_20250610.xlsx") {
		t.Errorf("unexpected disposition %q", cd)
	}
}

func TestExportHandler_ExportRegister_Empty(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoRecords}, &mockCalendarService{})
	r := gin.New()
	r.GET("/export/letters.xlsx", WithKind(model.EntityLetter), h.ExportRegister)

	w := serve(r, "GET", "/export/letters.xlsx", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_JobCardCalendar(t *testing.T) {
	h := NewExportHandler(&mockExportService{}, &mockCalendarService{feed: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"})
	r := gin.New()
	r.GET("/calendar/job-cards.ics", h.JobCardCalendar)

	w := serve(r, "GET", "/calendar/job-cards.ics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
}

// ═══════════════════════════════════════════════════════════
// AttachmentHandler / MetaHandler 测试
// ═══════════════════════════════════════════════════════════

func TestAttachmentHandler_Upload(t *testing.T) {
	tests := []struct {
		name     string
		mock     *mockAttachmentService
		wantHTTP int
	}{
		{"stored", &mockAttachmentService{result: &dto.AttachmentResponse{Key: "2025/06/a.pdf"}}, http.StatusCreated},
		{"disabled", &mockAttachmentService{err: service.ErrAttachmentsDisabled}, http.StatusServiceUnavailable},
		{"type", &mockAttachmentService{err: service.ErrAttachmentType}, http.StatusUnsupportedMediaType},
		{"failure", &mockAttachmentService{err: errors.New("s3 down")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAttachmentHandler(tt.mock, 0)
			r := gin.New()
			r.POST("/attachments", h.UploadAttachment)

			body, contentType := multipartBody(t, "file", "report.pdf", []byte("%PDF-1.4"))
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/attachments", body)
			req.Header.Set("Content-Type", contentType)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
		})
	}
}

func TestAttachmentHandler_MissingFile(t *testing.T) {
	h := NewAttachmentHandler(&mockAttachmentService{}, 0)
	r := gin.New()
	r.POST("/attachments", h.UploadAttachment)

	w := serve(r, "POST", "/attachments", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMetaHandler_GetOptions(t *testing.T) {
	h := NewMetaHandler(nil)
	r := gin.New()
	r.GET("/options", h.GetOptions)

	w := serve(r, "GET", "/options", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	subsystems, _ := data["subsystems"].([]interface{})
	if len(subsystems) != len(model.Subsystems()) {
		t.Errorf("expected %d subsystems, got %d", len(model.Subsystems()), len(subsystems))
	}
}

func TestMetaHandler_Health(t *testing.T) {
	h := NewMetaHandler(map[string]Pinger{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	r := gin.New()
	r.GET("/health", h.Health)

	w := serve(r, "GET", "/health", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Status != "degraded" || body.Dependencies["database"] != "ok" {
		t.Errorf("unexpected body %+v", body)
	}
}
