package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
	"depot-records/backend/internal/repository"
)

// ── 测试辅助 ──

var testNow = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func setupTestRecordService(logger *zap.Logger) RecordService {
	repo := repository.NewMemoryRepository()
	eng := engine.New(repo.Records, engine.NewGenerator(repo.Sequences, true),
		engine.WithClock(fixedClock),
		engine.WithJournal(repo.Events),
		engine.WithLogger(logger),
	)
	return NewRecordService(eng, logger)
}

func createJobCard(t *testing.T, svc RecordService, due, status string) *model.JobCard {
	t.Helper()
	rec, err := svc.Create(context.Background(), model.EntityJobCard, engine.Document{
		"trainId":     "TS01",
		"carId":       "DMC1",
		"category":    "inspection",
		"priority":    "high",
		"status":      status,
		"dueDate":     due,
		"description": "Bogie inspection",
	}, "planner")
	if err != nil {
		t.Fatalf("create job card: %v", err)
	}
	return rec.(*model.JobCard)
}

// ── RecordService 测试 ──

func TestRecordService_Create_LogsSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc := setupTestRecordService(zap.New(core))

	jc := createJobCard(t, svc, "2025-06-20", "pending")

	if jc.JCNo != "JC-2025-0001" {
		t.Errorf("expected JC-2025-0001, got %s", jc.JCNo)
	}
	entries := logs.FilterMessage("record created").All()
	if len(entries) != 1 {
		t.Fatalf("expected one info entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["actor"]; got != "planner" {
		t.Errorf("expected actor planner, got %v", got)
	}
}

func TestRecordService_Rejection_LoggedAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := setupTestRecordService(zap.New(core))

	_, err := svc.Create(context.Background(), model.EntityVendor, engine.Document{"email": "nope"}, "planner")
	if _, ok := engine.IsValidationError(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 0 {
		t.Errorf("rejections must not log at error level, got %d entries", n)
	}
	if n := logs.FilterLevelExact(zapcore.DebugLevel).Len(); n == 0 {
		t.Error("expected a debug entry for the rejection")
	}
}

func TestRecordService_TransitionAndHistory(t *testing.T) {
	svc := setupTestRecordService(zap.NewNop())
	ctx := context.Background()
	jc := createJobCard(t, svc, "2025-06-20", "pending")

	res, err := svc.Transition(ctx, model.EntityJobCard, jc.JCNo, engine.TransitionRequest{To: "in_progress"}, "fitter")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if res.Record.(*model.JobCard).Status != model.JobCardInProgress {
		t.Errorf("expected in_progress, got %s", res.Record.(*model.JobCard).Status)
	}

	events, err := svc.History(ctx, model.EntityJobCard, jc.JCNo)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) != 1 || events[0].Actor != "fitter" || events[0].ToStatus != "in_progress" {
		t.Errorf("unexpected history %+v", events)
	}
}

func TestRecordService_Edit_Stale(t *testing.T) {
	svc := setupTestRecordService(zap.NewNop())
	ctx := context.Background()
	jc := createJobCard(t, svc, "2025-06-20", "pending")

	if _, err := svc.Edit(ctx, model.EntityJobCard, jc.JCNo, engine.Document{"priority": "urgent"}, jc.UpdatedAt, "a"); err != nil {
		t.Fatalf("first edit: %v", err)
	}
	_, err := svc.Edit(ctx, model.EntityJobCard, jc.JCNo, engine.Document{"priority": "low"}, jc.UpdatedAt, "b")
	if !errors.Is(err, engine.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestIsRejection(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&engine.ValidationError{Fields: engine.FieldErrors{"x": {"is required"}}}, true},
		{&engine.TransitionError{Code: engine.CodeInvalidTransition}, true},
		{engine.ErrNotFound, true},
		{engine.ErrConflict, true},
		{engine.ErrActorRequired, true},
		{engine.ErrActorTooLong, true},
		{engine.ErrSequenceExhausted, false},
		{errors.New("disk full"), false},
	}
	for _, tt := range tests {
		if got := IsRejection(tt.err); got != tt.want {
			t.Errorf("IsRejection(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
