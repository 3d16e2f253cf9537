package service

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

func TestOverdueSweeper_Sweep(t *testing.T) {
	records := setupTestRecordService(zap.NewNop())
	ctx := context.Background()
	late := createJobCard(t, records, "2025-06-01", "pending")
	started := createJobCard(t, records, "2025-06-09", "in_progress")
	dueToday := createJobCard(t, records, "2025-06-10", "pending")
	done := createJobCard(t, records, "2025-05-01", "completed")

	sweeper := NewOverdueSweeper(records, "", fixedClock, zap.NewNop())
	moved, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if moved != 2 {
		t.Fatalf("expected 2 cards delayed, got %d", moved)
	}

	for _, id := range []string{late.JCNo, started.JCNo} {
		rec, _ := records.Get(ctx, model.EntityJobCard, id)
		jc := rec.(*model.JobCard)
		if jc.Status != model.JobCardDelayed {
			t.Errorf("%s: expected delayed, got %s", id, jc.Status)
		}
		if jc.UpdatedBy != SweepActor {
			t.Errorf("%s: expected updatedBy %s, got %s", id, SweepActor, jc.UpdatedBy)
		}
	}
	rec, _ := records.Get(ctx, model.EntityJobCard, late.JCNo)
	if got := rec.(*model.JobCard).DelayReason; got != "overdue: due 2025-06-01" {
		t.Errorf("unexpected delay reason %q", got)
	}

	for _, id := range []string{dueToday.JCNo, done.JCNo} {
		events, _ := records.History(ctx, model.EntityJobCard, id)
		if len(events) != 0 {
			t.Errorf("%s should not have moved", id)
		}
	}

	again, err := sweeper.Sweep(ctx)
	if err != nil || again != 0 {
		t.Errorf("second sweep: moved %d, err %v", again, err)
	}
}

// conflictingRecords 模拟并发编辑，拒绝某张卡的状态流转
type conflictingRecords struct {
	RecordService
	id string
}

func (r *conflictingRecords) Transition(ctx context.Context, kind model.EntityType, id string, req engine.TransitionRequest, actor string) (*engine.TransitionResult, error) {
	if id == r.id {
		return nil, engine.ErrConflict
	}
	return r.RecordService.Transition(ctx, kind, id, req, actor)
}

func TestOverdueSweeper_SweepPages(t *testing.T) {
	records := setupTestRecordService(zap.NewNop())
	ctx := context.Background()
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, createJobCard(t, records, fmt.Sprintf("2025-06-0%d", i+1), "pending").JCNo)
	}
	busy := &conflictingRecords{RecordService: records, id: ids[1]}

	sweeper := NewOverdueSweeper(busy, "", fixedClock, zap.NewNop())
	sweeper.pageSize = 2
	moved, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if moved != 4 {
		t.Fatalf("expected 4 cards delayed across pages, got %d", moved)
	}
	for i, id := range ids {
		rec, _ := records.Get(ctx, model.EntityJobCard, id)
		want := model.JobCardDelayed
		if i == 1 {
			want = model.JobCardPending
		}
		if got := rec.(*model.JobCard).Status; got != want {
			t.Errorf("%s: expected %s, got %s", id, want, got)
		}
	}
}

func TestOverdueSweeper_Start(t *testing.T) {
	records := setupTestRecordService(zap.NewNop())

	if err := NewOverdueSweeper(records, "", fixedClock, zap.NewNop()).Start(); err != nil {
		t.Errorf("empty spec should disable the sweep: %v", err)
	}
	if err := NewOverdueSweeper(records, "every day", fixedClock, zap.NewNop()).Start(); err == nil {
		t.Error("expected invalid cron spec error")
	}

	s := NewOverdueSweeper(records, "0 2 * * *", fixedClock, zap.NewNop())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-s.Stop().Done()
}
