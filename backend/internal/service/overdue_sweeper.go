package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

// SweepActor 自动流转的审计操作人
const SweepActor = "system"

// sweepPageSize 单次扫描每次 List 的条数上限
const sweepPageSize = 200

// CronParser 标准 5 段 cron 表达式解析器
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// OverdueSweeper 定时将已过截止日期的作业卡置为 delayed
// 并发编辑中的卡会被跳过，下次运行时再处理
type OverdueSweeper struct {
	records  RecordService
	spec     string
	cron     *cron.Cron
	now      func() time.Time
	pageSize int
	logger   *zap.Logger
}

func NewOverdueSweeper(records RecordService, spec string, now func() time.Time, logger *zap.Logger) *OverdueSweeper {
	if now == nil {
		now = time.Now
	}
	return &OverdueSweeper{
		records:  records,
		spec:     spec,
		cron:     cron.New(cron.WithParser(CronParser)),
		now:      now,
		pageSize: sweepPageSize,
		logger:   logger,
	}
}

// Start 启动定时扫描，表达式为空时不启动
func (s *OverdueSweeper) Start() error {
	if s.spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("schedule overdue sweep %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("overdue sweep scheduled", zap.String("cron", s.spec))
	return nil
}

// Stop 停止调度，返回的 context 在正在执行的扫描结束后完成
func (s *OverdueSweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *OverdueSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("overdue sweep failed", zap.Error(err))
	}
}

// Sweep 将截止日期早于今天的 pending 与 in_progress 作业卡置为 delayed，
// 返回处理数量
func (s *OverdueSweeper) Sweep(ctx context.Context) (int, error) {
	today := model.NewDate(s.now())
	moved := 0
	for _, status := range []model.JobCardStatus{model.JobCardPending, model.JobCardInProgress} {
		// 置为 delayed 的卡会离开过滤条件，只有被跳过的卡推进偏移量
		offset := 0
		for {
			cards, _, err := s.records.List(ctx, model.EntityJobCard, engine.ListFilter{
				Status:    string(status),
				DueBefore: &today,
				Offset:    offset,
				Limit:     s.pageSize,
			})
			if err != nil {
				return moved, err
			}
			for _, rec := range cards {
				jc := rec.(*model.JobCard)
				expected := jc.UpdatedAt
				_, err := s.records.Transition(ctx, model.EntityJobCard, jc.JCNo, engine.TransitionRequest{
					To:                string(model.JobCardDelayed),
					Reason:            "overdue: due " + jc.DueDate.String(),
					ExpectedUpdatedAt: &expected,
				}, SweepActor)
				switch {
				case err == nil:
					moved++
				case IsRejection(err):
					offset++
					s.logger.Debug("overdue sweep skipped card", zap.String("id", jc.JCNo), zap.Error(err))
				default:
					return moved, err
				}
			}
			if len(cards) < s.pageSize {
				break
			}
		}
	}
	if moved > 0 {
		s.logger.Info("overdue job cards delayed", zap.Int("count", moved))
	}
	return moved, nil
}
