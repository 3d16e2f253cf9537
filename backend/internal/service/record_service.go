package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

// RecordService 向传输层暴露生命周期引擎
type RecordService interface {
	Create(ctx context.Context, kind model.EntityType, draft engine.Document, actor string) (model.Record, error)
	Get(ctx context.Context, kind model.EntityType, id string) (model.Record, error)
	List(ctx context.Context, kind model.EntityType, filter engine.ListFilter) ([]model.Record, int64, error)
	Edit(ctx context.Context, kind model.EntityType, id string, patch engine.Document, expectedUpdatedAt time.Time, actor string) (model.Record, error)
	Transition(ctx context.Context, kind model.EntityType, id string, req engine.TransitionRequest, actor string) (*engine.TransitionResult, error)
	Validate(ctx context.Context, kind model.EntityType, candidate engine.Document) (engine.FieldErrors, error)
	History(ctx context.Context, kind model.EntityType, id string) ([]model.TransitionEvent, error)
}

type recordService struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewRecordService 包装引擎
func NewRecordService(eng *engine.Engine, logger *zap.Logger) RecordService {
	return &recordService{engine: eng, logger: logger}
}

// ────────────────────── 创建 ──────────────────────

func (s *recordService) Create(ctx context.Context, kind model.EntityType, draft engine.Document, actor string) (model.Record, error) {
	rec, err := s.engine.PrepareCreate(ctx, kind, draft, actor)
	if err != nil {
		s.logFailure("create record", kind, "", actor, err)
		return nil, err
	}
	s.logger.Info("record created",
		zap.String("entity", string(kind)),
		zap.String("id", rec.Identifier()),
		zap.String("actor", actor),
	)
	return rec, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *recordService) Get(ctx context.Context, kind model.EntityType, id string) (model.Record, error) {
	rec, err := s.engine.Get(ctx, kind, id)
	if err != nil {
		s.logFailure("get record", kind, id, "", err)
		return nil, err
	}
	return rec, nil
}

func (s *recordService) List(ctx context.Context, kind model.EntityType, filter engine.ListFilter) ([]model.Record, int64, error) {
	list, total, err := s.engine.List(ctx, kind, filter)
	if err != nil {
		s.logFailure("list records", kind, "", "", err)
		return nil, 0, err
	}
	return list, total, nil
}

func (s *recordService) History(ctx context.Context, kind model.EntityType, id string) ([]model.TransitionEvent, error) {
	events, err := s.engine.History(ctx, kind, id)
	if err != nil {
		s.logFailure("load history", kind, id, "", err)
		return nil, err
	}
	return events, nil
}

func (s *recordService) Validate(ctx context.Context, kind model.EntityType, candidate engine.Document) (engine.FieldErrors, error) {
	errs, err := s.engine.Validate(ctx, kind, candidate)
	if err != nil {
		s.logFailure("validate record", kind, "", "", err)
		return nil, err
	}
	return errs, nil
}

// ────────────────────── 编辑 ──────────────────────

func (s *recordService) Edit(ctx context.Context, kind model.EntityType, id string, patch engine.Document, expectedUpdatedAt time.Time, actor string) (model.Record, error) {
	rec, err := s.engine.PrepareEdit(ctx, kind, id, patch, expectedUpdatedAt, actor)
	if err != nil {
		s.logFailure("edit record", kind, id, actor, err)
		return nil, err
	}
	s.logger.Info("record edited",
		zap.String("entity", string(kind)),
		zap.String("id", rec.Identifier()),
		zap.String("actor", actor),
	)
	return rec, nil
}

// ────────────────────── 状态流转 ──────────────────────

func (s *recordService) Transition(ctx context.Context, kind model.EntityType, id string, req engine.TransitionRequest, actor string) (*engine.TransitionResult, error) {
	res, err := s.engine.PrepareTransition(ctx, kind, id, req, actor)
	if err != nil {
		s.logFailure("transition record", kind, id, actor, err)
		return nil, err
	}
	s.logger.Info("record transitioned",
		zap.String("entity", string(kind)),
		zap.String("id", res.Record.Identifier()),
		zap.String("from", res.Event.FromStatus),
		zap.String("to", res.Event.ToStatus),
		zap.Bool("reopen", res.Event.Reopen),
		zap.String("actor", actor),
	)
	return res, nil
}

// logFailure 调用方可处理的拒绝记为 debug，其余记为 error
func (s *recordService) logFailure(op string, kind model.EntityType, id, actor string, err error) {
	fields := []zap.Field{
		zap.String("entity", string(kind)),
		zap.String("id", id),
		zap.String("actor", actor),
		zap.Error(err),
	}
	if IsRejection(err) {
		s.logger.Debug(op+" rejected", fields...)
		return
	}
	s.logger.Error(op+" failed", fields...)
}

// IsRejection 错误是否为业务结果而非故障
func IsRejection(err error) bool {
	if _, ok := engine.IsValidationError(err); ok {
		return true
	}
	if _, ok := engine.IsTransitionError(err); ok {
		return true
	}
	return errors.Is(err, engine.ErrNotFound) ||
		errors.Is(err, engine.ErrConflict) ||
		errors.Is(err, engine.ErrUnknownEntity) ||
		errors.Is(err, engine.ErrActorRequired) ||
		errors.Is(err, engine.ErrActorTooLong)
}
