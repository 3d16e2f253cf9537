// Package engine 记录生命周期引擎：在抽象 Store 之上完成校验、编号分配、
// 状态流转与审计标记
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"depot-records/backend/internal/model"
)

var (
	// ErrActorRequired 变更未携带操作人
	ErrActorRequired = errors.New("actor is required")

	// ErrActorTooLong 操作人超出审计列宽度
	ErrActorTooLong = fmt.Errorf("actor exceeds %d characters", model.ActorMaxLen)
)

// checkActor 去除首尾空白，为空或超出审计列宽度时拒绝
func checkActor(actor string) (string, error) {
	actor = strings.TrimSpace(actor)
	switch {
	case actor == "":
		return "", ErrActorRequired
	case utf8.RuneCountInString(actor) > model.ActorMaxLen:
		return "", ErrActorTooLong
	}
	return actor, nil
}

const defaultIDAttempts = 8

// Engine 并发安全，共享状态全部位于 Store 与 Counter
type Engine struct {
	store      Store
	journal    Journal
	ids        *Generator
	validator  *Validator
	now        func() time.Time
	policy     ReopenPolicy
	idAttempts int
	logger     *zap.Logger
}

// Option 引擎配置项
type Option func(*Engine)

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithJournal(j Journal) Option { return func(e *Engine) { e.journal = j } }

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

func WithReopenPolicy(p ReopenPolicy) Option { return func(e *Engine) { e.policy = p } }

// WithIDAttempts 生成编号与客户端自选编号冲突时最多尝试的次数
func WithIDAttempts(n int) Option { return func(e *Engine) { e.idAttempts = n } }

func New(store Store, ids *Generator, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		ids:        ids,
		now:        time.Now,
		policy:     ReopenFlagged,
		idAttempts: defaultIDAttempts,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.validator = NewValidator(store, e.now)
	return e
}

// TransitionResult 被接受的状态变更及其流水事件
type TransitionResult struct {
	Record model.Record
	Event  *model.TransitionEvent
}

// ────────────────────── 查询 ──────────────────────

func (e *Engine) Get(ctx context.Context, kind model.EntityType, id string) (model.Record, error) {
	if !kind.Valid() {
		return nil, ErrUnknownEntity
	}
	return e.store.Get(ctx, kind, NormalizeID(id))
}

func (e *Engine) List(ctx context.Context, kind model.EntityType, filter ListFilter) ([]model.Record, int64, error) {
	if !kind.Valid() {
		return nil, 0, ErrUnknownEntity
	}
	return e.store.List(ctx, kind, filter)
}

// History 返回记录的状态流转事件，按时间正序
func (e *Engine) History(ctx context.Context, kind model.EntityType, id string) ([]model.TransitionEvent, error) {
	id = NormalizeID(id)
	if _, err := e.Get(ctx, kind, id); err != nil {
		return nil, err
	}
	if e.journal == nil {
		return []model.TransitionEvent{}, nil
	}
	return e.journal.History(ctx, kind, id)
}

// Validate 创建时校验的试运行，不写入
func (e *Engine) Validate(ctx context.Context, kind model.EntityType, candidate Document) (FieldErrors, error) {
	return e.validator.Validate(ctx, kind, candidate, ModeCreate)
}

// ────────────────────── 创建 ──────────────────────

// PrepareCreate 校验草稿，未指定编号时分配编号，
// 写入审计字段后持久化
func (e *Engine) PrepareCreate(ctx context.Context, kind model.EntityType, draft Document, actor string) (model.Record, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	actor, err = checkActor(actor)
	if err != nil {
		return nil, err
	}
	stamp := nextStamp(e.now(), time.Time{}, actor)

	candidate := draft.Clone()
	proposed := ""
	if id, ok := candidate.String(schema.IDField); ok && id != "" {
		proposed = NormalizeID(id)
		candidate[schema.IDField] = proposed
	}

	machine, _ := MachineFor(kind)
	if machine != nil && !candidate.Present(machine.StatusField) {
		candidate[machine.StatusField] = machine.Initial
	}
	status, _ := candidate.String(schema.StatusField)

	engineValues := stamp.createFields().Merge(completionFields(kind, status, stamp))
	errs := checkClientAudit(schema, candidate, engineValues)
	candidate = candidate.Without(schema.EngineOwnedFields()...)

	verrs, err := e.validator.Validate(ctx, kind, candidate, ModeCreate)
	if err != nil {
		return nil, err
	}
	errs.Merge(verrs)
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if machine != nil && !machine.Reachable(status) {
		return nil, invalidTransition(kind, "", status)
	}

	candidate = candidate.Merge(engineValues)
	for attempt := 0; ; attempt++ {
		id := proposed
		if id == "" {
			if attempt >= e.idAttempts {
				return nil, fmt.Errorf("no free %s identifier after %d attempts", kind, attempt)
			}
			if id, err = e.ids.Next(ctx, kind, IDContext{At: stamp.At}); err != nil {
				if errors.Is(err, ErrSequenceExhausted) {
					e.logger.Error("identifier sequence exhausted", zap.String("entity", string(kind)))
				}
				return nil, err
			}
		}
		candidate[schema.IDField] = id

		rec, err := FromDocument(kind, candidate)
		if err != nil {
			return nil, err
		}
		if _, err := e.store.Create(ctx, rec); err != nil {
			if !errors.Is(err, ErrDuplicateID) {
				return nil, err
			}
			if proposed != "" {
				return nil, &ValidationError{Fields: FieldErrors{schema.IDField: {"already exists"}}}
			}
			e.logger.Warn("generated identifier already in use", zap.String("id", id))
			continue
		}
		return rec, nil
	}
}

// ────────────────────── 状态流转 ──────────────────────

// PrepareTransition 边存在且目标守卫满足时流转到 req.To，
// 并将事件追加到流水
func (e *Engine) PrepareTransition(ctx context.Context, kind model.EntityType, id string, req TransitionRequest, actor string) (*TransitionResult, error) {
	if !kind.Valid() {
		return nil, ErrUnknownEntity
	}
	actor, err := checkActor(actor)
	if err != nil {
		return nil, err
	}
	rec, err := e.store.Get(ctx, kind, NormalizeID(id))
	if err != nil {
		return nil, err
	}
	machine, err := MachineFor(kind)
	if err != nil {
		return nil, invalidTransition(kind, "", req.To)
	}
	from := rec.(model.Stateful).CurrentStatus()

	doc, err := ToDocument(rec)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if err := machine.Check(from, req, doc, now, e.policy); err != nil {
		return nil, err
	}

	previous := rec.Audit().UpdatedAt
	expected := previous
	if req.ExpectedUpdatedAt != nil {
		expected = NormalizeTime(*req.ExpectedUpdatedAt)
		if !expected.Equal(previous) {
			return nil, ErrConflict
		}
	}

	stamp := nextStamp(now, previous, actor)
	patch := Document{machine.StatusField: req.To}.
		Merge(stamp.updateFields()).
		Merge(completionFields(kind, req.To, stamp))
	if kind == model.EntityJobCard && req.To == string(model.JobCardDelayed) && strings.TrimSpace(req.Reason) != "" {
		patch["delayReason"] = strings.TrimSpace(req.Reason)
	}

	updated, err := e.store.Update(ctx, kind, rec.Identifier(), expected, patch)
	if err != nil {
		return nil, err
	}

	ev := e.record(ctx, kind, rec.Identifier(), from, req, stamp)
	return &TransitionResult{Record: updated, Event: ev}, nil
}

// record 追加流转事件
// 状态变更已提交，流水写入失败只记录日志不返回
func (e *Engine) record(ctx context.Context, kind model.EntityType, id, from string, req TransitionRequest, stamp Stamp) *model.TransitionEvent {
	ev := &model.TransitionEvent{
		ID:         uuid.NewString(),
		EntityType: kind,
		RecordID:   id,
		FromStatus: from,
		ToStatus:   req.To,
		Reopen:     req.Reopen,
		Reason:     strings.TrimSpace(req.Reason),
		Actor:      stamp.Actor,
		At:         stamp.At,
	}
	if e.journal == nil {
		return ev
	}
	if err := e.journal.Append(ctx, ev); err != nil {
		e.logger.Error("append transition event failed",
			zap.String("entity", string(kind)),
			zap.String("id", id),
			zap.String("from", from),
			zap.String("to", req.To),
			zap.Error(err),
		)
	}
	return ev
}

// ────────────────────── 编辑 ──────────────────────

// PrepareEdit 将 patch 合并到存储的记录，重新完整校验，
// 记录仍处于 expectedUpdatedAt 时持久化
func (e *Engine) PrepareEdit(ctx context.Context, kind model.EntityType, id string, patch Document, expectedUpdatedAt time.Time, actor string) (model.Record, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	actor, err = checkActor(actor)
	if err != nil {
		return nil, err
	}
	rec, err := e.store.Get(ctx, kind, NormalizeID(id))
	if err != nil {
		return nil, err
	}
	previous := rec.Audit().UpdatedAt
	expected := NormalizeTime(expectedUpdatedAt)
	if !expected.Equal(previous) {
		return nil, ErrConflict
	}

	current, err := ToDocument(rec)
	if err != nil {
		return nil, err
	}

	errs := checkClientAudit(schema, patch, current)
	if v, ok := patch[schema.IDField]; ok && v != nil {
		if s, isString := v.(string); !isString || NormalizeID(s) != rec.Identifier() {
			errs.Add(schema.IDField, "is immutable")
		}
	}
	changes := patch.Without(append(schema.EngineOwnedFields(), schema.IDField)...)
	merged := current.Merge(changes)

	// 状态变更交由状态机判断，守卫报告 GuardFailed，
	// 而不是在此处作为字段违规
	machine, _ := MachineFor(kind)
	var from, to string
	candidate := merged
	if machine != nil {
		from = rec.(model.Stateful).CurrentStatus()
		to, _ = merged.String(machine.StatusField)
		if to != from && machine.Known(to) {
			candidate = merged.Merge(Document{machine.StatusField: from})
		}
	}

	verrs, err := e.validator.Validate(ctx, kind, candidate, ModeEdit)
	if err != nil {
		return nil, err
	}
	errs.Merge(verrs)
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	now := e.now()
	stamp := nextStamp(now, previous, actor)
	final := changes.Merge(stamp.updateFields())

	if machine != nil && to != from {
		if err := machine.Check(from, TransitionRequest{To: to}, merged, now, e.policy); err != nil {
			return nil, err
		}
		final = final.Merge(completionFields(kind, to, stamp))
	}

	updated, err := e.store.Update(ctx, kind, rec.Identifier(), expected, final)
	if err != nil {
		return nil, err
	}
	if machine != nil && to != from {
		e.record(ctx, kind, rec.Identifier(), from, TransitionRequest{To: to}, stamp)
	}
	return updated, nil
}
