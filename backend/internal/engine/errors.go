package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"depot-records/backend/internal/model"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("record was modified by another request")
	ErrSequenceExhausted = errors.New("identifier sequence exhausted")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrGuardFailed       = errors.New("transition guard failed")
	ErrUnknownEntity     = errors.New("unknown entity type")
)

// FieldErrors 文档键到违规信息的映射，为空表示通过
type FieldErrors map[string][]string

// Add 追加违规信息，完全相同的忽略
func (f FieldErrors) Add(field, msg string) {
	for _, m := range f[field] {
		if m == msg {
			return
		}
	}
	f[field] = append(f[field], msg)
}

// Has 字段是否已有违规
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Merge 合并 other 的全部违规
func (f FieldErrors) Merge(other FieldErrors) {
	for _, field := range other.Fields() {
		for _, msg := range other[field] {
			f.Add(field, msg)
		}
	}
}

// Fields 按字母序返回违规字段名
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (f FieldErrors) String() string {
	parts := make([]string, 0, len(f))
	for _, field := range f.Fields() {
		parts = append(parts, field+": "+strings.Join(f[field], "; "))
	}
	return strings.Join(parts, ", ")
}

// ValidationError 候选记录的字段级违规
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.String()
}

// TransitionErrorCode 状态流转被拒的类别
type TransitionErrorCode string

const (
	// CodeInvalidTransition 状态图中不存在该边
	CodeInvalidTransition TransitionErrorCode = "INVALID_TRANSITION"

	// CodeGuardFailed 边存在但前置条件不满足
	CodeGuardFailed TransitionErrorCode = "GUARD_FAILED"
)

// TransitionError 状态流转被拒的原因
type TransitionError struct {
	Code   TransitionErrorCode
	Entity model.EntityType
	From   string
	To     string

	// Invariant 违反的守卫名称（仅 GUARD_FAILED）
	Invariant string

	// Fields 守卫的字段级违规
	Fields FieldErrors
}

func (e *TransitionError) Error() string {
	if e.Code == CodeGuardFailed {
		return fmt.Sprintf("%s: %s %s -> %s violates %s", e.Code, e.Entity, e.From, e.To, e.Invariant)
	}
	if e.From == "" {
		return fmt.Sprintf("%s: %s cannot enter %s", e.Code, e.Entity, e.To)
	}
	return fmt.Sprintf("%s: %s %s -> %s", e.Code, e.Entity, e.From, e.To)
}

// Is 使 errors.Is 能匹配 ErrInvalidTransition 与 ErrGuardFailed
func (e *TransitionError) Is(target error) bool {
	switch target {
	case ErrInvalidTransition:
		return e.Code == CodeInvalidTransition
	case ErrGuardFailed:
		return e.Code == CodeGuardFailed
	}
	return false
}

func invalidTransition(kind model.EntityType, from, to string) *TransitionError {
	return &TransitionError{Code: CodeInvalidTransition, Entity: kind, From: from, To: to}
}

func guardFailed(kind model.EntityType, from, to, invariant string, fields FieldErrors) *TransitionError {
	return &TransitionError{
		Code:      CodeGuardFailed,
		Entity:    kind,
		From:      from,
		To:        to,
		Invariant: invariant,
		Fields:    fields,
	}
}

// IsValidationError 取出包装的 *ValidationError
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsTransitionError 取出包装的 *TransitionError
func IsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
