package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"depot-records/backend/internal/model"
)

// Mode 校验采用创建或编辑语义
type Mode int

const (
	ModeCreate Mode = iota
	// ModeEdit 跳过唯一性检查，编号创建后不可变
	ModeEdit
)

// Validator 按实体结构校验候选文档，仅唯一性阶段读取存储
type Validator struct {
	store  Store
	now    func() time.Time
	format *validator.Validate
}

func NewValidator(store Store, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{store: store, now: now, format: validator.New()}
}

// Validate 依次执行类型、格式、跨字段与唯一性校验，收集全部违规
// error 仅用于唯一性查询时的存储故障
func (v *Validator) Validate(ctx context.Context, kind model.EntityType, candidate Document, mode Mode) (FieldErrors, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	errs := FieldErrors{}

	v.checkShape(schema, candidate, errs)
	v.checkFormat(schema, candidate, errs)

	clean := candidate.Without(errs.Fields()...)
	runRules(schema.Rules, clean, Today(v.now()), errs)

	if mode == ModeCreate && v.store != nil && !errs.Has(schema.IDField) {
		if id, ok := candidate.String(schema.IDField); ok && id != "" {
			_, err := v.store.Get(ctx, kind, NormalizeID(id))
			switch {
			case err == nil:
				errs.Add(schema.IDField, "already exists")
			case !errors.Is(err, ErrNotFound):
				return nil, fmt.Errorf("uniqueness check for %s %q: %w", kind, id, err)
			}
		}
	}
	return errs, nil
}

// ── 第一阶段：类型与结构 ──

func (v *Validator) checkShape(schema *Schema, doc Document, errs FieldErrors) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := schema.Field(k); !ok {
			errs.Add(k, "is not a field of "+string(schema.Entity))
		}
	}

	for _, f := range schema.Fields {
		if !doc.Present(f.Name) {
			if f.Required {
				errs.Add(f.Name, "is required")
			}
			continue
		}
		val := doc[f.Name]
		switch f.Type {
		case TypeString, TypeDate, TypeTimestamp:
			if _, ok := val.(string); !ok {
				errs.Add(f.Name, "must be a "+f.Type.String())
			}
		case TypeEnum:
			s, ok := val.(string)
			if !ok {
				errs.Add(f.Name, "must be a string")
			} else if !contains(f.Options, s) {
				errs.Add(f.Name, "must be one of: "+strings.Join(f.Options, ", "))
			}
		case TypeInt:
			if _, ok := Number(val); !ok {
				errs.Add(f.Name, "must be a number")
			}
		case TypeBool:
			if _, ok := val.(bool); !ok {
				errs.Add(f.Name, "must be a boolean")
			}
		case TypeStringSet:
			items, ok := doc.Strings(f.Name)
			if !ok {
				errs.Add(f.Name, "must be a list of strings")
				continue
			}
			if f.Options == nil {
				continue
			}
			for _, item := range items {
				if !contains(f.Options, item) {
					errs.Add(f.Name, fmt.Sprintf("contains unknown value %q", item))
				}
			}
		}
	}
}

// ── 第二阶段：格式与取值 ──

func (v *Validator) checkFormat(schema *Schema, doc Document, errs FieldErrors) {
	for _, f := range schema.Fields {
		if errs.Has(f.Name) || !doc.Present(f.Name) {
			continue
		}
		switch f.Type {
		case TypeString:
			s, _ := doc.String(f.Name)
			if f.MaxLen > 0 && utf8.RuneCountInString(s) > f.MaxLen {
				errs.Add(f.Name, fmt.Sprintf("must be at most %d characters", f.MaxLen))
			}
			if f.Pattern != nil && !f.Pattern.MatchString(s) {
				errs.Add(f.Name, "has an invalid format")
			}
			if f.Format != "" && v.format.Var(s, f.Format) != nil {
				errs.Add(f.Name, "must be a valid "+f.Format+" address")
			}
		case TypeDate:
			if _, ok := doc.Date(f.Name); !ok {
				errs.Add(f.Name, "must be a valid date (YYYY-MM-DD)")
			}
		case TypeTimestamp:
			if _, ok := doc.Timestamp(f.Name); !ok {
				errs.Add(f.Name, "must be an RFC 3339 timestamp")
			}
		case TypeInt:
			n, _ := Number(doc[f.Name])
			switch {
			case math.IsNaN(n) || math.IsInf(n, 0):
				errs.Add(f.Name, "must be a finite number")
			case n != math.Trunc(n):
				errs.Add(f.Name, "must be an integer")
			case n < float64(f.Min):
				errs.Add(f.Name, fmt.Sprintf("must be greater than %d", f.Min-1))
			case n > math.MaxInt32:
				errs.Add(f.Name, fmt.Sprintf("must be at most %d", math.MaxInt32))
			}
		case TypeStringSet:
			items, _ := doc.Strings(f.Name)
			seen := make(map[string]bool, len(items))
			for _, item := range items {
				if strings.TrimSpace(item) == "" {
					errs.Add(f.Name, "must not contain blank entries")
					continue
				}
				if seen[item] {
					errs.Add(f.Name, fmt.Sprintf("contains duplicate entry %q", item))
				}
				seen[item] = true
			}
		}
	}
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
