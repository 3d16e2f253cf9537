package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
	pkgerrors "depot-records/backend/pkg/errors"
)

type recordStore struct {
	db *gorm.DB
}

// NewRecordStore 基于 gorm 的 engine.Store
// 数据库连接需开启 TranslateError，主键重复才会返回 gorm.ErrDuplicatedKey
func NewRecordStore(db *gorm.DB) engine.Store {
	return &recordStore{db: db}
}

func (r *recordStore) Create(ctx context.Context, rec model.Record) (string, error) {
	err := r.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", engine.ErrDuplicateID
	}
	if err != nil {
		return "", err
	}
	return rec.Identifier(), nil
}

func (r *recordStore) Get(ctx context.Context, kind model.EntityType, id string) (model.Record, error) {
	return r.get(r.db.WithContext(ctx), kind, id)
}

func (r *recordStore) get(db *gorm.DB, kind model.EntityType, id string) (model.Record, error) {
	rec, err := model.NewRecord(kind)
	if err != nil {
		return nil, engine.ErrUnknownEntity
	}
	err = db.Where(model.IdentifierColumn(kind)+" = ?", id).First(rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update 重写记录的全部可变列，以调用方读取到的 updated_at 为条件
func (r *recordStore) Update(ctx context.Context, kind model.EntityType, id string, expectedUpdatedAt time.Time, patch engine.Document) (model.Record, error) {
	var out model.Record
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := r.get(tx, kind, id)
		if err != nil {
			return err
		}
		next, err := engine.ApplyPatch(current, patch)
		if err != nil {
			return err
		}
		empty, _ := model.NewRecord(kind)
		pk := model.IdentifierColumn(kind)
		result := tx.Model(empty).
			Where(pk+" = ? AND updated_at = ?", id, expectedUpdatedAt).
			Select("*").
			Omit(pk, "created_at", "created_by").
			Updates(next)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %w", engine.ErrConflict, pkgerrors.ErrOptimisticLock)
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordStore) List(ctx context.Context, kind model.EntityType, f engine.ListFilter) ([]model.Record, int64, error) {
	empty, err := model.NewRecord(kind)
	if err != nil {
		return nil, 0, engine.ErrUnknownEntity
	}
	db := applyFilter(r.db.WithContext(ctx).Model(empty), kind, f).Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order(model.IdentifierColumn(kind))
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	records, err := findAll(q, kind)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// searchColumns ListFilter.Query 匹配的列
var searchColumns = map[model.EntityType][]string{
	model.EntityJobCard:   {"jc_no", "description"},
	model.EntityNCRReport: {"ncr_report_no", "item_description", "part_number"},
	model.EntityLetter:    {"letter_number", "subject", "counterparty"},
	model.EntityVendor:    {"vendor_code", "name"},
}

func applyFilter(db *gorm.DB, kind model.EntityType, f engine.ListFilter) *gorm.DB {
	if f.Status != "" {
		switch kind {
		case model.EntityJobCard, model.EntityNCRReport:
			db = db.Where("status = ?", f.Status)
		case model.EntityVendor:
			db = db.Where("contract_status = ?", f.Status)
		}
	}
	if kind == model.EntityJobCard || kind == model.EntityNCRReport {
		if f.TrainID != "" {
			db = db.Where("train_id = ?", f.TrainID)
		}
		if f.CarID != "" {
			db = db.Where("car_id = ?", f.CarID)
		}
	}
	if f.DueBefore != nil && kind == model.EntityJobCard {
		db = db.Where("due_date < ?", *f.DueBefore)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		cols := searchColumns[kind]
		conds := make([]string, len(cols))
		args := make([]interface{}, len(cols))
		for i, c := range cols {
			conds[i] = "LOWER(" + c + ") LIKE ?"
			args[i] = "%" + strings.ToLower(q) + "%"
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return db
}

func findAll(db *gorm.DB, kind model.EntityType) ([]model.Record, error) {
	switch kind {
	case model.EntityJobCard:
		return find[model.JobCard](db)
	case model.EntityNCRReport:
		return find[model.NCRReport](db)
	case model.EntityLetter:
		return find[model.Letter](db)
	case model.EntityVendor:
		return find[model.Vendor](db)
	}
	return nil, engine.ErrUnknownEntity
}

func find[T any, PT interface {
	*T
	model.Record
}](db *gorm.DB) ([]model.Record, error) {
	var rows []T
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Record, len(rows))
	for i := range rows {
		out[i] = PT(&rows[i])
	}
	return out, nil
}
