package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

type sequenceCounter struct {
	db *gorm.DB
}

// NewSequenceCounter 基于 record_sequences 表的 engine.Counter
// PostgreSQL 下通过 SELECT ... FOR UPDATE 锁定行，SQLite 自身串行化写入
func NewSequenceCounter(db *gorm.DB) engine.Counter {
	return &sequenceCounter{db: db}
}

func (c *sequenceCounter) Next(ctx context.Context, name string) (int64, error) {
	var next int64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := c.lock(tx, name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := model.RecordSequence{Name: name, UpdatedAt: time.Now().UTC()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return err
			}
			seq, err = c.lock(tx, name)
		}
		if err != nil {
			return err
		}
		if seq.Value == math.MaxInt64 {
			return engine.ErrSequenceExhausted
		}
		next = seq.Value + 1
		return tx.Model(&model.RecordSequence{}).
			Where("name = ?", name).
			Updates(map[string]interface{}{
				"value":      next,
				"updated_at": time.Now().UTC(),
			}).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (c *sequenceCounter) lock(tx *gorm.DB, name string) (*model.RecordSequence, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var seq model.RecordSequence
	if err := q.Where("name = ?", name).First(&seq).Error; err != nil {
		return nil, err
	}
	return &seq, nil
}
