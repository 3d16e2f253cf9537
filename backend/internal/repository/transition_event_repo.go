package repository

import (
	"context"

	"gorm.io/gorm"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

type transitionEventRepo struct {
	db *gorm.DB
}

// NewTransitionEventRepo 基于 gorm 的状态流转流水
func NewTransitionEventRepo(db *gorm.DB) engine.Journal {
	return &transitionEventRepo{db: db}
}

func (r *transitionEventRepo) Append(ctx context.Context, ev *model.TransitionEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *transitionEventRepo) History(ctx context.Context, kind model.EntityType, id string) ([]model.TransitionEvent, error) {
	events := []model.TransitionEvent{}
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND record_id = ?", string(kind), id).
		Order("at ASC, id ASC").
		Find(&events).Error
	return events, err
}
