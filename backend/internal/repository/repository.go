package repository

import (
	"gorm.io/gorm"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

// Repository 引擎依赖的持久化组件集合
type Repository struct {
	Records   engine.Store
	Sequences engine.Counter
	Events    engine.Journal
}

// NewRepository 装配 gorm 实现
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Records:   NewRecordStore(db),
		Sequences: NewSequenceCounter(db),
		Events:    NewTransitionEventRepo(db),
	}
}

// NewMemoryRepository 装配进程内实现
func NewMemoryRepository() *Repository {
	return &Repository{
		Records:   NewMemoryStore(),
		Sequences: engine.NewMemoryCounter(),
		Events:    NewMemoryJournal(),
	}
}

// Models 由 gorm 管理的全部表，用于 AutoMigrate
func Models() []interface{} {
	return []interface{}{
		&model.JobCard{},
		&model.NCRReport{},
		&model.Letter{},
		&model.Vendor{},
		&model.TransitionEvent{},
		&model.RecordSequence{},
	}
}
