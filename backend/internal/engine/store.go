package engine

import (
	"context"
	"errors"
	"time"

	"depot-records/backend/internal/model"
)

// ErrDuplicateID 编号已被占用时 Store.Create 返回
var ErrDuplicateID = errors.New("identifier already exists")

// ListFilter Store.List 的过滤条件，零值匹配全部
type ListFilter struct {
	Status  string
	TrainID string
	CarID   string
	// Query 对编号及实体主要文本字段做不区分大小写的子串匹配
	Query string
	// DueBefore 匹配截止日期早于该日的作业卡
	DueBefore *model.Date

	Offset int
	Limit  int
}

// Store 引擎依赖的持久化契约，实现须并发安全
type Store interface {
	// Create 持久化新记录，编号已占用时返回 ErrDuplicateID
	Create(ctx context.Context, rec model.Record) (string, error)

	// Get 编号不存在时返回 ErrNotFound
	Get(ctx context.Context, kind model.EntityType, id string) (model.Record, error)

	// Update 仅当存储的 updatedAt 等于 expectedUpdatedAt 时原子地应用 patch
	// 否则返回 ErrConflict 或 ErrNotFound
	Update(ctx context.Context, kind model.EntityType, id string, expectedUpdatedAt time.Time, patch Document) (model.Record, error)

	// List 按编号排序返回一页记录及匹配总数
	List(ctx context.Context, kind model.EntityType, filter ListFilter) ([]model.Record, int64, error)
}

// Journal 只追加的状态流转历史
type Journal interface {
	Append(ctx context.Context, ev *model.TransitionEvent) error
	History(ctx context.Context, kind model.EntityType, id string) ([]model.TransitionEvent, error)
}
