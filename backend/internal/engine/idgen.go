package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"depot-records/backend/internal/model"
)

// Counter 发放命名序列的下一个值
// Next 须为原子的取值并自增，溢出时返回 ErrSequenceExhausted 而不是回绕
type Counter interface {
	Next(ctx context.Context, name string) (int64, error)
}

// IDContext 编号命名空间所需的输入
type IDContext struct {
	At time.Time
}

// Generator 将序列值格式化为可读的记录编号
type Generator struct {
	counter       Counter
	yearNamespace bool
}

func NewGenerator(counter Counter, yearNamespace bool) *Generator {
	return &Generator{counter: counter, yearNamespace: yearNamespace}
}

// Prefix 返回该类型的编号前缀
func Prefix(kind model.EntityType) string {
	switch kind {
	case model.EntityJobCard:
		return "JC"
	case model.EntityNCRReport:
		return "NCR"
	case model.EntityLetter:
		return "LTR"
	case model.EntityVendor:
		return "VEN"
	}
	return ""
}

// SequenceName 该类型在给定时间使用的计数器键
func (g *Generator) SequenceName(kind model.EntityType, at time.Time) string {
	if g.namespaced(kind) {
		return fmt.Sprintf("%s:%d", kind, at.UTC().Year())
	}
	return string(kind)
}

func (g *Generator) namespaced(kind model.EntityType) bool {
	return g.yearNamespace && kind != model.EntityVendor
}

// Next 发放下一个编号，如 JC-2025-0001 或 VEN-0001
func (g *Generator) Next(ctx context.Context, kind model.EntityType, ictx IDContext) (string, error) {
	prefix := Prefix(kind)
	if prefix == "" {
		return "", ErrUnknownEntity
	}
	at := ictx.At
	if at.IsZero() {
		at = time.Now()
	}
	seq, err := g.counter.Next(ctx, g.SequenceName(kind, at))
	if err != nil {
		return "", err
	}
	if g.namespaced(kind) {
		return fmt.Sprintf("%s-%d-%04d", prefix, at.UTC().Year(), seq), nil
	}
	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}

// MemoryCounter 进程内 Counter
type MemoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{values: make(map[string]int64)}
}

func (c *MemoryCounter) Next(_ context.Context, name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.values[name]
	if v == math.MaxInt64 {
		return 0, ErrSequenceExhausted
	}
	v++
	c.values[name] = v
	return v, nil
}

// Set 设置序列位置，下一个值为 v+1
func (c *MemoryCounter) Set(name string, v int64) {
	c.mu.Lock()
	c.values[name] = v
	c.mu.Unlock()
}
