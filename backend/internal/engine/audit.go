package engine

import (
	"time"

	"depot-records/backend/internal/model"
)

// Stamp 引擎为一次被接受的变更分配的审计信息
type Stamp struct {
	At    time.Time
	Actor string
}

// NormalizeTime 转为 UTC 并截断到微秒，与各存储保留的精度一致
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// nextStamp 返回严格晚于 previous 的时间戳
// 每次被接受的变更都会改变 updatedAt，且不早于 createdAt
func nextStamp(now time.Time, previous time.Time, actor string) Stamp {
	at := NormalizeTime(now)
	if !previous.IsZero() && !at.After(previous) {
		at = NormalizeTime(previous).Add(time.Microsecond)
	}
	return Stamp{At: at, Actor: actor}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// createFields 新记录的引擎维护字段
func (s Stamp) createFields() Document {
	at := formatTime(s.At)
	return Document{
		"createdAt": at,
		"createdBy": s.Actor,
		"updatedAt": at,
		"updatedBy": s.Actor,
	}
}

// updateFields 变更时的引擎维护字段
func (s Stamp) updateFields() Document {
	return Document{
		"updatedAt": formatTime(s.At),
		"updatedBy": s.Actor,
	}
}

// checkClientAudit 客户端指定的引擎维护字段与引擎持有（或将分配）的值不一致时报违规
func checkClientAudit(schema *Schema, client, engineValues Document) FieldErrors {
	errs := FieldErrors{}
	for _, name := range schema.EngineOwnedFields() {
		v, ok := client[name]
		if !ok || v == nil {
			continue
		}
		if !sameValue(v, engineValues[name]) {
			errs.Add(name, "is managed by the engine and cannot be set")
		}
	}
	return errs
}

func sameValue(client, engine any) bool {
	cs, ok := client.(string)
	if !ok {
		return false
	}
	es, ok := engine.(string)
	if !ok {
		return false
	}
	if cs == es {
		return true
	}
	ct, err1 := time.Parse(time.RFC3339Nano, cs)
	et, err2 := time.Parse(time.RFC3339Nano, es)
	return err1 == nil && err2 == nil && ct.Equal(et)
}

// completionFields 记录作业卡完成时间
func completionFields(kind model.EntityType, to string, s Stamp) Document {
	if kind == model.EntityJobCard && to == string(model.JobCardCompleted) {
		return Document{"completedAt": formatTime(s.At)}
	}
	return nil
}
