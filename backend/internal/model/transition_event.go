package model

import "time"

// TransitionEvent 状态流转流水表，每条为一次被接受的状态变更
type TransitionEvent struct {
	ID         string     `gorm:"column:id;primaryKey;type:varchar(36)"            json:"id"`
	EntityType EntityType `gorm:"column:entity_type;type:varchar(20);not null;index:idx_transition_events_record" json:"entityType"`
	RecordID   string     `gorm:"column:record_id;type:varchar(64);not null;index:idx_transition_events_record"   json:"recordId"`
	FromStatus string     `gorm:"column:from_status;type:varchar(20);not null"     json:"from"`
	ToStatus   string     `gorm:"column:to_status;type:varchar(20);not null"       json:"to"`
	Reopen     bool       `gorm:"column:reopen;not null;default:false"             json:"reopen,omitempty"`
	Reason     string     `gorm:"column:reason;type:text;not null;default:''"      json:"reason,omitempty"`
	Actor      string     `gorm:"column:actor;type:varchar(64);not null"           json:"actor"`
	At         time.Time  `gorm:"column:at;not null"                               json:"at"`
}

func (TransitionEvent) TableName() string { return "transition_events" }

// RecordSequence 编号生成使用的持久化计数器
type RecordSequence struct {
	Name      string    `gorm:"column:name;primaryKey;type:varchar(64)" json:"name"`
	Value     int64     `gorm:"column:value;not null;default:0"         json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"              json:"updatedAt"`
}

func (RecordSequence) TableName() string { return "record_sequences" }
