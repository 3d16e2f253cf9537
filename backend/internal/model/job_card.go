package model

import "time"

// JobCard 作业卡表，对应 job_cards（针对单节车辆的检修工单）
type JobCard struct {
	JCNo        string          `gorm:"column:jc_no;primaryKey;type:varchar(64)"          json:"jcNo"`
	TrainID     string          `gorm:"column:train_id;type:varchar(16);not null;index"    json:"trainId"`
	CarID       string          `gorm:"column:car_id;type:varchar(16);not null;index"      json:"carId"`
	Category    JobCardCategory `gorm:"column:category;type:varchar(20);not null"          json:"category"`
	Priority    Priority        `gorm:"column:priority;type:varchar(10);not null"          json:"priority"`
	Status      JobCardStatus   `gorm:"column:status;type:varchar(20);not null;index"      json:"status"`
	DueDate     Date            `gorm:"column:due_date;not null;index"                     json:"dueDate"`
	Description string          `gorm:"column:description;type:text;not null;default:''"  json:"description,omitempty"`
	DelayReason string          `gorm:"column:delay_reason;type:text;not null;default:''"  json:"delayReason,omitempty"`
	CompletedAt *time.Time      `gorm:"column:completed_at"                                json:"completedAt,omitempty"`
	BaseModel
}

func (JobCard) TableName() string { return "job_cards" }

func (JobCard) EntityType() EntityType { return EntityJobCard }

func (j *JobCard) Identifier() string { return j.JCNo }

func (j *JobCard) SetIdentifier(id string) { j.JCNo = id }

func (j *JobCard) CurrentStatus() string { return string(j.Status) }

// Overdue 是否已过截止日期且仍未完成
func (j *JobCard) Overdue(today Date) bool {
	if j.Status != JobCardPending && j.Status != JobCardInProgress {
		return false
	}
	return j.DueDate.Before(today.Time)
}
