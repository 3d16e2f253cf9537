package model

import "gorm.io/datatypes"

// Letter 来往函件表，对应 letters（无生命周期状态）
type Letter struct {
	LetterNumber string                      `gorm:"column:letter_number;primaryKey;type:varchar(64)" json:"letterNumber"`
	Direction    LetterDirection             `gorm:"column:direction;type:varchar(16);not null;index" json:"direction"`
	LetterDate   Date                        `gorm:"column:letter_date;not null;index"               json:"letterDate"`
	Subject      string                      `gorm:"column:subject;type:varchar(255);not null"       json:"subject"`
	Counterparty string                      `gorm:"column:counterparty;type:varchar(255);not null"  json:"counterparty"`
	Attachments  datatypes.JSONSlice[string] `gorm:"column:attachments;not null;default:'[]'"        json:"attachments"`
	BaseModel
}

func (Letter) TableName() string { return "letters" }

func (Letter) EntityType() EntityType { return EntityLetter }

func (l *Letter) Identifier() string { return l.LetterNumber }

func (l *Letter) SetIdentifier(id string) { l.LetterNumber = id }
