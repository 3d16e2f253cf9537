package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout 日期在接口与存储中的格式
const DateLayout = "2006-01-02"

// ── 日期类型 ──

// Date 不含时间部分的日历日期
// JSON 中序列化为 "2006-01-02"，并实现 GORM 的 Scanner/Valuer 接口
type Date struct {
	time.Time
}

// NewDate 截取 t 的 UTC 日期
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate 解析 "2006-01-02" 格式字符串
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// DatePtr 测试与初始化数据用，格式错误时 panic
func DatePtr(s string) *Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("Date.UnmarshalJSON: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("Date.UnmarshalJSON: invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// Scan 兼容 DATE 列（time.Time）与 SQLite 返回的文本
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case []byte:
		return d.scanText(string(v))
	case string:
		return d.scanText(v)
	default:
		return fmt.Errorf("Date.Scan: unsupported type %T", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) < len(DateLayout) {
		return fmt.Errorf("Date.Scan: invalid date %q", s)
	}
	parsed, err := ParseDate(s[:len(DateLayout)])
	if err != nil {
		return fmt.Errorf("Date.Scan: invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (Date) GormDataType() string { return "date" }

// ── 审计字段 ──

// ActorMaxLen created_by、updated_by 及流水 actor 列的字符宽度
const ActorMaxLen = 64

// BaseModel 每条记录内嵌的审计字段，由引擎维护
type BaseModel struct {
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"createdAt"`
	CreatedBy string    `gorm:"column:created_by;type:varchar(64);not null"    json:"createdBy"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updatedAt"`
	UpdatedBy string    `gorm:"column:updated_by;type:varchar(64);not null"    json:"updatedBy"`
}

// Audit 返回内嵌的审计字段
func (b *BaseModel) Audit() *BaseModel { return b }

// AuditFields 引擎维护的文档字段
var AuditFields = []string{"createdAt", "createdBy", "updatedAt", "updatedBy"}

// ── 记录契约 ──

// Record 所有持久化实体实现的接口
type Record interface {
	EntityType() EntityType
	Identifier() string
	SetIdentifier(id string)
	Audit() *BaseModel
}

// Stateful 带生命周期状态的记录
type Stateful interface {
	Record
	CurrentStatus() string
}

// NewRecord 返回指定类型的空记录
func NewRecord(kind EntityType) (Record, error) {
	switch kind {
	case EntityJobCard:
		return &JobCard{}, nil
	case EntityNCRReport:
		return &NCRReport{}, nil
	case EntityLetter:
		return &Letter{}, nil
	case EntityVendor:
		return &Vendor{}, nil
	}
	return nil, fmt.Errorf("unknown entity type %q", kind)
}

// IdentifierField 返回该类型编号所在的文档字段
func IdentifierField(kind EntityType) string {
	switch kind {
	case EntityJobCard:
		return "jcNo"
	case EntityNCRReport:
		return "ncrReportNo"
	case EntityLetter:
		return "letterNumber"
	case EntityVendor:
		return "vendorCode"
	}
	return ""
}

// IdentifierColumn 返回该类型的主键列
func IdentifierColumn(kind EntityType) string {
	switch kind {
	case EntityJobCard:
		return "jc_no"
	case EntityNCRReport:
		return "ncr_report_no"
	case EntityLetter:
		return "letter_number"
	case EntityVendor:
		return "vendor_code"
	}
	return ""
}

// StatusField 返回生命周期状态的文档字段，无状态的类型返回 ""
func StatusField(kind EntityType) string {
	switch kind {
	case EntityJobCard, EntityNCRReport:
		return "status"
	case EntityVendor:
		return "contractStatus"
	}
	return ""
}
