package engine

import (
	"regexp"

	"depot-records/backend/internal/model"
)

// FieldType 文档值须满足的基本类型
type FieldType int

const (
	TypeString FieldType = iota
	TypeEnum
	TypeDate
	TypeInt
	TypeBool
	TypeStringSet
	TypeTimestamp
)

func (t FieldType) String() string {
	switch t {
	case TypeString, TypeEnum:
		return "string"
	case TypeDate:
		return "date"
	case TypeInt:
		return "integer"
	case TypeBool:
		return "boolean"
	case TypeStringSet:
		return "list of strings"
	case TypeTimestamp:
		return "timestamp"
	}
	return "unknown"
}

// FieldSpec 实体结构中的一个属性
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool

	// Options TypeEnum 与 TypeStringSet 字段的封闭取值
	Options []string

	Pattern *regexp.Regexp
	// Format go-playground/validator 标签，如 "email"
	Format string
	MaxLen int
	// Min TypeInt 的最小取值
	Min int64

	// EngineOwned 字段可原样回传，但客户端不能设置
	EngineOwned bool
}

// Schema 一种实体的属性集与规则集
type Schema struct {
	Entity      model.EntityType
	IDField     string
	StatusField string
	Fields      []FieldSpec
	Rules       []Rule
}

// Field 按文档键查找字段
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// EngineOwnedFields 客户端不能指定的键
func (s *Schema) EngineOwnedFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.EngineOwned {
			out = append(out, f.Name)
		}
	}
	return out
}

var (
	rollingStockPattern = regexp.MustCompile(`^[A-Z]{1,4}[0-9]{1,4}$`)
	phonePattern        = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)
)

const maxIDLength = 64

func auditFields() []FieldSpec {
	return []FieldSpec{
		{Name: "createdAt", Type: TypeTimestamp, EngineOwned: true},
		{Name: "createdBy", Type: TypeString, EngineOwned: true},
		{Name: "updatedAt", Type: TypeTimestamp, EngineOwned: true},
		{Name: "updatedBy", Type: TypeString, EngineOwned: true},
	}
}

func idField(name string) FieldSpec {
	return FieldSpec{Name: name, Type: TypeString, MaxLen: maxIDLength}
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// ── 实体结构 ──

var jobCardSchema = &Schema{
	Entity:      model.EntityJobCard,
	IDField:     "jcNo",
	StatusField: "status",
	Fields: append([]FieldSpec{
		idField("jcNo"),
		{Name: "trainId", Type: TypeString, Required: true, Pattern: rollingStockPattern},
		{Name: "carId", Type: TypeString, Required: true, Pattern: rollingStockPattern},
		{Name: "category", Type: TypeEnum, Required: true, Options: stringsOf(model.JobCardCategories())},
		{Name: "priority", Type: TypeEnum, Required: true, Options: stringsOf(model.Priorities())},
		{Name: "status", Type: TypeEnum, Options: stringsOf(model.JobCardStatuses())},
		{Name: "dueDate", Type: TypeDate, Required: true},
		{Name: "description", Type: TypeString, MaxLen: 4000},
		{Name: "delayReason", Type: TypeString, MaxLen: 1000},
		{Name: "completedAt", Type: TypeTimestamp, EngineOwned: true},
	}, auditFields()...),
}

var ncrReportSchema = &Schema{
	Entity:      model.EntityNCRReport,
	IDField:     "ncrReportNo",
	StatusField: "status",
	Fields: append([]FieldSpec{
		idField("ncrReportNo"),
		{Name: "dateOfDetection", Type: TypeDate},
		{Name: "dateOfNcr", Type: TypeDate, Required: true},
		{Name: "itemDescription", Type: TypeString, Required: true, MaxLen: 4000},
		{Name: "partNumber", Type: TypeString, Required: true, MaxLen: 64},
		{Name: "modification", Type: TypeEnum, Options: stringsOf(model.Modifications())},
		{Name: "faultySerialNumber", Type: TypeString, MaxLen: 64},
		{Name: "healthySerialNumber", Type: TypeString, MaxLen: 64},
		{Name: "responsibility", Type: TypeEnum, Options: stringsOf(model.Responsibilities())},
		{Name: "status", Type: TypeEnum, Options: stringsOf(model.NCRStatuses())},
		{Name: "quantity", Type: TypeInt, Required: true, Min: 1},
		{Name: "trainId", Type: TypeString, Pattern: rollingStockPattern},
		{Name: "carId", Type: TypeString, Pattern: rollingStockPattern},
		{Name: "source", Type: TypeEnum, Options: stringsOf(model.NCRSources())},
		{Name: "ncrClosedByDocument", Type: TypeBool},
		{Name: "dateOfNcrClosure", Type: TypeDate},
		{Name: "gatePassNumber", Type: TypeString, MaxLen: 64},
		{Name: "dateOfInvestigationReceived", Type: TypeDate},
		{Name: "itemRepairedReplaced", Type: TypeEnum, Options: stringsOf(model.RepairOutcomes())},
		{Name: "itemRepairedReplacedDetails", Type: TypeString, MaxLen: 4000},
		{Name: "remarks", Type: TypeString, MaxLen: 4000},
		{Name: "attachments", Type: TypeStringSet},
	}, auditFields()...),
	Rules: []Rule{ruleNCRDateNotFuture, ruleClosure, ruleRepairDetails},
}

var letterSchema = &Schema{
	Entity:  model.EntityLetter,
	IDField: "letterNumber",
	Fields: append([]FieldSpec{
		idField("letterNumber"),
		{Name: "direction", Type: TypeEnum, Required: true, Options: stringsOf(model.LetterDirections())},
		{Name: "letterDate", Type: TypeDate, Required: true},
		{Name: "subject", Type: TypeString, Required: true, MaxLen: 255},
		{Name: "counterparty", Type: TypeString, Required: true, MaxLen: 255},
		{Name: "attachments", Type: TypeStringSet},
	}, auditFields()...),
}

var vendorSchema = &Schema{
	Entity:      model.EntityVendor,
	IDField:     "vendorCode",
	StatusField: "contractStatus",
	Fields: append([]FieldSpec{
		idField("vendorCode"),
		{Name: "name", Type: TypeString, Required: true, MaxLen: 255},
		{Name: "contactPerson", Type: TypeString, MaxLen: 255},
		{Name: "email", Type: TypeString, Format: "email", MaxLen: 255},
		{Name: "phone", Type: TypeString, Pattern: phonePattern},
		{Name: "address", Type: TypeString, MaxLen: 1000},
		{Name: "relatedSystems", Type: TypeStringSet, Options: stringsOf(model.Subsystems())},
		{Name: "contractStatus", Type: TypeEnum, Options: stringsOf(model.ContractStatuses())},
	}, auditFields()...),
}

// SchemaFor 返回指定类型的结构
func SchemaFor(kind model.EntityType) (*Schema, error) {
	switch kind {
	case model.EntityJobCard:
		return jobCardSchema, nil
	case model.EntityNCRReport:
		return ncrReportSchema, nil
	case model.EntityLetter:
		return letterSchema, nil
	case model.EntityVendor:
		return vendorSchema, nil
	}
	return nil, ErrUnknownEntity
}
