package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

// ── 台账工作表布局 ──
//
// 导出与导入共用同一布局：单个工作表，
// 首行为文档字段名，其后每行一条记录

func registerColumns(kind model.EntityType) ([]engine.FieldSpec, error) {
	schema, err := engine.SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	return schema.Fields, nil
}

func registerTitle(kind model.EntityType) string {
	switch kind {
	case model.EntityJobCard:
		return "Job cards"
	case model.EntityNCRReport:
		return "NCR reports"
	case model.EntityLetter:
		return "Letters"
	case model.EntityVendor:
		return "Vendors"
	}
	return string(kind)
}

// cellValue 将文档值渲染为单元格内容
func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, fmt.Sprint(e))
		}
		return strings.Join(parts, ", ")
	}
	return v
}

// documentValue 将单元格文本按字段类型转回文档值
// 无法转换的文本原样传递，交由校验器报告
func documentValue(f engine.FieldSpec, text string) any {
	switch f.Type {
	case engine.TypeInt:
		return json.Number(text)
	case engine.TypeBool:
		switch strings.ToLower(text) {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		}
		if b, err := strconv.ParseBool(text); err == nil {
			return b
		}
	case engine.TypeStringSet:
		var items []any
		for _, part := range strings.Split(text, ",") {
			if p := strings.TrimSpace(part); p != "" {
				items = append(items, p)
			}
		}
		return items
	}
	return text
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
