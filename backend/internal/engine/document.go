package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"depot-records/backend/internal/model"
)

// Document 记录的无类型形式，来自调用方提交或存储读取
// 键为模型的 camelCase JSON 字段名
type Document map[string]any

// DecodeDocument 读取一个 JSON 对象，数字保留为 json.Number
func DecodeDocument(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// ParseDocument 对字节切片执行 DecodeDocument
func ParseDocument(b []byte) (Document, error) {
	return DecodeDocument(bytes.NewReader(b))
}

// ToDocument 将强类型记录转换为文档形式
func ToDocument(rec model.Record) (Document, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", rec.EntityType(), err)
	}
	return ParseDocument(b)
}

// FromDocument 由 doc 构建指定类型的记录，doc 应已通过校验
func FromDocument(kind model.EntityType, doc Document) (model.Record, error) {
	rec, err := model.NewRecord(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, kind)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", kind, err)
	}
	if err := json.Unmarshal(b, rec); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", kind, err)
	}
	return rec, nil
}

// ApplyPatch 返回合并 patch 后的记录副本，patch 中的 null 清空对应字段
func ApplyPatch(rec model.Record, patch Document) (model.Record, error) {
	doc, err := ToDocument(rec)
	if err != nil {
		return nil, err
	}
	return FromDocument(rec.EntityType(), doc.Merge(patch))
}

// Clone 复制 d，切片值深拷贝，其余值共享
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if s, ok := v.([]any); ok {
			v = append([]any(nil), s...)
		}
		out[k] = v
	}
	return out
}

// Merge 返回叠加 patch 后的 d，patch 中的 nil 删除对应键
func (d Document) Merge(patch Document) Document {
	out := d.Clone()
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Without 返回去掉指定键的副本
func (d Document) Without(keys ...string) Document {
	out := d.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Present 键是否有非空值
func (d Document) Present(key string) bool {
	v, ok := d[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	}
	return true
}

// String 返回去除首尾空白的字符串
func (d Document) String(key string) (string, bool) {
	s, ok := d[key].(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// Bool 返回布尔值，缺失或类型不符时为 false
func (d Document) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Date 解析日历日期
func (d Document) Date(key string) (model.Date, bool) {
	s, ok := d.String(key)
	if !ok || s == "" {
		return model.Date{}, false
	}
	date, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, false
	}
	return date, true
}

// Timestamp 解析 RFC 3339 时间
func (d Document) Timestamp(key string) (time.Time, bool) {
	s, ok := d.String(key)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Strings 返回列表中的字符串元素
func (d Document) Strings(key string) ([]string, bool) {
	switch v := d[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Number 读取数值，兼容解码器与 Go 调用方可能给出的各种形式
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// NormalizeID 做 Unicode NFC 规范化并去除首尾空白
func NormalizeID(id string) string {
	return strings.TrimSpace(norm.NFC.String(id))
}
