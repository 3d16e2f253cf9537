package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"depot-records/backend/internal/dto"
	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("workbook has no data rows (the first row is the header)")
	ErrImportTooManyRows = fmt.Errorf("workbook exceeds %d data rows", maxImportRows)
	ErrImportBadHeader   = errors.New("workbook header has unknown columns")
)

// ImportRow 解析后的工作表行
type ImportRow struct {
	Row int
	Doc engine.Document
}

// ImportService 从与导出格式相同的 Excel 工作簿批量创建记录
// 忽略引擎维护的列，导出文件可直接重新导入
type ImportService interface {
	ParseImportFile(kind model.EntityType, reader io.Reader) ([]ImportRow, error)
	ImportRecords(ctx context.Context, kind model.EntityType, rows []ImportRow, actor string) (*dto.ImportResponse, error)
}

type importService struct {
	records RecordService
	logger  *zap.Logger
}

func NewImportService(records RecordService, logger *zap.Logger) ImportService {
	return &importService{records: records, logger: logger}
}

// ────────────────────── ParseImportFile ──────────────────────

func (s *importService) ParseImportFile(kind model.EntityType, reader io.Reader) ([]ImportRow, error) {
	cols, err := registerColumns(kind)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	sheetRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read worksheet: %w", err)
	}
	if len(sheetRows) < 2 {
		return nil, ErrImportNoData
	}

	index, err := parseHeaderIndex(cols, sheetRows[0])
	if err != nil {
		return nil, err
	}

	var rows []ImportRow
	for i := 1; i < len(sheetRows); i++ {
		raw := sheetRows[i]
		doc := engine.Document{}
		for colIdx, spec := range index {
			if colIdx >= len(raw) {
				continue
			}
			text := strings.TrimSpace(raw[colIdx])
			if text == "" {
				continue
			}
			doc[spec.Name] = documentValue(spec, text)
		}
		if len(doc) == 0 {
			continue
		}
		rows = append(rows, ImportRow{Row: i + 1, Doc: doc})
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 将列位置映射到字段
// 跳过引擎维护的列，未知列报错
func parseHeaderIndex(cols []engine.FieldSpec, header []string) (map[int]engine.FieldSpec, error) {
	byName := make(map[string]engine.FieldSpec, len(cols))
	for _, c := range cols {
		byName[strings.ToLower(c.Name)] = c
	}

	index := make(map[int]engine.FieldSpec)
	var unknown []string
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		spec, ok := byName[name]
		switch {
		case !ok:
			unknown = append(unknown, strings.TrimSpace(h))
		case !spec.EngineOwned:
			index[i] = spec
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrImportBadHeader, strings.Join(unknown, ", "))
	}
	return index, nil
}

// ────────────────────── ImportRecords ──────────────────────

// ImportRecords 逐行独立创建，被拒绝的行单独报告
// 存储故障时中止导入，并返回已创建的行
func (s *importService) ImportRecords(ctx context.Context, kind model.EntityType, rows []ImportRow, actor string) (*dto.ImportResponse, error) {
	resp := &dto.ImportResponse{Total: len(rows), IDs: []string{}, Errors: []dto.ImportRowError{}}

	for _, row := range rows {
		rec, err := s.records.Create(ctx, kind, row.Doc, actor)
		if err == nil {
			resp.Created++
			resp.IDs = append(resp.IDs, rec.Identifier())
			continue
		}
		if !IsRejection(err) {
			s.logger.Error("import aborted",
				zap.String("entity", string(kind)),
				zap.Int("row", row.Row),
				zap.Int("created", resp.Created),
				zap.Error(err),
			)
			return resp, err
		}

		resp.Failed++
		rowErr := dto.ImportRowError{Row: row.Row}
		if ve, ok := engine.IsValidationError(err); ok {
			rowErr.Errors = ve.Fields
		} else {
			rowErr.Reason = err.Error()
		}
		resp.Errors = append(resp.Errors, rowErr)
	}

	s.logger.Info("import finished",
		zap.String("entity", string(kind)),
		zap.Int("total", resp.Total),
		zap.Int("created", resp.Created),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}
