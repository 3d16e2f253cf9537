package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

// ── 导出错误 ──

var (
	ErrExportNoRecords    = errors.New("no records match the export filter")
	ErrExportTooLarge     = errors.New("export exceeds the row limit")
	ErrExportGenerateFail = errors.New("failed to generate Excel file")
)

const (
	exportPageSize = 500
	maxExportRows  = 50000
)

// ExportService 将台账渲染为 Excel 工作簿
//
// 返回工作簿缓冲区，下载响应头由 handler 设置
type ExportService interface {
	ExportRegister(ctx context.Context, kind model.EntityType, filter engine.ListFilter) (*bytes.Buffer, string, error)
}

type exportService struct {
	records RecordService
	now     func() time.Time
	logger  *zap.Logger
}

func NewExportService(records RecordService, now func() time.Time, logger *zap.Logger) ExportService {
	if now == nil {
		now = time.Now
	}
	return &exportService{records: records, now: now, logger: logger}
}

// ════════════════════════════════════════════════
// ExportRegister
// ════════════════════════════════════════════════
//
// 布局：单个工作表，首行为字段名，每条记录一行，按编号排序
// 逾期作业卡高亮显示

func (s *exportService) ExportRegister(ctx context.Context, kind model.EntityType, filter engine.ListFilter) (*bytes.Buffer, string, error) {
	cols, err := registerColumns(kind)
	if err != nil {
		return nil, "", err
	}

	records, err := s.collect(ctx, kind, filter)
	if err != nil {
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	now := s.now()
	today := model.NewDate(now)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := registerTitle(kind)
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	overdueStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})

	// 表头
	for i, col := range cols {
		f.SetCellValue(sheetName, cell(colName(i), 1), col.Name)
		width := 16.0
		if col.MaxLen > 255 {
			width = 40
		}
		f.SetColWidth(sheetName, colName(i), colName(i), width)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(cols)-1), 1), headerStyle)

	// 数据行
	for r, rec := range records {
		row := r + 2
		doc, err := engine.ToDocument(rec)
		if err != nil {
			s.logger.Error("encode record for export failed", zap.String("id", rec.Identifier()), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		for i, col := range cols {
			f.SetCellValue(sheetName, cell(colName(i), row), cellValue(doc[col.Name]))
		}
		if jc, ok := rec.(*model.JobCard); ok && jc.Overdue(today) {
			f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(cols)-1), row), overdueStyle)
		}
	}

	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	if err := f.AutoFilter(sheetName, fmt.Sprintf("A1:%s", cell(colName(len(cols)-1), len(records)+1)), nil); err != nil {
		s.logger.Warn("set export auto filter failed", zap.Error(err))
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write Excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s_%s.xlsx", kind, now.UTC().Format("20060102"))
	return buf, filename, nil
}

// collect 分页读取台账
func (s *exportService) collect(ctx context.Context, kind model.EntityType, filter engine.ListFilter) ([]model.Record, error) {
	filter.Offset = 0
	filter.Limit = exportPageSize
	var out []model.Record
	for {
		page, total, err := s.records.List(ctx, kind, filter)
		if err != nil {
			return nil, err
		}
		if total > maxExportRows {
			return nil, ErrExportTooLarge
		}
		out = append(out, page...)
		if len(page) == 0 || int64(len(out)) >= total {
			return out, nil
		}
		filter.Offset += len(page)
	}
}
