package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"medihealth-portal/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// VisitExportHeader 访视导出表头
var VisitExportHeader = []string{
	"Visit ID",
	"Patient",
	"Clinician",
	"Visit Type",
	"Status",
	"Scheduled Start",
	"Scheduled End",
	"Actual Start",
	"Actual End",
	"Notes",
}

// ExportService 管理端导出服务（agency_admin 专用）
type ExportService interface {
	// ExportVisits 导出时间窗内的全量访视为 Excel 文件
	ExportVisits(ctx context.Context, from, to time.Time) ([]byte, error)
}

type exportService struct {
	visitsRepo repository.VisitsRepository
	logger     *zap.Logger
}

// NewExportService 创建导出服务
func NewExportService(visitsRepo repository.VisitsRepository, logger *zap.Logger) ExportService {
	return &exportService{visitsRepo: visitsRepo, logger: logger}
}

// ExportVisits 导出访视 Excel
func (s *exportService) ExportVisits(ctx context.Context, from, to time.Time) ([]byte, error) {
	visits, err := s.visitsRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}

	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Visits"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	// 表头
	for col, header := range VisitExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	// 数据行
	for i, v := range visits {
		values := []any{
			v.ID,
			v.PatientName,
			v.ClinicianName,
			v.VisitType,
			v.Status,
			v.ScheduledStart.Format(time.RFC3339),
			v.ScheduledEnd.Format(time.RFC3339),
			formatOptionalTime(v.ActualStart),
			formatOptionalTime(v.ActualEnd),
			v.VisitNotes,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	s.logger.Info("Visits export generated",
		zap.Int("rows", len(visits)),
		zap.Time("from", from),
		zap.Time("to", to),
	)

	return buf.Bytes(), nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
