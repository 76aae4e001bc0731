package export

import (
	"bytes"
	"fmt"

	"baymax-vitals/internal/models"

	"github.com/xuri/excelize/v2"
)

const sessionsSheet = "Sessions"

// SessionsExportHeader 导出表头
var SessionsExportHeader = []string{
	"Session ID",
	"Started At",
	"Ended At",
	"Data Points",
	"Pulse Avg",
	"Pulse Min",
	"Pulse Max",
	"Breathing Avg",
	"Breathing Min",
	"Breathing Max",
	"Processed At",
}

var sessionsColumnWidths = []float64{38, 22, 22, 12, 10, 10, 10, 14, 14, 14, 22}

// GenerateSessionsExport renders a user's analytics sessions as an xlsx
// workbook, one row per session. An empty list yields a header-only sheet.
func GenerateSessionsExport(sessions []*models.AnalyticsSession) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sessionsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range SessionsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sessionsSheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sessionsSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sessionsSheet, name, name, sessionsColumnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, s := range sessions {
		row := i + 2
		values := []interface{}{
			s.SessionID,
			s.SessionInfo.StartedAt,
			s.SessionInfo.EndedAt,
			s.SessionInfo.DataPoints,
			s.Pulse.Average,
			s.Pulse.Min,
			s.Pulse.Max,
			s.Breathing.Average,
			s.Breathing.Min,
			s.Breathing.Max,
			s.ProcessedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sessionsSheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(sessionsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}
