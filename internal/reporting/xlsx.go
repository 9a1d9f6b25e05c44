package reporting

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/foodmap/internal/models"
)

const sheetName = "Verification"

// BuildWorkbook 生成单表工作簿：标题、生成时间、明细表，最后是汇总区
func BuildWorkbook(report *models.VerificationReport) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	f.SetCellValue(sheetName, "A1", "Weekly Verification Report")
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s (threshold %d days)",
		report.GeneratedAt.Format("2006-01-02 15:04:05"), report.DaysThreshold))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	widths := []float64{40, 50, 16, 24, 16, 14}
	for col, header := range CSVHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 4)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(sheetName, colName, colName, widths[col])
	}

	dataStyle, _ := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "CCCCCC", Style: 1},
			{Type: "right", Color: "CCCCCC", Style: 1},
			{Type: "top", Color: "CCCCCC", Style: 1},
			{Type: "bottom", Color: "CCCCCC", Style: 1},
		},
	})
	flaggedStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
		Border: []excelize.Border{
			{Type: "left", Color: "CCCCCC", Style: 1},
			{Type: "right", Color: "CCCCCC", Style: 1},
			{Type: "top", Color: "CCCCCC", Style: 1},
			{Type: "bottom", Color: "CCCCCC", Style: 1},
		},
	})

	for i, loc := range report.LocationsToVerify {
		row := i + 5
		values := []interface{}{
			loc.Name,
			loc.Address,
			lastVerified(loc),
			loc.DaysSinceVerification,
			loc.ReportedClosed,
			loc.ReportedClosedCount,
		}
		style := dataStyle
		if loc.ReportedClosed {
			style = flaggedStyle
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cell, v)
			f.SetCellStyle(sheetName, cell, cell, style)
		}
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
	})
	summaryRow := len(report.LocationsToVerify) + 7
	cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	f.SetCellValue(sheetName, cell, "Summary")
	f.SetCellStyle(sheetName, cell, cell, summaryStyle)
	for _, kv := range []struct {
		label string
		value int
	}{
		{"Total Resources", report.TotalResources},
		{"Needs Verification", report.NeedsVerification},
		{"Reported Closed", report.ReportedClosed},
		{"Up to Date", report.UpToDate},
	} {
		summaryRow++
		keyCell, _ := excelize.CoordinatesToCellName(1, summaryRow)
		valueCell, _ := excelize.CoordinatesToCellName(2, summaryRow)
		f.SetCellValue(sheetName, keyCell, kv.label)
		f.SetCellValue(sheetName, valueCell, kv.value)
	}

	return f, nil
}

// WriteXLSX 生成工作簿并写入 w
func WriteXLSX(w io.Writer, report *models.VerificationReport) error {
	f, err := BuildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
