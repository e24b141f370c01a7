package chart

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExcelPresenter writes one workbook per source: a dashboard sheet plus one
// sheet per chart, each holding the aggregate table and a native chart.
type ExcelPresenter struct {
	OutputDir string
}

func NewExcelPresenter(outputDir string) *ExcelPresenter {
	return &ExcelPresenter{OutputDir: outputDir}
}

func (e *ExcelPresenter) Export(source string, charts []Chart) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("%s_charts_%s.xlsx", source, timestamp))

	f := excelize.NewFile()
	defer f.Close()

	rendered := make([]Chart, 0, len(charts))
	for _, c := range charts {
		if len(c.Rows) == 0 {
			continue
		}
		rendered = append(rendered, c)
	}

	if err := e.createDashboardSheet(f, source, rendered); err != nil {
		return "", fmt.Errorf("failed to create dashboard: %w", err)
	}

	for _, c := range rendered {
		if err := e.createChartSheet(f, c); err != nil {
			return "", fmt.Errorf("failed to create sheet for %s: %w", c.Title, err)
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", err
	}

	if err := f.SaveAs(filename); err != nil {
		return "", fmt.Errorf("failed to save excel file: %w", err)
	}

	return filename, nil
}

func (e *ExcelPresenter) createDashboardSheet(f *excelize.File, source string, charts []Chart) error {
	const sheetName = "Dashboard"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", "Source:")
	f.SetCellValue(sheetName, "B1", cases.Title(language.English).String(source))
	f.SetCellValue(sheetName, "A2", "Generated:")
	f.SetCellValue(sheetName, "B2", time.Now().Format("02-01-06"))

	row := 4
	for col, header := range []string{"Chart", "Sheet", "Months", "Subjects"} {
		cell := cellName(col+1, row)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for _, c := range charts {
		row++
		grid := Pivot(c.Rows)
		f.SetCellValue(sheetName, cellName(1, row), c.Title)
		f.SetCellValue(sheetName, cellName(2, row), sanitizeSheetName(c.Title))
		f.SetCellValue(sheetName, cellName(3, row), len(grid.Buckets))
		f.SetCellValue(sheetName, cellName(4, row), len(grid.Subjects))
	}

	f.SetColWidth(sheetName, "A", "A", 45)
	f.SetColWidth(sheetName, "B", "B", 35)
	f.SetColWidth(sheetName, "C", "D", 12)

	return nil
}

func (e *ExcelPresenter) createChartSheet(f *excelize.File, c Chart) error {
	sheetName := sanitizeSheetName(c.Title)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	grid := Pivot(c.Rows)

	f.SetCellValue(sheetName, "A1", "Month")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)
	for i, subject := range grid.Subjects {
		name := subject
		if name == "" {
			name = "All"
		}
		cell := cellName(i+2, 1)
		f.SetCellValue(sheetName, cell, name)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, bucket := range grid.Buckets {
		row := i + 2
		f.SetCellValue(sheetName, cellName(1, row), bucket)
		for j, subject := range grid.Subjects {
			if v, ok := grid.Value(bucket, subject); ok {
				f.SetCellValue(sheetName, cellName(j+2, row), v)
			}
		}
	}

	lastRow := len(grid.Buckets) + 1
	chartType := excelize.Line
	if c.Kind == "col" {
		chartType = excelize.Col
	}

	series := make([]excelize.ChartSeries, 0, len(grid.Subjects))
	for j := range grid.Subjects {
		colLetter := columnLetter(j + 2)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheetName, colLetter),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheetName, lastRow),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheetName, colLetter, colLetter, lastRow),
		})
	}

	title := c.Title
	if c.Unit != "" {
		title = fmt.Sprintf("%s (%s)", c.Title, c.Unit)
	}
	anchor := cellName(len(grid.Subjects)+3, 2)
	if err := f.AddChart(sheetName, anchor, &excelize.Chart{
		Type:   chartType,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
		Dimension: excelize.ChartDimension{
			Width:  720,
			Height: 360,
		},
	}); err != nil {
		return err
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", columnLetter(len(grid.Subjects)+1), 15)

	return nil
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", columnLetter(col), row)
}

func columnLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

func sanitizeSheetName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, "?", "")
	name = strings.ReplaceAll(name, "*", "")
	name = strings.ReplaceAll(name, "[", "(")
	name = strings.ReplaceAll(name, "]", ")")

	if len(name) > 31 {
		name = name[:31]
	}

	return strings.TrimSpace(name)
}
