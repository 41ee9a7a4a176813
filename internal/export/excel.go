package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/issuetrail/issuetrail/internal/timeline"
)

// ExcelExporter writes a timeline workbook with a Timeline sheet (one row
// per record) and a Summary sheet (counts per kind and per author).
type ExcelExporter struct {
	OutputDir string
}

func NewExcelExporter(outputDir string) *ExcelExporter {
	return &ExcelExporter{OutputDir: outputDir}
}

// Export writes the envelope and returns the path of the created file.
func (e *ExcelExporter) Export(env timeline.Envelope, issueKey string) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(e.OutputDir, exportFilename(issueKey, "xlsx"))

	f := excelize.NewFile()
	defer f.Close()

	if err := e.createTimelineSheet(f, "Timeline", env); err != nil {
		return "", fmt.Errorf("failed to create timeline sheet: %w", err)
	}
	if err := e.createSummarySheet(f, "Summary", env); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}

	_ = f.DeleteSheet("Sheet1")

	if index, err := f.GetSheetIndex("Timeline"); err == nil {
		f.SetActiveSheet(index)
	}

	if err := f.SaveAs(filename); err != nil {
		return "", fmt.Errorf("failed to save excel file: %w", err)
	}

	return filename, nil
}

func (e *ExcelExporter) createTimelineSheet(f *excelize.File, sheetName string, env timeline.Envelope) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})

	for col, header := range timelineHeader {
		cell := cellName(col+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, record := range env.Merged() {
		row := recordRow(i+1, record)
		for col, value := range row {
			f.SetCellValue(sheetName, cellName(col+1, i+2), value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 5)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 20)
	f.SetColWidth(sheetName, "D", "D", 60)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 22)

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

func (e *ExcelExporter) createSummarySheet(f *excelize.File, sheetName string, env timeline.Envelope) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	totalStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#B4C7E7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	f.SetCellValue(sheetName, cellName(1, 1), "Field changes")
	f.SetCellValue(sheetName, cellName(2, 1), len(env.Changelog))
	f.SetCellValue(sheetName, cellName(1, 2), "Comments")
	f.SetCellValue(sheetName, cellName(2, 2), len(env.Comments))
	f.SetCellValue(sheetName, cellName(1, 3), "Attachments")
	f.SetCellValue(sheetName, cellName(2, 3), len(env.Attachments))
	f.SetCellValue(sheetName, cellName(1, 4), "Total")
	f.SetCellValue(sheetName, cellName(2, 4), env.Total)
	f.SetCellStyle(sheetName, cellName(1, 4), cellName(2, 4), totalStyle)

	counts := make(map[string]int)
	authors := []string{}
	for _, record := range env.Merged() {
		author := recordAuthor(record)
		if counts[author] == 0 {
			authors = append(authors, author)
		}
		counts[author]++
	}
	sort.Strings(authors)

	row := 6
	f.SetCellValue(sheetName, cellName(1, row), "Author")
	f.SetCellValue(sheetName, cellName(2, row), "Records")
	f.SetCellStyle(sheetName, cellName(1, row), cellName(2, row), totalStyle)
	row++

	for _, author := range authors {
		f.SetCellValue(sheetName, cellName(1, row), author)
		f.SetCellValue(sheetName, cellName(2, row), counts[author])
		row++
	}

	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "B", 12)

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
