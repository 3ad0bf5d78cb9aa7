package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"wellwatch/internal/models"
)

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ParseImportFile reads the first sheet and returns one freeform map per data
// row, keyed by the header row. Cell values stay raw; the import pipeline
// owns normalization.
func (s *ExcelService) ParseImportFile(filePath string) ([]map[string]interface{}, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must contain at least header row and one data row")
	}

	header := rows[0]
	var records []map[string]interface{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		record := make(map[string]interface{})
		empty := true
		for j, name := range header {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			value := getCellValue(row, j)
			if value != "" {
				empty = false
			}
			record[name] = value
		}
		if empty {
			continue // Skip blank rows
		}
		records = append(records, record)
	}

	return records, nil
}

// GenerateImportTemplate creates a template spreadsheet for the given kind.
func (s *ExcelService) GenerateImportTemplate(kind models.RecordKind, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Data"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	var headers []string
	var sampleData [][]interface{}
	var instructions []string

	if kind == models.KindWell {
		headers = []string{"API Number", "Name", "Notes"}
		sampleData = [][]interface{}{
			{"35-015-20001", "Smith 1-12", "Family well"},
			{"3501520002", "Jones 2-3", ""},
		}
		instructions = []string{
			"Instructions:",
			"1. API Number: 10-digit well API number, with or without dashes (must start with 35)",
			"2. Name: optional display name for the well",
			"3. Notes: optional free text",
			"",
			"Note: Do not modify the header row. Fill data starting from row 2.",
		}
	} else {
		headers = []string{"Section", "Township", "Range", "Meridian", "County", "Name", "Notes"}
		sampleData = [][]interface{}{
			{"3", "T12N", "R4W", "Indian", "Grady", "Home quarter", ""},
			{"Sec 15", "12N", "4W", "", "Grady", "", "Leased 2023"},
		}
		instructions = []string{
			"Instructions:",
			"1. Section: 1-36 ('3', 'S3' and 'Sec 3' are all accepted)",
			"2. Township: number plus N/S, e.g. 12N or T12N",
			"3. Range: number plus E/W, e.g. 4W or R4W",
			"4. Meridian: Indian (IM) or Cimarron (CM); defaults to Indian when blank",
			"5. County: optional county name",
			"6. Name / Notes: optional display fields",
			"",
			"Note: Do not modify the header row. Fill data starting from row 2.",
		}
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for rowIdx, rowData := range sampleData {
		row := rowIdx + 2
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	instructionsStartRow := len(sampleData) + 4
	for i, instruction := range instructions {
		cell := fmt.Sprintf("A%d", instructionsStartRow+i)
		f.SetCellValue(sheetName, cell, instruction)
	}

	instructionStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F8FF"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", instructionsStartRow), fmt.Sprintf("A%d", instructionsStartRow), instructionStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// ExportErrorReport writes every row that failed validation or was flagged a
// duplicate, with its messages, for the user to download and fix.
func (s *ExcelService) ExportErrorReport(rows []models.ImportRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Validation Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{"Row", "Status", "Errors", "Warnings", "Original"}
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	reportRow := 2
	for i, row := range rows {
		if row.IsValid && !row.IsDuplicate {
			continue
		}

		status := "invalid"
		if row.IsValid {
			status = "duplicate"
		}

		original, _ := json.Marshal(row.Original)
		values := []interface{}{
			i + 1,
			status,
			strings.Join(row.Errors, "; "),
			strings.Join(row.Warnings, "; "),
			string(original),
		}
		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), reportRow)
			f.SetCellValue(sheetName, cell, value)
		}
		reportRow++
	}

	columnWidths := []float64{8, 12, 45, 30, 60}
	for i, width := range columnWidths {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, width)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// Helper functions
func getCellValue(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
