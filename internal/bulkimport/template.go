package bulkimport

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const templateSheet = "Tasks"

// TemplateHeaders are the canonical column headers of the upload template,
// in the order operators see them. Every name resolves through the header
// alias table, so a file built from the template always maps cleanly.
var TemplateHeaders = []string{
	"CaseID", "Client Name", "Pincode", "Map URL", "Latitude", "Longitude", "Notes",
}

// BuildTemplate generates an empty upload template workbook with styled
// headers and one example row, returned as an in-memory buffer.
func BuildTemplate() (*bytes.Buffer, error) {
	file := excelize.NewFile()
	defer file.Close()

	if _, err := file.NewSheet(templateSheet); err != nil {
		return nil, fmt.Errorf("failed to create template sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err = file.SetSheetRow(templateSheet, "A1", &TemplateHeaders); err != nil {
		return nil, fmt.Errorf("failed to set header row: %w", err)
	}
	if err = file.SetCellStyle(templateSheet, "A1", "G1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header row: %w", err)
	}

	example := []interface{}{
		"CASE-0001", "Example Client", "560001",
		"https://maps.google.com/?q=12.9716,77.5946", "", "", "optional remarks",
	}
	if err = file.SetSheetRow(templateSheet, "A2", &example); err != nil {
		return nil, fmt.Errorf("failed to set example row: %w", err)
	}

	widths := map[string]float64{
		"A": 18, "B": 30, "C": 12, "D": 45, "E": 12, "F": 12, "G": 35,
	}
	for col, width := range widths {
		if err = file.SetColWidth(templateSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if sheetIndex, _ := file.GetSheetIndex("Sheet1"); sheetIndex != -1 {
		if err = file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write template to buffer: %w", err)
	}

	return buffer, nil
}
