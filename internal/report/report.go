// Package report renders usage rows into the export formats served by the
// API and mirrored to Google Sheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"equipbook/internal/models"

	"github.com/xuri/excelize/v2"
)

// Header is the column layout shared by every export.
var Header = []string{"Asset Number", "Asset Name", "Person", "Start Date", "End Date", "Note (Purpose)"}

// Record flattens one row in Header order.
func Record(r models.ReportRow) []string {
	return []string{r.AssetNumber, r.EquipmentName, r.PersonName, r.StartDate, r.EndDate, r.Note}
}

// Filename is the download name for a usage export of the given window.
func Filename(window models.DateRange, ext string) string {
	return fmt.Sprintf("usage_%s_to_%s.%s", window.Start, window.End, ext)
}

// WriteCSV writes the header and one line per row.
func WriteCSV(w io.Writer, rows []models.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(Record(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Usage"

// WriteXLSX writes a single-sheet workbook with a title line, a styled
// header and one line per row.
func WriteXLSX(w io.Writer, window models.DateRange, rows []models.ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Equipment usage %s to %s", window.Start, window.End))
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return err
	}
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	for col, title := range Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 3)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, row := range rows {
		for col, value := range Record(row) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+4)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "C", 28)
	_ = f.SetColWidth(sheetName, "D", "E", 12)
	_ = f.SetColWidth(sheetName, "F", "F", 40)

	return f.Write(w)
}
