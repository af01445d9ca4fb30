package excel

import (
	"fmt"
	"io"

	"goldendash/domain/catalog"
	"goldendash/domain/table"

	"github.com/xuri/excelize/v2"
)

// ExportSheet is the sheet name of exported tables
const ExportSheet = "Examples"

// WriteTable exports the visible rows of a table in display order. Numeric cells are written as
// numbers, missing values as empty cells; failing cells are shaded.
func WriteTable(w io.Writer, tbl *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	failing, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FEE2E2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create failing style: %w", err)
	}

	for i, c := range tbl.Columns() {
		ref, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ExportSheet, ref, c.Name); err != nil {
			return err
		}
		if err := f.SetCellStyle(ExportSheet, ref, ref, bold); err != nil {
			return err
		}
	}

	line := 2
	for _, row := range tbl.Rows() {
		if row.Hidden {
			continue
		}
		for i, cell := range row.Cells {
			ref, _ := excelize.CoordinatesToCellName(i+1, line)
			if err := setCell(f, ref, cell); err != nil {
				return err
			}
			if cell.Failing {
				if err := f.SetCellStyle(ExportSheet, ref, ref, failing); err != nil {
					return err
				}
			}
		}
		line++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, ref string, cell table.Cell) error {
	if cell.Muted {
		return nil
	}
	if cell.Numeric {
		if v, ok := catalog.ParseNumber(cell.Text); ok {
			return f.SetCellFloat(ExportSheet, ref, v, 1, 64)
		}
	}
	return f.SetCellStr(ExportSheet, ref, cell.Text)
}
