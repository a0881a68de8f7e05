package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Sheet is one tab of an Excel workbook export.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// WriteWorkbook writes the given sheets to an .xlsx file, replacing any
// existing file. The first sheet replaces the default sheet.
func WriteWorkbook(logger *slog.Logger, path string, sheets []Sheet) error {
	if logger == nil {
		logger = slog.Default()
	}
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
			}
		}

		for col, h := range sheet.Header {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetCellValue(sheet.Name, cell, h); err != nil {
				return fmt.Errorf("failed to write header cell: %w", err)
			}
		}
		for r, row := range sheet.Rows {
			for col, v := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, r+2)
				if err != nil {
					return fmt.Errorf("failed to compute cell name: %w", err)
				}
				if err := f.SetCellValue(sheet.Name, cell, v); err != nil {
					return fmt.Errorf("failed to write cell %s: %w", cell, err)
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logger.Info("wrote Excel workbook",
		slog.String("path", path),
		slog.Int("sheet_count", len(sheets)))
	return nil
}
