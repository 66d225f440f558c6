package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// WorkbookWriter writes the BI workbook: one sheet per export table so
// Power BI and Tableau users can connect to a single file.
type WorkbookWriter struct {
	outDir string
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer rooted at an output directory
func NewWorkbookWriter(outDir string, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{outDir: outDir, logger: logger}
}

// Sheet pairs a sheet name with its table
type Sheet struct {
	Name  string
	Table Table
}

// WriteWorkbook writes all sheets into a single xlsx file
func (w *WorkbookWriter) WriteWorkbook(name string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	fullPath := filepath.Join(w.outDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			// Reuse the default sheet for the first table.
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", sheet.Name, err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet.Name, err)
			}
		}
		if err := writeSheet(f, sheet.Name, sheet.Table); err != nil {
			return err
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	w.logger.Info("wrote BI workbook",
		slog.String("path", fullPath),
		slog.Int("sheets", len(sheets)))
	return nil
}

func writeSheet(f *excelize.File, name string, table Table) error {
	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header row of %s: %w", name, err)
	}

	for i, record := range table.Records {
		row := make([]interface{}, len(record))
		for j, cell := range record {
			row[j] = cell
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve cell for row %d of %s: %w", i, name, err)
		}
		if err := f.SetSheetRow(name, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i, name, err)
		}
	}
	return nil
}
