package sink

import (
	"context"
	"fmt"
	"strings"

	"michelin-scraper/models"

	"github.com/xuri/excelize/v2"
)

// maxXLSXSheetName is the Excel limit on sheet name length
const maxXLSXSheetName = 31

// XLSXWriter writes the dataset to a single-sheet spreadsheet file
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer for the file at path. The file is
// replaced on every write.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Path returns the output file path
func (w *XLSXWriter) Path() string {
	return w.path
}

// Write implements the Sink interface
func (w *XLSXWriter) Write(ctx context.Context, sheetName string, ds models.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	name := xlsxSheetName(sheetName)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return fmt.Errorf("failed to name sheet %q: %w", name, err)
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", name, err)
	}

	header := make([]interface{}, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < ds.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, ds.Row(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", w.path, err)
	}
	return nil
}

// xlsxSheetName replaces characters Excel rejects and truncates to the
// allowed length
func xlsxSheetName(name string) string {
	name = strings.NewReplacer(
		":", "_", "/", "_", "\\", "_", "?", "_", "*", "_", "[", "_", "]", "_",
	).Replace(name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if r := []rune(name); len(r) > maxXLSXSheetName {
		name = string(r[:maxXLSXSheetName])
	}
	if name == "" {
		name = "Sheet1"
	}
	return name
}
