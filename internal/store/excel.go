package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

const defaultSheet = "Sheet1"

func excelPath(dir string) string { return filepath.Join(dir, "jobs.xlsx") }

// ExcelSink collects tables as sheets of one workbook, saved on Close.
type ExcelSink struct {
	path   string
	book   *excelize.File
	sheets int
}

// NewExcelSink prepares <dir>/jobs.xlsx.
func NewExcelSink(dir string) (*ExcelSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	return &ExcelSink{path: excelPath(dir), book: excelize.NewFile()}, nil
}

func (s *ExcelSink) Write(_ context.Context, table, _ string, f *frame.Frame) error {
	if _, err := s.book.NewSheet(table); err != nil {
		return err
	}
	s.sheets++

	header := make([]any, len(f.Columns))
	for i, c := range f.Columns {
		header[i] = c
	}
	if err := s.book.SetSheetRow(table, "A1", &header); err != nil {
		return err
	}
	for i, r := range f.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]any, len(f.Columns))
		for j, c := range f.Columns {
			row[j] = excelValue(r[c])
		}
		if err := s.book.SetSheetRow(table, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// Close drops the default sheet and saves the workbook. A sink that received
// no tables writes nothing.
func (s *ExcelSink) Close() error {
	defer s.book.Close()
	if s.sheets == 0 {
		return nil
	}
	if err := s.book.DeleteSheet(defaultSheet); err != nil {
		return err
	}
	s.book.SetActiveSheet(0)
	if err := s.book.SaveAs(s.path); err != nil {
		return fmt.Errorf("store: save %s: %w", s.path, err)
	}
	return nil
}

// excelValue keeps numbers and bools native and writes timestamps date-only.
func excelValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int64, float64, bool, string:
		return x
	case time.Time:
		return x.UTC().Format(time.DateOnly)
	default:
		s, _ := textValue(x)
		return s
	}
}
