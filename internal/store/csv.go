package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

// CSVSink writes each table to <dir>/<table>.csv, replacing earlier files.
type CSVSink struct {
	dir string
}

// NewCSVSink creates dir if needed.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	return &CSVSink{dir: dir}, nil
}

func (s *CSVSink) Write(_ context.Context, table, _ string, f *frame.Frame) (err error) {
	path := filepath.Join(s.dir, table+".csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(f.Columns); err != nil {
		return err
	}
	record := make([]string, len(f.Columns))
	for _, r := range f.Rows {
		for i, c := range f.Columns {
			record[i], _ = textValue(r[c])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *CSVSink) Close() error { return nil }
