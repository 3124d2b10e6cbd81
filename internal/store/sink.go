// Package store persists pipeline tables to flat files or a relational database.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go_seek/internal/engine"
	"github.com/anatolykoptev/go_seek/internal/engine/frame"
	"github.com/anatolykoptev/go_seek/internal/engine/jobs"
)

// Output formats.
const (
	FormatCSV      = "csv"
	FormatExcel    = "excel"
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"
)

// ErrUnknownFormat is returned by Open for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Sink is a persistence target for named tables.
type Sink interface {
	// Write stores f as table. key names the column that identifies a row.
	Write(ctx context.Context, table, key string, f *frame.Frame) error
	Close() error
}

// Options selects and configures a sink.
type Options struct {
	Format      string `yaml:"format"`
	Dir         string `yaml:"dir"`
	SingleTable bool   `yaml:"single_table"`
	DatabaseURL string `yaml:"database_url"`
}

// DefaultOptions writes CSV files under ./data.
func DefaultOptions() Options {
	return Options{Format: FormatCSV, Dir: "data"}
}

// LoadOptions reads the output section of a run file on top of DefaultOptions.
func LoadOptions(path string) (Options, error) {
	file := struct {
		Output Options `yaml:"output"`
	}{Output: DefaultOptions()}
	data, err := os.ReadFile(path)
	if err != nil {
		return file.Output, fmt.Errorf("read output options: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file.Output, fmt.Errorf("parse output options %s: %w", path, err)
	}
	return file.Output, nil
}

// Location describes where opts writes to, for logs and tool output.
func (o Options) Location() string {
	switch o.Format {
	case FormatSQLite:
		return sqlitePath(o.Dir)
	case FormatPostgres:
		return "postgres"
	case FormatExcel:
		return excelPath(o.Dir)
	default:
		return o.Dir
	}
}

// Open returns the sink for opts.Format.
func Open(ctx context.Context, opts Options) (Sink, error) {
	switch opts.Format {
	case FormatCSV, "":
		return NewCSVSink(opts.Dir)
	case FormatExcel:
		return NewExcelSink(opts.Dir)
	case FormatSQLite:
		return OpenSQLite(ctx, sqlitePath(opts.Dir))
	case FormatPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// KeyColumn returns the identifying column of table.
func KeyColumn(table string) string {
	switch table {
	case jobs.TableJobs, jobs.TableJobsWide:
		return "job_id"
	case jobs.TableCompanyReview:
		return "review_company_id"
	default:
		return table + "_id"
	}
}

// Save writes tables to sink in output order. With singleTable only the wide
// table is written. Otherwise file sinks skip the wide table and database
// sinks receive every table.
func Save(ctx context.Context, sink Sink, tables jobs.Tables, singleTable bool) error {
	_, isDB := sink.(*sqlSink)
	for _, name := range jobs.TableNames {
		f, ok := tables[name]
		if !ok {
			continue
		}
		switch {
		case singleTable && name != jobs.TableJobsWide:
			continue
		case !singleTable && !isDB && name == jobs.TableJobsWide:
			continue
		}
		if err := sink.Write(ctx, name, KeyColumn(name), f); err != nil {
			return fmt.Errorf("store: write %s: %w", name, err)
		}
		engine.AddRowsWritten(f.Len())
		slog.Debug("store: table written", slog.String("table", name), slog.Int("rows", f.Len()))
	}
	return nil
}
