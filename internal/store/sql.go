package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

// statement is one parameterized SQL statement.
type statement struct {
	query string
	args  []any
}

// database is the backend behind sqlSink.
type database interface {
	// columns lists the existing columns of table; empty when it does not exist.
	columns(ctx context.Context, table string) ([]string, error)
	// execAll runs stmts in one transaction.
	execAll(ctx context.Context, stmts []statement) error
	close() error
}

// dialect holds what differs between SQL backends.
type dialect struct {
	placeholder func(n int) string
	types       map[string]string // Go kind -> column type
	value       func(v any) any
}

// sqlSink upserts tables into a relational database. Tables are created on
// first write with the key as primary key, missing columns are added and rows
// replace earlier rows with the same key.
type sqlSink struct {
	db      database
	dialect dialect
}

func (s *sqlSink) Write(ctx context.Context, table, key string, f *frame.Frame) error {
	if len(f.Columns) == 0 {
		return nil
	}
	if !f.Has(key) {
		return fmt.Errorf("key column %q missing", key)
	}

	existing, err := s.db.columns(ctx, table)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	types := s.columnTypes(f)

	var stmts []statement
	if len(existing) == 0 {
		stmts = append(stmts, statement{query: createTableSQL(table, key, f.Columns, types)})
	} else {
		have := make(map[string]bool, len(existing))
		for _, c := range existing {
			have[c] = true
		}
		for _, c := range f.Columns {
			if !have[c] {
				stmts = append(stmts, statement{query: fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
					quoteIdent(table), quoteIdent(c), types[c])})
			}
		}
	}

	insert := s.upsertSQL(table, key, f.Columns)
	for _, r := range f.Rows {
		if frame.IsNull(r[key]) {
			continue
		}
		args := make([]any, len(f.Columns))
		for i, c := range f.Columns {
			args[i] = s.dialect.value(r[c])
		}
		stmts = append(stmts, statement{query: insert, args: args})
	}
	return s.db.execAll(ctx, stmts)
}

func (s *sqlSink) Close() error { return s.db.close() }

// columnTypes maps each column to the SQL type of its first non-null value.
func (s *sqlSink) columnTypes(f *frame.Frame) map[string]string {
	out := make(map[string]string, len(f.Columns))
	for _, c := range f.Columns {
		kind := "text"
		for _, r := range f.Rows {
			if v := r[c]; !frame.IsNull(v) {
				kind = valueKind(v)
				break
			}
		}
		out[c] = s.dialect.types[kind]
	}
	return out
}

func valueKind(v any) string {
	switch v.(type) {
	case int64, int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case time.Time:
		return "time"
	default:
		return "text"
	}
}

func createTableSQL(table, key string, columns []string, types map[string]string) string {
	defs := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		defs = append(defs, quoteIdent(c)+" "+types[c])
	}
	defs = append(defs, "PRIMARY KEY ("+quoteIdent(key)+")")
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func (s *sqlSink) upsertSQL(table, key string, columns []string) string {
	cols := make([]string, len(columns))
	params := make([]string, len(columns))
	var updates []string
	for i, c := range columns {
		cols[i] = quoteIdent(c)
		params[i] = s.dialect.placeholder(i + 1)
		if c != key {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", cols[i], cols[i]))
		}
	}
	conflict := "DO NOTHING"
	if len(updates) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(updates, ", ")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(params, ", "), quoteIdent(key), conflict)
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// jsonValue stores lists and objects as JSON text and leaves other values alone.
func jsonValue(v any) any {
	if isCompound(v) {
		s, _ := textValue(v)
		return s
	}
	return v
}
