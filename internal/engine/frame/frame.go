// Package frame is the small in-memory table passed between pipeline stages.
//
// A Frame is an ordered column list plus rows keyed by column name. A missing
// key and a nil value both mean null. Operations that reshape a frame return a
// new Frame and never mutate the receiver's rows; Set is the one in-place
// operation and callers Clone first when the input must stay untouched.
package frame

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrMissingColumns is returned when a step needs columns the frame lacks.
var ErrMissingColumns = errors.New("missing columns")

// Row is one record. Values are string, int64, float64, bool, time.Time,
// []string, map[string]any or nil.
type Row map[string]any

// Frame is an ordered set of columns and their rows.
type Frame struct {
	Columns []string
	Rows    []Row
}

// New returns an empty frame with the given columns.
func New(columns ...string) *Frame {
	return &Frame{Columns: slices.Clone(columns)}
}

// FromRecords builds a frame from decoded JSON objects. Columns are ordered by
// first appearance; keys inside one record are taken in sorted order since map
// iteration order is random.
func FromRecords(records []map[string]any) *Frame {
	f := &Frame{Rows: make([]Row, 0, len(records))}
	seen := make(map[string]bool)
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		row := make(Row, len(rec))
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				f.Columns = append(f.Columns, k)
			}
			row[k] = rec[k]
		}
		f.Rows = append(f.Rows, row)
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Has reports whether col is one of the frame's columns.
func (f *Frame) Has(col string) bool {
	return slices.Contains(f.Columns, col)
}

// Require returns an error naming step and every column in cols the frame lacks.
func (f *Frame) Require(step string, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !f.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w: %s", step, ErrMissingColumns, strings.Join(missing, ", "))
}

// Clone copies the frame and every row map. Values are shared.
func (f *Frame) Clone() *Frame {
	out := &Frame{Columns: slices.Clone(f.Columns), Rows: make([]Row, len(f.Rows))}
	for i, r := range f.Rows {
		out.Rows[i] = cloneRow(r)
	}
	return out
}

// Select projects the frame onto cols, in that order.
func (f *Frame) Select(cols ...string) (*Frame, error) {
	if err := f.Require("select", cols...); err != nil {
		return nil, err
	}
	out := &Frame{Columns: slices.Clone(cols), Rows: make([]Row, len(f.Rows))}
	for i, r := range f.Rows {
		row := make(Row, len(cols))
		for _, c := range cols {
			row[c] = r[c]
		}
		out.Rows[i] = row
	}
	return out, nil
}

// Drop removes cols. Columns the frame does not have are ignored.
func (f *Frame) Drop(cols ...string) *Frame {
	return f.DropFunc(func(c string) bool { return slices.Contains(cols, c) })
}

// DropFunc removes every column for which drop returns true.
func (f *Frame) DropFunc(drop func(col string) bool) *Frame {
	var keep []string
	for _, c := range f.Columns {
		if !drop(c) {
			keep = append(keep, c)
		}
	}
	out := &Frame{Columns: keep, Rows: make([]Row, len(f.Rows))}
	for i, r := range f.Rows {
		row := make(Row, len(keep))
		for _, c := range keep {
			if v, ok := r[c]; ok {
				row[c] = v
			}
		}
		out.Rows[i] = row
	}
	return out
}

// Rename renames columns using names (old -> new). Unknown names are ignored.
func (f *Frame) Rename(names map[string]string) *Frame {
	out := &Frame{Columns: make([]string, len(f.Columns)), Rows: make([]Row, len(f.Rows))}
	for i, c := range f.Columns {
		if n, ok := names[c]; ok {
			c = n
		}
		out.Columns[i] = c
	}
	for i, r := range f.Rows {
		row := make(Row, len(r))
		for k, v := range r {
			if n, ok := names[k]; ok {
				k = n
			}
			row[k] = v
		}
		out.Rows[i] = row
	}
	return out
}

// Set adds or replaces col with fn's value for every row, in place.
func (f *Frame) Set(col string, fn func(Row) any) {
	if !f.Has(col) {
		f.Columns = append(f.Columns, col)
	}
	for _, r := range f.Rows {
		r[col] = fn(r)
	}
}

// Filter keeps the rows for which keep returns true.
func (f *Frame) Filter(keep func(Row) bool) *Frame {
	out := &Frame{Columns: slices.Clone(f.Columns)}
	for _, r := range f.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, cloneRow(r))
		}
	}
	return out
}

// DropDuplicates keeps the first row for each distinct combination of cols.
// Nulls compare equal to each other.
func (f *Frame) DropDuplicates(cols ...string) *Frame {
	seen := make(map[string]bool, len(f.Rows))
	return f.Filter(func(r Row) bool {
		parts := make([]string, len(cols))
		for i, c := range cols {
			if IsNull(r[c]) {
				parts[i] = "\x00"
			} else {
				parts[i] = Key(r[c])
			}
		}
		k := strings.Join(parts, "\x1f")
		if seen[k] {
			return false
		}
		seen[k] = true
		return true
	})
}

// DropNull removes rows where any of cols is null.
func (f *Frame) DropNull(cols ...string) *Frame {
	return f.Filter(func(r Row) bool {
		for _, c := range cols {
			if IsNull(r[c]) {
				return false
			}
		}
		return true
	})
}

// DropEmptyRows removes rows in which every column is null.
func (f *Frame) DropEmptyRows() *Frame {
	return f.Filter(func(r Row) bool {
		for _, c := range f.Columns {
			if !IsNull(r[c]) {
				return true
			}
		}
		return false
	})
}

// LeftJoin appends right's columns to f, matching rows on the on column.
// Every left row is kept once; when right holds several rows for a key the
// first wins. Null keys never match. Columns present on both sides keep the
// left value unless the right value is non-null.
func (f *Frame) LeftJoin(right *Frame, on string) *Frame {
	index := make(map[string]Row, len(right.Rows))
	for _, r := range right.Rows {
		v := r[on]
		if IsNull(v) {
			continue
		}
		k := Key(v)
		if _, dup := index[k]; !dup {
			index[k] = r
		}
	}

	out := &Frame{Columns: slices.Clone(f.Columns), Rows: make([]Row, len(f.Rows))}
	for _, c := range right.Columns {
		if !out.Has(c) {
			out.Columns = append(out.Columns, c)
		}
	}
	for i, l := range f.Rows {
		row := cloneRow(l)
		if v := l[on]; !IsNull(v) {
			if match, ok := index[Key(v)]; ok {
				for _, c := range right.Columns {
					if c == on {
						continue
					}
					if rv := match[c]; !IsNull(rv) {
						row[c] = rv
					}
				}
			}
		}
		out.Rows[i] = row
	}
	return out
}

// IsNull reports whether v is the null value.
func IsNull(v any) bool {
	return v == nil
}

// Key returns a canonical string form of v used for joins and dedup.
// Integers and integral floats share a form with their decimal strings, so an
// int64 id joins with the same id decoded as text.
func Key(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func cloneRow(r Row) Row {
	row := make(Row, len(r))
	for k, v := range r {
		row[k] = v
	}
	return row
}
