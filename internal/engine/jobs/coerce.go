package jobs

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

// normalizeValue converts decoded JSON scalars into frame values: integral
// numbers become int64, other numbers float64. Nested objects and lists are
// kept as decoded.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	default:
		return v
	}
}

// toInt64 converts v to an integer. ok is false for null.
func toInt64(v any) (n int64, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return x, true, nil
	case int:
		return int64(x), true, nil
	case float64:
		if x != math.Trunc(x) {
			return 0, false, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), true, nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false, err
		}
		return n, true, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false, err
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("cannot convert %T to integer", v)
	}
}

// toBool converts v to a bool. ok is false for null.
func toBool(v any) (b bool, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return false, false, nil
	case bool:
		return x, true, nil
	case int64:
		return x != 0, true, nil
	case float64:
		return x != 0, true, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return false, false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, false, err
		}
		return b, true, nil
	default:
		return false, false, fmt.Errorf("cannot convert %T to bool", v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime parses v as a timestamp. ok is false for null.
func toTime(v any) (t time.Time, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return x, true, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("unrecognized time %q", s)
	default:
		return time.Time{}, false, fmt.Errorf("cannot convert %T to time", v)
	}
}

// coerceColumn converts every non-null value of col in place. A missing
// column is skipped.
func coerceColumn[T any](f *frame.Frame, col string, conv func(any) (T, bool, error)) error {
	if !f.Has(col) {
		return nil
	}
	for i, r := range f.Rows {
		v, ok, err := conv(r[col])
		if err != nil {
			return fmt.Errorf("column %s row %d: %w", col, i, err)
		}
		if ok {
			r[col] = v
		} else {
			r[col] = nil
		}
	}
	return nil
}

// isEmptyValue reports whether v is one of the placeholder values the final
// tables store as null.
func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || x == "[]" || x == "{}"
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// normalizeNulls replaces empty strings, "[]", "{}" and empty collections
// with null, in place.
func normalizeNulls(f *frame.Frame) {
	for _, r := range f.Rows {
		for _, c := range f.Columns {
			if v, present := r[c]; present && isEmptyValue(v) {
				r[c] = nil
			}
		}
	}
}
