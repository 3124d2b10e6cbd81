package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// textValue renders v for a text cell. ok is false for null.
func textValue(v any) (s string, ok bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int:
		return strconv.Itoa(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.UTC().Format(time.RFC3339), true
	case []string, []any, map[string]any:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x), true
		}
		return string(data), true
	default:
		return fmt.Sprint(x), true
	}
}

// isCompound reports whether v is a list or object that text columns store as JSON.
func isCompound(v any) bool {
	switch v.(type) {
	case []string, []any, map[string]any:
		return true
	}
	return false
}
