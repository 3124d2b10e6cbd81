package jobs

import (
	"slices"

	"github.com/anatolykoptev/go_seek/internal/engine"
	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

// deniedColumns are search payload fields that carry presentation data only.
var deniedColumns = []string{
	"logo", "isStandOut", "automaticInclusion", "displayType", "templateFileName",
	"tracking", "solMetadata", "branding", "categories",
}

// nestedColumns hold {id, description} objects that are split into a
// foreign key and a title.
var nestedColumns = []string{"advertiser", "classification", "sub_classification"}

// Normalize flattens raw search records into one row per listing id.
//
// Duplicate ids keep their first record; denylisted and purely numeric
// columns are dropped; names become snake_case; nested descriptors are split
// into <name>_id and <name>.
func Normalize(records []map[string]any) (*frame.Frame, error) {
	f := frame.FromRecords(records)
	if f.Len() == 0 {
		return f, nil
	}
	if err := f.Require("normalize", "id"); err != nil {
		return nil, err
	}
	for _, r := range f.Rows {
		for k, v := range r {
			r[k] = normalizeValue(v)
		}
	}

	f = f.DropDuplicates("id")
	f = f.DropFunc(func(c string) bool {
		return slices.Contains(deniedColumns, c) || engine.IsDigits(c)
	})

	names := make(map[string]string, len(f.Columns))
	for _, c := range f.Columns {
		names[c] = engine.SnakeCase(c)
	}
	f = f.Rename(names)

	for _, col := range nestedColumns {
		if !f.Has(col) {
			continue
		}
		f.Set(col+"_id", func(r frame.Row) any {
			id, _ := splitNested(r[col])
			return id
		})
		f.Set(col, func(r frame.Row) any {
			_, title := splitNested(r[col])
			return title
		})
	}

	for _, col := range []string{"area_id", "suburb_id"} {
		if err := coerceColumn(f, col, toInt64); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// splitNested returns the id and description of a {id, description} object.
func splitNested(v any) (id, title any) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}
	id = normalizeValue(m["id"])
	if s, ok := m["description"].(string); ok {
		title = s
	}
	return id, title
}
