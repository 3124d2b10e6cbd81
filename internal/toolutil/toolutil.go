// Package toolutil provides shared helpers for the CLI and the MCP tools.
package toolutil

import (
	"slices"
	"strings"

	"github.com/anatolykoptev/go_seek/internal/engine"
	"github.com/anatolykoptev/go_seek/internal/engine/jobs"
)

// SplitList splits a comma-separated list, trimming blanks. Empty input
// returns nil.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TableCounts returns the row count of every table present in tables.
func TableCounts(tables jobs.Tables) map[string]int {
	counts := make(map[string]int, len(tables))
	for name, f := range tables {
		counts[name] = f.Len()
	}
	return counts
}

// SampleTitles returns up to n distinct listing titles from the jobs table,
// each cut to maxLen runes at a word boundary.
func SampleTitles(tables jobs.Tables, n, maxLen int) []string {
	f, ok := tables[jobs.TableJobs]
	if !ok {
		return nil
	}
	var titles []string
	for _, r := range f.Rows {
		if len(titles) >= n {
			break
		}
		title, _ := r["title"].(string)
		if title = strings.TrimSpace(title); title == "" {
			continue
		}
		title = engine.TruncateAtWord(title, maxLen)
		if !slices.Contains(titles, title) {
			titles = append(titles, title)
		}
	}
	return titles
}
