// Package clean normalizes column identifiers and cell values, and repairs
// each raw entity table into its canonical cleaned form.
package clean

import (
	"regexp"
	"strings"

	"github.com/horizon-insight/cordis-etl/internal/table"
)

var (
	wsRun   = regexp.MustCompile(`\s+`)
	nonWord = regexp.MustCompile(`[^\w_]`)
)

// NormalizeColumn converts a raw header name into the canonical identifier:
// trimmed, lower-cased, whitespace runs collapsed to a single underscore,
// all remaining non-word characters removed. Total and deterministic.
func NormalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = wsRun.ReplaceAllString(s, "_")
	return nonWord.ReplaceAllString(s, "")
}

// NormalizeHeader applies NormalizeColumn to every column of t in place.
func NormalizeHeader(t *table.Table) {
	m := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		m[c] = NormalizeColumn(c)
	}
	t.RenameColumns(m)
}

// dropBlankColumns removes columns whose normalized name is empty, which
// appear when a header cell held only whitespace or punctuation.
func dropBlankColumns(t *table.Table) *table.Table {
	var keep []string
	for _, c := range t.Columns {
		if strings.TrimSpace(c) != "" {
			keep = append(keep, c)
		}
	}
	if len(keep) == len(t.Columns) {
		return t
	}
	out, err := t.Select(keep...)
	if err != nil {
		return t
	}
	return out
}
