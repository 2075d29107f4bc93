package fetcher

import (
	"strings"
)

// Table is a header plus data rows read from a tabular source.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable creates a table with a cleaned header: surrounding whitespace
// and a UTF-8 byte order mark are removed.
func NewTable(header []string) *Table {
	h := make([]string, len(header))
	for i, name := range header {
		h[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	return &Table{Header: h}
}

// Index returns the position of the named column, case-insensitively, or -1.
func (t *Table) Index(name string) int {
	want := strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.EqualFold(h, want) {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value at column idx of row, or "" when the row is short.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
