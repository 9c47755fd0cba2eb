package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes column-aligned rows under a header and a dash divider.
// Nothing is printed for a table without rows.
type Table struct {
	tw      *tabwriter.Writer
	headers []string
	rows    int
}

// NewTable creates a table writing to w.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		tw:      tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: headers,
	}
}

// Row appends one row. The header is emitted before the first row.
func (t *Table) Row(values ...string) {
	if t.rows == 0 {
		t.line(t.headers)
		dividers := make([]string, len(t.headers))
		for i, h := range t.headers {
			dividers[i] = strings.Repeat("-", len(h))
		}
		t.line(dividers)
	}
	t.rows++
	t.line(values)
}

func (t *Table) line(cells []string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

// Len returns the number of rows written.
func (t *Table) Len() int {
	return t.rows
}

// Flush writes the aligned output.
func (t *Table) Flush() error {
	if t.rows == 0 {
		return nil
	}
	return t.tw.Flush()
}
