package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	columnGap = "  "
	ellipsis  = "..."
)

// column holds per-column layout settings.
type column struct {
	header string
	right  bool
	max    int // 0 means unbounded
	width  int
}

// Table lays out rows of text in aligned columns, with a dashed rule
// under the header. Widths count runes, so notes and labels with
// non-ASCII text line up.
type Table struct {
	cols []column
	rows [][]string
}

// NewTable returns a table with one column per header.
func NewTable(headers ...string) *Table {
	cols := make([]column, len(headers))
	for i, h := range headers {
		cols[i] = column{header: h}
	}
	return &Table{cols: cols}
}

// AddRow appends a row. Missing cells render empty and extra cells are
// dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// AlignRight right-aligns the given columns, e.g. indexes and amounts.
func (t *Table) AlignRight(cols ...int) {
	for _, c := range cols {
		if c >= 0 && c < len(t.cols) {
			t.cols[c].right = true
		}
	}
}

// Clip limits a column to n runes. Longer cells end in "...".
func (t *Table) Clip(col, n int) {
	if col >= 0 && col < len(t.cols) && n > len(ellipsis) {
		t.cols[col].max = n
	}
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	if len(t.cols) == 0 {
		return nil
	}

	cells := make([][]string, len(t.rows))
	for i := range t.cols {
		t.cols[i].width = utf8.RuneCountInString(t.cols[i].header)
	}
	for r, row := range t.rows {
		cells[r] = make([]string, len(t.cols))
		for i := range t.cols {
			if i < len(row) {
				cells[r][i] = clip(row[i], t.cols[i].max)
			}
			t.cols[i].width = max(t.cols[i].width, utf8.RuneCountInString(cells[r][i]))
		}
	}

	header := make([]string, len(t.cols))
	rule := make([]string, len(t.cols))
	for i, c := range t.cols {
		header[i] = c.header
		rule[i] = strings.Repeat("-", c.width)
	}
	if err := t.line(w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Join(rule, columnGap)); err != nil {
		return err
	}
	for _, row := range cells {
		if err := t.line(w, row); err != nil {
			return err
		}
	}
	return nil
}

// String returns the rendered table.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

func (t *Table) line(w io.Writer, cells []string) error {
	parts := make([]string, len(t.cols))
	for i, c := range t.cols {
		pad := strings.Repeat(" ", c.width-utf8.RuneCountInString(cells[i]))
		if c.right {
			parts[i] = pad + cells[i]
		} else {
			parts[i] = cells[i] + pad
		}
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, columnGap), " "))
	return err
}

func clip(s string, n int) string {
	if n == 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-len(ellipsis)]) + ellipsis
}
