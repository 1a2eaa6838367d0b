// Package compare decides structural equality of two row sets.
//
// Comparison is positional: rows are walked in lock-step in the order the
// database returned them, so reordered but otherwise identical data is
// reported as different.
package compare

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// Row is one record; cells are in projection order and nil means NULL.
type Row []any

// RowSet is a fully materialized query result, independent of any cursor.
type RowSet struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (rs *RowSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (rs *RowSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Mismatch locates the first point where two row sets differ.
// Row and Column are -1 when the difference is not tied to a cell.
type Mismatch struct {
	Row    int
	Column int
	Left   any
	Right  any
	Reason string
}

func (m Mismatch) String() string {
	if m.Column < 0 {
		return m.Reason
	}
	return fmt.Sprintf("row %d column %d: %v != %v", m.Row, m.Column, m.Left, m.Right)
}

// Equal reports whether a and b have the same column count and the same
// cells in the same order.
func Equal(a, b *RowSet) bool {
	_, differ := FirstDifference(a, b)
	return !differ
}

// FirstDifference returns the first mismatch between a and b, if any.
func FirstDifference(a, b *RowSet) (Mismatch, bool) {
	if a == nil || b == nil {
		if a == b {
			return Mismatch{}, false
		}
		return Mismatch{Row: -1, Column: -1, Reason: "one result set is missing"}, true
	}

	if len(a.Columns) != len(b.Columns) {
		return Mismatch{
			Row:    -1,
			Column: -1,
			Reason: fmt.Sprintf("column count differs: %d != %d", len(a.Columns), len(b.Columns)),
		}, true
	}

	for i := 0; i < len(a.Rows) || i < len(b.Rows); i++ {
		if i >= len(a.Rows) || i >= len(b.Rows) {
			return Mismatch{
				Row:    i,
				Column: -1,
				Reason: fmt.Sprintf("row count differs: %d != %d", len(a.Rows), len(b.Rows)),
			}, true
		}

		left, right := a.Rows[i], b.Rows[i]
		for c := 0; c < len(a.Columns); c++ {
			lv, rv := cell(left, c), cell(right, c)
			if !cmp.Equal(lv, rv) {
				return Mismatch{Row: i, Column: c, Left: lv, Right: rv}, true
			}
		}
	}

	return Mismatch{}, false
}

func cell(row Row, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}
