package sqlrunner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roshangit23/ReadyTestAPI/internal/compare"
	"github.com/roshangit23/ReadyTestAPI/internal/logging"
)

// Column is one column/value pair of an inserted row.
type Column struct {
	Name  string
	Value any
}

// RowExists reports whether query returns at least one row.
func (e *Executor) RowExists(ctx context.Context, query string) (bool, error) {
	rows, err := e.QueryCursor(ctx, query)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	exists := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fail("query", query, err)
	}
	return exists, nil
}

// RowCount returns the number of rows query returns.
func (e *Executor) RowCount(ctx context.Context, query string) (int, error) {
	rows, err := e.QueryCursor(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, fail("query", query, err)
	}
	return n, nil
}

// ColumnValue returns the named column of the first row. found is false when
// the query returns no rows.
func (e *Executor) ColumnValue(ctx context.Context, query, column string) (value any, found bool, err error) {
	rs, err := e.Query(ctx, query)
	if err != nil {
		return nil, false, err
	}

	idx := rs.ColumnIndex(column)
	if idx < 0 {
		return nil, false, fail("query", query, fmt.Errorf("column %q not in result", column))
	}
	if rs.Len() == 0 {
		return nil, false, nil
	}
	return rs.Rows[0][idx], true, nil
}

// VerifyColumnValue compares the named column of the first row with
// expected by string form. No rows means no match.
func (e *Executor) VerifyColumnValue(ctx context.Context, query, column, expected string) (bool, error) {
	value, found, err := e.ColumnValue(ctx, query, column)
	if err != nil || !found {
		return false, err
	}
	return FormatCell(value) == expected, nil
}

// FormatCell renders a cell the way step tables spell values. NULL is "null".
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

// TruncateTable removes every row of table.
func (e *Executor) TruncateTable(ctx context.Context, table string) error {
	if err := checkIdentifier(table); err != nil {
		return fail("truncate", table, err)
	}
	_, err := e.exec(ctx, "truncate", "TRUNCATE TABLE "+table)
	return err
}

// InsertRow inserts one row, binding every value as a parameter.
func (e *Executor) InsertRow(ctx context.Context, table string, columns []Column) error {
	if err := checkIdentifier(table); err != nil {
		return fail("insert", table, err)
	}
	if len(columns) == 0 {
		return fail("insert", table, fmt.Errorf("no columns to insert"))
	}

	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		if err := checkIdentifier(c.Name); err != nil {
			return fail("insert", table, err)
		}
		names[i] = c.Name
		placeholders[i] = e.catalog.Placeholder(i + 1)
		args[i] = c.Value
	}

	statement := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	_, err := e.exec(ctx, "insert", statement, args...)
	return err
}

// DeleteWhere deletes the rows of table matching condition, a raw SQL
// predicate, and returns how many went.
func (e *Executor) DeleteWhere(ctx context.Context, table, condition string) (int64, error) {
	if err := checkIdentifier(table); err != nil {
		return 0, fail("delete", table, err)
	}
	return e.exec(ctx, "delete", "DELETE FROM "+table+" WHERE "+condition)
}

// ExecutionTime runs statement once and returns the wall time it took.
func (e *Executor) ExecutionTime(ctx context.Context, statement string) (time.Duration, error) {
	q, err := e.target(ctx)
	if err != nil {
		return 0, fail("timed execution", statement, err)
	}

	start := time.Now()
	if _, err := q.ExecContext(ctx, statement); err != nil {
		return 0, fail("timed execution", statement, err)
	}
	elapsed := time.Since(start)

	logging.Debug("sql", "executed in %s: %s", elapsed, statement)
	return elapsed, nil
}

// CompareQueries runs both queries and compares their results positionally.
func (e *Executor) CompareQueries(ctx context.Context, left, right string) (bool, compare.Mismatch, error) {
	a, err := e.Query(ctx, left)
	if err != nil {
		return false, compare.Mismatch{}, err
	}
	b, err := e.Query(ctx, right)
	if err != nil {
		return false, compare.Mismatch{}, err
	}
	m, differ := compare.FirstDifference(a, b)
	return !differ, m, nil
}

// CompareTables compares every row of two tables in the order the database
// returns them.
func (e *Executor) CompareTables(ctx context.Context, left, right string) (bool, error) {
	for _, table := range []string{left, right} {
		if err := checkIdentifier(table); err != nil {
			return false, fail("compare", table, err)
		}
	}
	equal, m, err := e.CompareQueries(ctx, "SELECT * FROM "+left, "SELECT * FROM "+right)
	if err != nil {
		return false, err
	}
	if !equal {
		logging.Debug("sql", "tables %s and %s differ: %s", left, right, m)
	}
	return equal, nil
}
