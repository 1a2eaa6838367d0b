package sqlrunner

import (
	"context"
	"database/sql"
)

// ColumnInfo describes one column of a table as the driver reports it.
type ColumnInfo struct {
	Name          string
	DatabaseType  string
	Nullable      bool
	NullableKnown bool
}

// DatabaseInfo identifies the connected server.
type DatabaseInfo struct {
	Driver  string
	Version string
}

// TableExists reports whether the catalog knows table.
func (e *Executor) TableExists(ctx context.Context, table string) (bool, error) {
	rs, err := e.query(ctx, "table exists", e.catalog.TableExistsQuery(), table)
	if err != nil {
		return false, err
	}
	return rs.Len() > 0, nil
}

// ColumnDataType returns the declared type of table.column. found is false
// when the column does not exist.
func (e *Executor) ColumnDataType(ctx context.Context, table, column string) (dataType string, found bool, err error) {
	rs, err := e.query(ctx, "column type", e.catalog.ColumnTypeQuery(), table, column)
	if err != nil {
		return "", false, err
	}
	if rs.Len() == 0 {
		return "", false, nil
	}
	return FormatCell(rs.Rows[0][0]), true, nil
}

// IsPrimaryKey reports whether column is part of table's primary key.
func (e *Executor) IsPrimaryKey(ctx context.Context, table, column string) (bool, error) {
	rs, err := e.query(ctx, "primary key", e.catalog.PrimaryKeyQuery(), table, column)
	if err != nil {
		return false, err
	}
	return rs.Len() > 0, nil
}

// UniqueConstraintColumns lists the columns covered by table's unique constraints.
func (e *Executor) UniqueConstraintColumns(ctx context.Context, table string) ([]string, error) {
	rs, err := e.query(ctx, "unique columns", e.catalog.UniqueColumnsQuery(), table)
	if err != nil {
		return nil, err
	}
	return firstColumn(rs), nil
}

// ListTables lists every user table.
func (e *Executor) ListTables(ctx context.Context) ([]string, error) {
	rs, err := e.query(ctx, "list tables", e.catalog.ListTablesQuery())
	if err != nil {
		return nil, err
	}
	return firstColumn(rs), nil
}

// TableMetadata describes table's columns without reading any of its rows.
func (e *Executor) TableMetadata(ctx context.Context, table string) ([]ColumnInfo, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, fail("table metadata", table, err)
	}
	statement := "SELECT * FROM " + table + " WHERE 1 = 0"

	rows, err := e.QueryCursor(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fail("table metadata", statement, err)
	}
	return describe(types), nil
}

func describe(types []*sql.ColumnType) []ColumnInfo {
	columns := make([]ColumnInfo, 0, len(types))
	for _, t := range types {
		nullable, ok := t.Nullable()
		columns = append(columns, ColumnInfo{
			Name:          t.Name(),
			DatabaseType:  t.DatabaseTypeName(),
			Nullable:      nullable,
			NullableKnown: ok,
		})
	}
	return columns
}

// DatabaseInfo reports the driver and server version.
func (e *Executor) DatabaseInfo(ctx context.Context) (*DatabaseInfo, error) {
	rs, err := e.query(ctx, "database info", e.catalog.VersionQuery())
	if err != nil {
		return nil, err
	}
	info := &DatabaseInfo{Driver: e.driver}
	if rs.Len() > 0 && len(rs.Rows[0]) > 0 {
		info.Version = FormatCell(rs.Rows[0][0])
	}
	return info, nil
}

func firstColumn(rs *RowSet) []string {
	out := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		if len(row) > 0 {
			out = append(out, FormatCell(row[0]))
		}
	}
	return out
}
