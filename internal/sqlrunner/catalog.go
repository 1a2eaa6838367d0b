package sqlrunner

import (
	"fmt"
	"regexp"
)

// PlaceholderStyle is how a driver spells positional bind parameters.
type PlaceholderStyle int

const (
	QuestionMark PlaceholderStyle = iota // ?
	Dollar                               // $1
)

// Format returns the placeholder for the n-th parameter, counting from 1.
func (p PlaceholderStyle) Format(n int) string {
	if p == Dollar {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Catalog supplies the dialect specific introspection statements. Every
// statement takes its inputs as bind parameters in the order documented on
// each method.
type Catalog interface {
	// TableExistsQuery takes (table) and yields a row if the table exists.
	TableExistsQuery() string
	// ColumnTypeQuery takes (table, column) and yields the data type.
	ColumnTypeQuery() string
	// PrimaryKeyQuery takes (table, column) and yields a row if the column is in the primary key.
	PrimaryKeyQuery() string
	// UniqueColumnsQuery takes (table) and yields one column name per row.
	UniqueColumnsQuery() string
	// ListTablesQuery takes nothing and yields one table name per row.
	ListTablesQuery() string
	// VersionQuery yields the server version string.
	VersionQuery() string
	// Placeholder returns the n-th bind parameter, counting from 1.
	Placeholder(n int) string
}

// InformationSchema is the Catalog for databases exposing the standard
// information_schema views.
type InformationSchema struct {
	Style PlaceholderStyle
}

func (c InformationSchema) Placeholder(n int) string { return c.Style.Format(n) }

func (c InformationSchema) TableExistsQuery() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_name = " + c.Placeholder(1)
}

func (c InformationSchema) ColumnTypeQuery() string {
	return "SELECT data_type FROM information_schema.columns WHERE table_name = " + c.Placeholder(1) +
		" AND column_name = " + c.Placeholder(2)
}

func (c InformationSchema) PrimaryKeyQuery() string {
	return "SELECT kcu.column_name FROM information_schema.table_constraints tc" +
		" INNER JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name" +
		" WHERE tc.table_name = " + c.Placeholder(1) +
		" AND kcu.column_name = " + c.Placeholder(2) +
		" AND tc.constraint_type = 'PRIMARY KEY'"
}

func (c InformationSchema) UniqueColumnsQuery() string {
	return "SELECT kcu.column_name FROM information_schema.table_constraints tc" +
		" INNER JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name" +
		" WHERE tc.table_name = " + c.Placeholder(1) +
		" AND tc.constraint_type = 'UNIQUE'" +
		" ORDER BY kcu.ordinal_position"
}

func (c InformationSchema) ListTablesQuery() string {
	return "SELECT table_name FROM information_schema.tables" +
		" WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ('pg_catalog', 'information_schema')" +
		" ORDER BY table_name"
}

func (c InformationSchema) VersionQuery() string {
	return "SELECT version()"
}

// CatalogFor returns the catalog matching a database/sql driver name.
func CatalogFor(driver string) Catalog {
	switch driver {
	case "pgx", "postgres", "postgresql":
		return InformationSchema{Style: Dollar}
	default:
		return InformationSchema{Style: QuestionMark}
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// checkIdentifier guards statements that must splice a table name into SQL text.
func checkIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}
