package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/roshangit23/ReadyTestAPI/internal/sqlrunner"
)

func (sc *scenario) registerDatabaseSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^I execute the query named "([^"]*)"$`, sc.executeQuery)
	ctx.Step(`^I expect the query result to be non-empty$`, sc.expectNonEmpty)
	ctx.Step(`^I start a database transaction$`, sc.startTransaction)
	ctx.Step(`^I commit the database transaction$`, sc.commit)
	ctx.Step(`^I rollback the database transaction$`, sc.rollback)
	ctx.Step(`^I execute an update named "([^"]*)"$`, sc.executeUpdate)
	ctx.Step(`^I expect the update to be successful$`, sc.expectUpdateSuccessful)
	ctx.Step(`^I execute the query named "([^"]*)" and expect (\d+) rows$`, sc.executeQueryExpectRows)
	ctx.Step(`^I check if row exists for query named "([^"]*)"$`, sc.checkRowExists)
	ctx.Step(`^I verify table "([^"]*)" exists$`, sc.verifyTableExists)
	ctx.Step(`^I verify column "([^"]*)" in table "([^"]*)" has data type "([^"]*)"$`, sc.verifyColumnType)
	ctx.Step(`^I verify that the query named "([^"]*)" results in (\d+) rows$`, sc.verifyRowCount)
	ctx.Step(`^I verify that the query named "([^"]*)" results in column "([^"]*)" having value "([^"]*)"$`, sc.verifyColumnValue)
	ctx.Step(`^I verify column "([^"]*)" is a primary key in table "([^"]*)"$`, sc.verifyPrimaryKey)
	ctx.Step(`^I list unique constraint columns for table "([^"]*)"$`, sc.listUniqueColumns)
	ctx.Step(`^I execute a batch of updates from YAML named "([^"]*)"$`, sc.executeBatch)
	ctx.Step(`^I close the database connection$`, sc.closeConnection)
	ctx.Step(`^I verify the database metadata$`, sc.verifyDatabaseMetadata)
	ctx.Step(`^I list all tables and expect at least (\d+) tables$`, sc.listTables)
	ctx.Step(`^I execute a prepared query named "([^"]*)" with parameters "([^"]*)"$`, sc.executePrepared)
	ctx.Step(`^I expect the result to have (\d+) rows$`, sc.expectResultRows)
	ctx.Step(`^I expect row (\d+) in the result to contain "([^"]*)"$`, sc.expectRowContains)
	ctx.Step(`^I execute a callable statement "([^"]*)" with parameters "([^"]*)"$`, sc.executeCallable)
	ctx.Step(`^I retrieve table metadata for "([^"]*)"$`, sc.tableMetadata)
	ctx.Step(`^I execute a performance test for query "([^"]*)" and expect execution time less than (\d+) milliseconds$`, sc.performanceTest)
	ctx.Step(`^I run a load test with query "([^"]*)" for (\d+) executions$`, sc.loadTest)
	ctx.Step(`^I truncate table "([^"]*)"$`, sc.truncateTable)
	ctx.Step(`^I insert test data into table "([^"]*)" with values "([^"]*)"$`, sc.insertTestData)
	ctx.Step(`^I delete test data from table "([^"]*)" with condition "([^"]*)"$`, sc.deleteTestData)
	ctx.Step(`^I verify that result sets "([^"]*)" and "([^"]*)" are equal$`, sc.verifyResultSetsEqual)
	ctx.Step(`^I verify that table data between "([^"]*)" and "([^"]*)" are equal$`, sc.verifyTablesEqual)
}

func (sc *scenario) db() *sqlrunner.Executor {
	return sc.suite.db
}

func (sc *scenario) query(name string) (string, error) {
	return sc.suite.Queries.Resolve(name)
}

func (sc *scenario) executeQuery(ctx context.Context, name string) error {
	q, err := sc.query(name)
	if err != nil {
		return err
	}
	rows, err := sc.db().Query(ctx, q)
	if err != nil {
		return err
	}
	sc.rows = rows
	return nil
}

func (sc *scenario) expectNonEmpty() error {
	if sc.rows == nil {
		return fmt.Errorf("no query has been executed yet")
	}
	return expect(sc.rows.Len() > 0, "result set is empty")
}

func (sc *scenario) startTransaction(ctx context.Context) error {
	return sc.db().StartTransaction(ctx)
}

func (sc *scenario) commit() error {
	return sc.db().Commit()
}

func (sc *scenario) rollback() error {
	return sc.db().Rollback()
}

func (sc *scenario) executeUpdate(ctx context.Context, name string) error {
	q, err := sc.query(name)
	if err != nil {
		return err
	}
	ok, err := sc.db().Update(ctx, q)
	if err != nil {
		return err
	}
	sc.updateResult = ok
	return expect(ok, "expected update %s to affect rows, but it affected none", name)
}

func (sc *scenario) expectUpdateSuccessful() error {
	return expect(sc.updateResult, "update was not successful")
}

func (sc *scenario) executeQueryExpectRows(ctx context.Context, name string, want int) error {
	q, err := sc.query(name)
	if err != nil {
		return err
	}
	rows, err := sc.db().ExecuteQueryAndGetResults(ctx, q)
	if err != nil {
		return err
	}
	return expect(rows.Len() == want, "row count does not match: want %d, got %d", want, rows.Len())
}

func (sc *scenario) checkRowExists(ctx context.Context, name string) error {
	q, err := sc.query(name)
	if err != nil {
		return err
	}
	exists, err := sc.db().RowExists(ctx, q)
	if err != nil {
		return err
	}
	return expect(exists, "expected a row for query %s, but there is none", name)
}

func (sc *scenario) verifyTableExists(ctx context.Context, table string) error {
	exists, err := sc.db().TableExists(ctx, table)
	if err != nil {
		return err
	}
	return expect(exists, "table %s does not exist", table)
}

func (sc *scenario) verifyColumnType(ctx context.Context, column, table, want string) error {
	got, found, err := sc.db().ColumnDataType(ctx, table, column)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("column %s not found in table %s", column, table)
	}
	return expect(got == want, "data type of %s.%s: want %q, got %q", table, column, want, got)
}

func (sc *scenario) verifyRowCount(ctx context.Context, name string, want int) error {
	q, err := sc.query(name)
	if err != nil {
		return err
	}
	got, err := sc.db().RowCount(ctx, q)
	if err != nil {
		return err
	}
	return expect(got == want, "query %s returned %d rows, want %d", name, got, want)
}

func (sc *scenario) verifyColumnValue(ctx context.Context, name, column, want string) error {
	q, err := sc.query(name)
	if err != nil {
		return err
	}
	ok, err := sc.db().VerifyColumnValue(ctx, q, column, want)
	if err != nil {
		return err
	}
	return expect(ok, "the value of column %q does not match the expected value %q", column, want)
}

func (sc *scenario) verifyPrimaryKey(ctx context.Context, column, table string) error {
	ok, err := sc.db().IsPrimaryKey(ctx, table, column)
	if err != nil {
		return err
	}
	return expect(ok, "column %s is not a primary key of %s", column, table)
}

func (sc *scenario) listUniqueColumns(ctx context.Context, table string) error {
	_, err := sc.db().UniqueConstraintColumns(ctx, table)
	return err
}

func (sc *scenario) executeBatch(ctx context.Context, name string) error {
	statements, err := sc.suite.Queries.ResolveBatch(name)
	if err != nil {
		return err
	}
	ok, err := sc.db().BatchUpdate(ctx, statements)
	if err != nil {
		return err
	}
	return expect(ok, "batch update %s failed", name)
}

func (sc *scenario) closeConnection(ctx context.Context) error {
	if err := sc.db().Close(); err != nil {
		return err
	}
	return expect(!sc.db().IsOpen(ctx), "database connection did not close")
}

func (sc *scenario) verifyDatabaseMetadata(ctx context.Context) error {
	_, err := sc.db().DatabaseInfo(ctx)
	return err
}

func (sc *scenario) listTables(ctx context.Context, want int) error {
	tables, err := sc.db().ListTables(ctx)
	if err != nil {
		return err
	}
	return expect(len(tables) >= want, "found %d tables, want at least %d", len(tables), want)
}

func (sc *scenario) executePrepared(ctx context.Context, name, raw string) error {
	q, err := sc.query(name)
	if err != nil {
		return err
	}
	rows, err := sc.db().PreparedQuery(ctx, q, params(raw))
	if err != nil {
		return err
	}
	sc.results = rows
	return nil
}

func (sc *scenario) expectResultRows(want int) error {
	if sc.results == nil {
		return fmt.Errorf("no prepared query has been executed yet")
	}
	return expect(sc.results.Len() == want, "result has %d rows, want %d", sc.results.Len(), want)
}

// expectRowContains compares the leading cells of a zero-based row.
func (sc *scenario) expectRowContains(index int, raw string) error {
	if sc.results == nil {
		return fmt.Errorf("no prepared query has been executed yet")
	}
	if index < 0 || index >= sc.results.Len() {
		return fmt.Errorf("row index %d is out of bounds (%d rows)", index, sc.results.Len())
	}

	row := sc.results.Rows[index]
	for i, want := range splitList(raw) {
		if i >= len(row) {
			return fmt.Errorf("row %d has only %d columns", index, len(row))
		}
		if got := sqlrunner.FormatCell(row[i]); got != want {
			return fmt.Errorf("mismatch in row %d at column %d: want %q, got %q", index, i, want, got)
		}
	}
	return nil
}

func (sc *scenario) executeCallable(ctx context.Context, call, raw string) error {
	_, err := sc.db().Call(ctx, call, params(raw))
	return err
}

func (sc *scenario) tableMetadata(ctx context.Context, table string) error {
	columns, err := sc.db().TableMetadata(ctx, table)
	if err != nil {
		return err
	}
	return expect(len(columns) > 0, "table %s has no columns", table)
}

func (sc *scenario) performanceTest(ctx context.Context, name string, maxMillis int) error {
	q, err := sc.query(name)
	if err != nil {
		return err
	}
	elapsed, err := sc.db().ExecutionTime(ctx, q)
	if err != nil {
		return err
	}
	limit := time.Duration(maxMillis) * time.Millisecond
	return expect(elapsed < limit, "query execution took %s, should be less than %s", elapsed, limit)
}

func (sc *scenario) loadTest(ctx context.Context, name string, n int) error {
	q, err := sc.query(name)
	if err != nil {
		return err
	}
	_, err = sc.db().LoadTest(ctx, q, n)
	return err
}

func (sc *scenario) truncateTable(ctx context.Context, table string) error {
	return sc.db().TruncateTable(ctx, table)
}

// insertTestData takes values as "column=value" pairs separated by commas.
func (sc *scenario) insertTestData(ctx context.Context, table, raw string) error {
	var columns []sqlrunner.Column
	for _, item := range splitList(raw) {
		name, value, ok := strings.Cut(item, "=")
		if !ok {
			return fmt.Errorf("invalid value %q, expected column=value", item)
		}
		columns = append(columns, sqlrunner.Column{Name: strings.TrimSpace(name), Value: scalar(strings.TrimSpace(value))})
	}
	return sc.db().InsertRow(ctx, table, columns)
}

func (sc *scenario) deleteTestData(ctx context.Context, table, condition string) error {
	_, err := sc.db().DeleteWhere(ctx, table, condition)
	return err
}

func (sc *scenario) verifyResultSetsEqual(ctx context.Context, left, right string) error {
	q1, err := sc.query(left)
	if err != nil {
		return err
	}
	q2, err := sc.query(right)
	if err != nil {
		return err
	}
	equal, mismatch, err := sc.db().CompareQueries(ctx, q1, q2)
	if err != nil {
		return err
	}
	return expect(equal, "result sets %s and %s differ: %s", left, right, mismatch)
}

func (sc *scenario) verifyTablesEqual(ctx context.Context, left, right string) error {
	equal, err := sc.db().CompareTables(ctx, left, right)
	if err != nil {
		return err
	}
	return expect(equal, "table data of %s and %s differ", left, right)
}
