// Package sqlrunner runs SQL statements against a single database session
// and materializes their results for verification.
//
// An Executor is Disconnected until Open, Idle in autocommit mode after it,
// switches to manual commit on StartTransaction and is terminally Closed by
// Close. It is not safe for concurrent use: scenarios sharing one Executor
// must run sequentially.
package sqlrunner

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/lib/pq"              // registers "postgres"

	"github.com/roshangit23/ReadyTestAPI/internal/compare"
	"github.com/roshangit23/ReadyTestAPI/internal/logging"
)

// DefaultDriver is used when Options.Driver is empty.
const DefaultDriver = "pgx"

type (
	Row    = compare.Row
	RowSet = compare.RowSet
)

// Options describe how to reach the database.
type Options struct {
	Driver   string
	URL      string
	User     string
	Password string
}

// DSN merges the credentials into URL. A "jdbc:" prefix is dropped, URL
// style DSNs get the credentials as userinfo unless they carry their own,
// and keyword/value DSNs get user= and password= appended.
func (o Options) DSN() string {
	dsn := strings.TrimPrefix(strings.TrimSpace(o.URL), "jdbc:")
	if o.User == "" && o.Password == "" {
		return dsn
	}

	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		if u.User == nil {
			u.User = url.UserPassword(o.User, o.Password)
		}
		return u.String()
	}

	if o.User != "" {
		dsn += " user=" + quoteValue(o.User)
	}
	if o.Password != "" {
		dsn += " password=" + quoteValue(o.Password)
	}
	return strings.TrimSpace(dsn)
}

func quoteValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// sessionCheckQuery is run by IsOpen while a transaction holds the connection.
const sessionCheckQuery = "SELECT 1"

// queryer is the part of *sql.DB and *sql.Tx statements run through.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Executor owns one database session.
type Executor struct {
	db      *sql.DB
	driver  string
	catalog Catalog

	manual bool
	tx     *sql.Tx
	closed bool
}

// Open connects and verifies the connection with a ping.
func Open(ctx context.Context, opts Options) (*Executor, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DefaultDriver
	}
	dsn := opts.DSN()

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fail("open", logging.Mask(dsn), err)
	}
	// One session: transactions and statements must see each other.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fail("open", logging.Mask(dsn), err)
	}

	logging.Info("sql", "connected using driver %s to %s", driver, dsn)

	e := New(db, CatalogFor(driver))
	e.driver = driver
	return e, nil
}

// New wraps an already opened handle. A nil catalog selects InformationSchema
// with "?" placeholders.
func New(db *sql.DB, catalog Catalog) *Executor {
	if catalog == nil {
		catalog = InformationSchema{}
	}
	return &Executor{db: db, catalog: catalog}
}

func (e *Executor) check() error {
	if e == nil || e.db == nil {
		return ErrNotOpen
	}
	if e.closed {
		return ErrClosed
	}
	return nil
}

// target returns where the next statement runs: the pool in autocommit mode,
// otherwise the current transaction, begun on demand after a commit or rollback.
func (e *Executor) target(ctx context.Context) (queryer, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	if !e.manual {
		return e.db, nil
	}
	if e.tx == nil {
		tx, err := e.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		e.tx = tx
	}
	return e.tx, nil
}

// StartTransaction turns autocommit off. Calling it again is a no-op.
func (e *Executor) StartTransaction(ctx context.Context) error {
	if err := e.check(); err != nil {
		return fail("start transaction", "", err)
	}
	if e.manual {
		return nil
	}
	e.manual = true
	if _, err := e.target(ctx); err != nil {
		e.manual = false
		return fail("start transaction", "", err)
	}
	logging.Debug("sql", "transaction started")
	return nil
}

// Commit commits the open transaction. Autocommit stays off; the next
// statement starts a new transaction. Without a transaction it does nothing.
func (e *Executor) Commit() error {
	if err := e.check(); err != nil {
		return fail("commit", "", err)
	}
	if e.tx == nil {
		return nil
	}
	tx := e.tx
	e.tx = nil
	if err := tx.Commit(); err != nil {
		return fail("commit", "", err)
	}
	logging.Debug("sql", "transaction committed")
	return nil
}

// Rollback discards the open transaction, with the same mode rules as Commit.
func (e *Executor) Rollback() error {
	if err := e.check(); err != nil {
		return fail("rollback", "", err)
	}
	if e.tx == nil {
		return nil
	}
	tx := e.tx
	e.tx = nil
	if err := tx.Rollback(); err != nil {
		return fail("rollback", "", err)
	}
	logging.Debug("sql", "transaction rolled back")
	return nil
}

// InTransaction reports whether autocommit is off.
func (e *Executor) InTransaction() bool {
	return e != nil && e.manual && !e.closed
}

// Close rolls back any open transaction and releases the connection.
// Closing is terminal and closing twice is harmless.
func (e *Executor) Close() error {
	if e == nil || e.db == nil || e.closed {
		return nil
	}
	e.closed = true

	if e.tx != nil {
		if err := e.tx.Rollback(); err != nil {
			logging.Warn("sql", "rollback on close failed: %v", err)
		}
		e.tx = nil
	}

	if err := e.db.Close(); err != nil {
		return fail("close", "", err)
	}
	logging.Debug("sql", "connection closed")
	return nil
}

// IsOpen reports whether the connection is usable right now. Inside a
// transaction the check runs on the transaction, which holds the session.
func (e *Executor) IsOpen(ctx context.Context) bool {
	if e.check() != nil {
		return false
	}
	if e.tx != nil {
		_, err := e.tx.ExecContext(ctx, sessionCheckQuery)
		return err == nil
	}
	return e.db.PingContext(ctx) == nil
}

// QueryCursor runs query and hands back the live cursor. The caller closes it.
func (e *Executor) QueryCursor(ctx context.Context, query string) (*sql.Rows, error) {
	q, err := e.target(ctx)
	if err != nil {
		return nil, fail("query", query, err)
	}
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fail("query", query, err)
	}
	return rows, nil
}

// Query runs query and materializes every row.
func (e *Executor) Query(ctx context.Context, query string) (*RowSet, error) {
	return e.query(ctx, "query", query)
}

// ExecuteQueryAndGetResults is Query.
func (e *Executor) ExecuteQueryAndGetResults(ctx context.Context, query string) (*RowSet, error) {
	return e.Query(ctx, query)
}

func (e *Executor) query(ctx context.Context, op, query string, args ...any) (*RowSet, error) {
	q, err := e.target(ctx)
	if err != nil {
		return nil, fail(op, query, err)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fail(op, query, err)
	}
	rs, err := materialize(rows)
	if err != nil {
		return nil, fail(op, query, err)
	}
	return rs, nil
}

// Update runs a data-changing statement. It reports false, not an error,
// when the statement matched no rows.
func (e *Executor) Update(ctx context.Context, statement string) (bool, error) {
	n, err := e.exec(ctx, "update", statement)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (e *Executor) exec(ctx context.Context, op, statement string, args ...any) (int64, error) {
	q, err := e.target(ctx)
	if err != nil {
		return 0, fail(op, statement, err)
	}
	res, err := q.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, fail(op, statement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fail(op, statement, err)
	}
	logging.Debug("sql", "%s affected %d rows: %s", op, n, statement)
	return n, nil
}

// BatchUpdate runs statements in order and stops at the first failure.
// In autocommit mode the batch runs in its own transaction, so a failure
// leaves nothing applied; inside a caller's transaction the caller decides.
func (e *Executor) BatchUpdate(ctx context.Context, statements []string) (bool, error) {
	if err := e.check(); err != nil {
		return false, fail("batch", "", err)
	}

	if e.manual {
		for _, statement := range statements {
			if _, err := e.exec(ctx, "batch", statement); err != nil {
				return false, err
			}
		}
		return true, nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fail("batch", "", err)
	}
	for _, statement := range statements {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			tx.Rollback()
			return false, fail("batch", statement, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fail("batch", "", err)
	}

	logging.Debug("sql", "batch of %d statements executed", len(statements))
	return true, nil
}

// PreparedQuery prepares query and runs it with params bound positionally.
func (e *Executor) PreparedQuery(ctx context.Context, query string, params []any) (*RowSet, error) {
	q, err := e.target(ctx)
	if err != nil {
		return nil, fail("prepared query", query, err)
	}
	stmt, err := q.PrepareContext(ctx, query)
	if err != nil {
		return nil, fail("prepared query", query, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, params...)
	if err != nil {
		return nil, fail("prepared query", query, err)
	}
	rs, err := materialize(rows)
	if err != nil {
		return nil, fail("prepared query", query, err)
	}
	return rs, nil
}

// Call runs a stored procedure call with params bound positionally. It
// reports whether the call produced a result set. Escape syntax such as
// "{call proc(?)}" is unwrapped to "CALL proc(?)".
func (e *Executor) Call(ctx context.Context, call string, params []any) (bool, error) {
	statement := unwrapCall(call)

	q, err := e.target(ctx)
	if err != nil {
		return false, fail("call", statement, err)
	}
	rows, err := q.QueryContext(ctx, statement, params...)
	if err != nil {
		return false, fail("call", statement, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return false, fail("call", statement, err)
	}
	for rows.Next() {
		// drain so errors raised mid-stream surface below
	}
	if err := rows.Err(); err != nil {
		return false, fail("call", statement, err)
	}
	return len(columns) > 0, nil
}

func unwrapCall(call string) string {
	s := strings.TrimSpace(call)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return s
	}
	s = strings.TrimSpace(s[1 : len(s)-1])
	if len(s) >= 4 && strings.EqualFold(s[:4], "call") {
		return "CALL" + s[4:]
	}
	return s
}

// materialize reads every row and closes rows.
func materialize(rows *sql.Rows) (*RowSet, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &RowSet{Columns: columns, Rows: []Row{}}
	for rows.Next() {
		row := make(Row, len(columns))
		dest := make([]any, len(columns))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", len(rs.Rows), err)
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, rows.Err()
}
