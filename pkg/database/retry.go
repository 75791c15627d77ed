package database

import (
	"context"
	"database/sql/driver"
	"math/rand"
	"strings"
	"time"
)

// backoff controls how long a statement waits between attempts when SQLite
// reports the database as busy.
type backoff struct {
	maxRetries int
	base       time.Duration
	max        time.Duration
}

func newBackoff(maxRetries int) backoff {
	return backoff{maxRetries: maxRetries, base: 50 * time.Millisecond, max: 2 * time.Second}
}

// delay doubles per attempt, adds up to 25% jitter and is capped at max.
func (b backoff) delay(attempt int) time.Duration {
	d := b.base * time.Duration(1<<attempt)
	if d <= 0 || d > b.max {
		return b.max
	}
	d += time.Duration(rand.Int63n(int64(d/4) + 1))
	if d > b.max {
		d = b.max
	}
	return d
}

// isBusyError reports whether err is SQLite's BUSY or LOCKED condition, as
// worded by either mattn/go-sqlite3 or modernc.org/sqlite.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{"database is locked", "database table is locked", "SQLITE_BUSY", "SQLITE_LOCKED", "(5)", "(6)"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// retry runs fn until it succeeds, fails with something other than a busy
// error, runs out of attempts or ctx is done.
func retry[T any](ctx context.Context, b backoff, fn func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for attempt := 0; ; attempt++ {
		result, err = fn()
		if err == nil || !isBusyError(err) || attempt >= b.maxRetries {
			return result, err
		}

		timer := time.NewTimer(b.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// driverConnector adapts a plain driver.Driver for sql.OpenDB.
type driverConnector struct {
	driver driver.Driver
	dsn    string
}

func (dc *driverConnector) Connect(_ context.Context) (driver.Conn, error) {
	return dc.driver.Open(dc.dsn)
}

func (dc *driverConnector) Driver() driver.Driver {
	return dc.driver
}

// busyConnector hands out connections whose statements are retried while
// the database is busy.
type busyConnector struct {
	driver.Connector
	backoff backoff
}

func (bc *busyConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := bc.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &busyConn{conn: conn, backoff: bc.backoff}, nil
}

type busyConn struct {
	conn    driver.Conn
	backoff backoff
}

func (c *busyConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *busyConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if p, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = p.PrepareContext(ctx, query)
	} else {
		stmt, err = c.conn.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &busyStmt{stmt: stmt, backoff: c.backoff}, nil
}

func (c *busyConn) Close() error {
	return c.conn.Close()
}

func (c *busyConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *busyConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return retry(ctx, c.backoff, func() (driver.Tx, error) {
		if b, ok := c.conn.(driver.ConnBeginTx); ok {
			return b.BeginTx(ctx, opts)
		}
		return c.conn.Begin() //nolint:staticcheck // fallback for drivers without BeginTx
	})
}

func (c *busyConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := c.conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return retry(ctx, c.backoff, func() (driver.Result, error) {
		return execer.ExecContext(ctx, query, args)
	})
}

func (c *busyConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := c.conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return retry(ctx, c.backoff, func() (driver.Rows, error) {
		return queryer.QueryContext(ctx, query, args)
	})
}

func (c *busyConn) Ping(ctx context.Context) error {
	if p, ok := c.conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *busyConn) ResetSession(ctx context.Context) error {
	if r, ok := c.conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}

func (c *busyConn) IsValid() bool {
	if v, ok := c.conn.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}

type busyStmt struct {
	stmt    driver.Stmt
	backoff backoff
}

func (s *busyStmt) Close() error  { return s.stmt.Close() }
func (s *busyStmt) NumInput() int { return s.stmt.NumInput() }

func (s *busyStmt) Exec(args []driver.Value) (driver.Result, error) {
	return retry(context.Background(), s.backoff, func() (driver.Result, error) {
		return s.stmt.Exec(args) //nolint:staticcheck // required by driver.Stmt
	})
}

func (s *busyStmt) Query(args []driver.Value) (driver.Rows, error) {
	return retry(context.Background(), s.backoff, func() (driver.Rows, error) {
		return s.stmt.Query(args) //nolint:staticcheck // required by driver.Stmt
	})
}

func (s *busyStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	e, ok := s.stmt.(driver.StmtExecContext)
	if !ok {
		return s.Exec(namedToValues(args))
	}
	return retry(ctx, s.backoff, func() (driver.Result, error) {
		return e.ExecContext(ctx, args)
	})
}

func (s *busyStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	q, ok := s.stmt.(driver.StmtQueryContext)
	if !ok {
		return s.Query(namedToValues(args))
	}
	return retry(ctx, s.backoff, func() (driver.Rows, error) {
		return q.QueryContext(ctx, args)
	})
}

func namedToValues(args []driver.NamedValue) []driver.Value {
	values := make([]driver.Value, len(args))
	for i, arg := range args {
		values[i] = arg.Value
	}
	return values
}
