package driver

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"entiq/internal/assemble"
	"entiq/internal/sqltime"
)

// DB wraps a *sql.DB opened against a MySQL DSN. It is the concrete
// Backend the facade passes through to internal/driver's own operations;
// nothing outside this package touches *sql.DB directly.
type DB struct {
	sql       *sql.DB
	batchSize int
}

// Open opens a connection pool against dsn and pings it, mirroring the
// teacher's Applier.Connect: open, ping, close-on-failure. The batch
// size for Entities calls that don't override it defaults to
// defaultBatchSize; use OpenWithConfig to pick it up from a config file.
func Open(ctx context.Context, dsn string) (*DB, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, dbErrorf("open", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, dbErrorf("ping", err)
	}
	return &DB{sql: sqlDB, batchSize: defaultBatchSize}, nil
}

// OpenWithConfig opens a connection against cfg.DSN and carries
// cfg.BatchSize as the default for Entities calls that don't override it.
func OpenWithConfig(ctx context.Context, cfg *Config) (*DB, error) {
	db, err := Open(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.batchSize = cfg.BatchSize
	return db, nil
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

func (d *DB) queryRows(ctx context.Context, query string, args []any) (*sql.Rows, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbErrorf("query", err)
	}
	return rows, nil
}

// queryAll runs query and materializes every row into an assemble.Row
// keyed by its SELECT alias, closing the cursor before returning.
func (d *DB) queryAll(ctx context.Context, query string, args []any) ([]assemble.Row, error) {
	rows, err := d.queryRows(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, dbErrorf("columns", err)
	}

	var out []assemble.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, dbErrorf("scan", err)
		}
		row := make(assemble.Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErrorf("rows", err)
	}
	return out, nil
}

// tracer sends one line per batch/many-relationship query to an
// io.Writer, matching internal/apply's Applier.printf shape.
type tracer struct{ w io.Writer }

func newTracer(w io.Writer) tracer {
	if w == nil {
		w = io.Discard
	}
	return tracer{w: w}
}

func (t tracer) tracef(format string, args ...any) {
	fmt.Fprintf(t.w, format+"\n", args...)
}

// FormatDateTime renders t for the MySQL dialect entiq targets:
// yyyy-MM-dd HH:mm:ss.
func FormatDateTime(t time.Time) string {
	return sqltime.Format(t)
}
