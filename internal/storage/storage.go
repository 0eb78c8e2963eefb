package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/pfrederiksen/uoft-courses/internal/course"
	"github.com/pfrederiksen/uoft-courses/internal/logger"
)

// ErrNotFound is returned by the single-record readers for unknown codes.
var ErrNotFound = errors.New("record not found")

// PersistenceError reports a failed statement together with its arguments.
type PersistenceError struct {
	Statement string
	Args      []any
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("executing %q with %v: %v", e.Statement, e.Args, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store writes records into one database. It is opened once per run.
type Store struct {
	db      *sql.DB
	dialect Dialect

	mu     sync.Mutex
	tables map[string]bool
}

// Open connects to the database named by dsn.
func Open(dialect Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect.Name, err)
	}
	if dialect.Name == SQLite.Name {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	return New(db, dialect), nil
}

// New wraps an already opened database.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		tables:  make(map[string]bool),
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func columnsFor(table string) ([]string, error) {
	switch table {
	case course.CoursesTable:
		return course.CourseColumns, nil
	case course.TimetableTable:
		return course.OfferingColumns, nil
	default:
		return nil, fmt.Errorf("unknown table: %s", table)
	}
}

// EnsureSchema creates the table if needed. It runs its statement at most
// once per table per Store.
func (s *Store) EnsureSchema(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tables[table] {
		return nil
	}
	columns, err := columnsFor(table)
	if err != nil {
		return err
	}
	stmt := s.dialect.createTable(table, columns)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return &PersistenceError{Statement: stmt, Err: err}
	}
	s.tables[table] = true
	return nil
}

// Write persists one record and returns the number of rows written.
// A record without a code writes nothing and returns 0 with no error.
// On failure it returns 0 and a *PersistenceError.
func (s *Store) Write(ctx context.Context, rec course.Record) (int, error) {
	code := rec.Key()
	if code == "" {
		return 0, nil
	}

	table := rec.Table()
	if err := s.EnsureSchema(ctx, table); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	insert := s.dialect.insertKey(table)
	if _, err := tx.ExecContext(ctx, insert, code); err != nil {
		return 0, &PersistenceError{Statement: insert, Args: []any{code}, Err: err}
	}

	if fields := rec.Fields(); len(fields) > 0 {
		update := s.dialect.update(table, fields)
		args := make([]any, 0, len(fields)+1)
		for _, f := range fields {
			args = append(args, f.Value)
		}
		args = append(args, code)

		if _, err := tx.ExecContext(ctx, update, args...); err != nil {
			return 0, &PersistenceError{Statement: update, Args: args, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s: %w", code, err)
	}
	return 1, nil
}

// WriteAll writes every record, logging and counting failures instead of
// stopping. It returns the number of rows written and failed.
func (s *Store) WriteAll(ctx context.Context, recs []course.Record) (written, failed int) {
	for _, rec := range recs {
		n, err := s.Write(ctx, rec)
		if err != nil {
			failed++
			logger.IncrCounter("records.failed")

			fields := logger.Fields{"code": rec.Key(), "table": rec.Table()}
			var perr *PersistenceError
			if errors.As(err, &perr) {
				fields["statement"] = perr.Statement
				fields["args"] = perr.Args
			}
			logger.Error("Failed to persist record", fields, err)
			continue
		}
		written += n
		logger.AddCounter("records.written", int64(n))
	}
	return written, failed
}
