package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pfrederiksen/uoft-courses/internal/course"
)

type setter interface {
	Set(name, value string) error
}

// Courses returns every stored course ordered by code.
func (s *Store) Courses(ctx context.Context) ([]*course.Course, error) {
	var out []*course.Course
	err := s.scan(ctx, course.CoursesTable, course.CourseColumns, "", func() setter {
		c := &course.Course{}
		out = append(out, c)
		return c
	})
	return out, err
}

// Course returns the stored course with the given code, or ErrNotFound.
func (s *Store) Course(ctx context.Context, code string) (*course.Course, error) {
	var found *course.Course
	err := s.scan(ctx, course.CoursesTable, course.CourseColumns, code, func() setter {
		found = &course.Course{}
		return found
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("course %s: %w", code, ErrNotFound)
	}
	return found, nil
}

// Offerings returns every stored timetable offering ordered by code.
func (s *Store) Offerings(ctx context.Context) ([]*course.Offering, error) {
	var out []*course.Offering
	err := s.scan(ctx, course.TimetableTable, course.OfferingColumns, "", func() setter {
		o := &course.Offering{}
		out = append(out, o)
		return o
	})
	return out, err
}

// Offering returns the stored offering with the given code, or ErrNotFound.
func (s *Store) Offering(ctx context.Context, code string) (*course.Offering, error) {
	var found *course.Offering
	err := s.scan(ctx, course.TimetableTable, course.OfferingColumns, code, func() setter {
		found = &course.Offering{}
		return found
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("offering %s: %w", code, ErrNotFound)
	}
	return found, nil
}

// scan runs a select over table, calling next for each row. An empty code
// selects every row.
func (s *Store) scan(ctx context.Context, table string, columns []string, code string, next func() setter) error {
	if err := s.EnsureSchema(ctx, table); err != nil {
		return err
	}

	query := s.dialect.selectAll(table, columns)
	var args []any
	if code != "" {
		query += " WHERE " + s.dialect.quote(course.FieldCode) + " = ?"
		args = append(args, code)
	}
	query += " ORDER BY " + s.dialect.quote(course.FieldCode)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return &PersistenceError{Statement: query, Args: args, Err: err}
	}
	defer rows.Close()

	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scanning %s row: %w", table, err)
		}
		rec := next()
		for i, col := range columns {
			if values[i].Valid {
				if err := rec.Set(col, values[i].String); err != nil {
					return err
				}
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading %s rows: %w", table, err)
	}
	return nil
}
