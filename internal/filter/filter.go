// Package filter narrows stored course and offering records for export and
// the read API.
//
// Records can be filtered by:
//   - Departments (course code prefix, e.g. CSC)
//   - Levels (hundreds digit of the code, e.g. 100 or 300)
//   - Terms (F, S or Y; offerings only)
//   - Names (case-insensitive substring of the course name)
//
// Criteria of different kinds are ANDed; values within one kind are ORed.
//
// Example usage:
//
//	f, err := filter.Parse("dept:CSC,MAT level:100 term:F")
//	if err != nil {
//		return err
//	}
//	offerings = filter.Apply(f, offerings)
package filter

import (
	"strings"

	"github.com/pfrederiksen/uoft-courses/internal/course"
)

// Filter represents record filtering criteria
type Filter struct {
	Departments []string `json:"departments,omitempty"`
	Levels      []int    `json:"levels,omitempty"`
	Terms       []string `json:"terms,omitempty"`
	Names       []string `json:"names,omitempty"`
}

// Record is what a filter inspects.
type Record interface {
	Get(name string) string
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all records until criteria are added.
func NewFilter() *Filter {
	return &Filter{}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f == nil ||
		len(f.Departments) == 0 &&
			len(f.Levels) == 0 &&
			len(f.Terms) == 0 &&
			len(f.Names) == 0
}

// Matches checks if a record matches all active criteria.
// An empty filter matches every record. Courses have no term, so a term
// criterion never matches a course.
func (f *Filter) Matches(rec Record) bool {
	if f.IsEmpty() {
		return true
	}

	code := rec.Get(course.FieldCode)

	if len(f.Departments) > 0 && !anyOf(f.Departments, func(d string) bool {
		return len(code) >= 3 && strings.EqualFold(code[:3], d)
	}) {
		return false
	}

	if len(f.Levels) > 0 {
		level := Level(code)
		matched := false
		for _, l := range f.Levels {
			if level == l {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Terms) > 0 {
		term := rec.Get(course.FieldTerm)
		if !anyOf(f.Terms, func(t string) bool { return strings.EqualFold(term, t) }) {
			return false
		}
	}

	if len(f.Names) > 0 {
		nameLower := strings.ToLower(rec.Get(course.FieldName))
		if !anyOf(f.Names, func(n string) bool { return strings.Contains(nameLower, strings.ToLower(n)) }) {
			return false
		}
	}

	return true
}

// Level returns the hundreds level of a course code ("CSC148H1" is 100),
// or -1 when the code has no digit in the level position.
func Level(code string) int {
	if len(code) < 4 || code[3] < '0' || code[3] > '9' {
		return -1
	}
	return int(code[3]-'0') * 100
}

func anyOf(values []string, match func(string) bool) bool {
	for _, v := range values {
		if match(v) {
			return true
		}
	}
	return false
}

// Apply returns the records matching f. If the filter is empty the input
// slice is returned unchanged.
func Apply[T Record](f *Filter, records []T) []T {
	if f.IsEmpty() {
		return records
	}

	filtered := make([]T, 0, len(records))
	for _, rec := range records {
		if f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
