package course

import (
	"errors"
	"fmt"
	"regexp"
)

// CodePattern matches a course code such as ABC123H1: three word characters,
// three digits, one word character, one digit.
const CodePattern = `\w\w\w\d\d\d\w\d`

var codeRe = regexp.MustCompile(CodePattern)

// ErrIncompleteRecord is returned by Validate when a record lacks its key fields.
var ErrIncompleteRecord = errors.New("incomplete record")

// Field is one named value of a record, using the persisted column name.
type Field struct {
	Name  string
	Value string
}

// Record is a keyed field mapping for one course or offering.
type Record interface {
	// Table names the table the record is stored in.
	Table() string
	// Key returns the course code, or "" when none was extracted.
	Key() string
	// Fields returns the non-empty fields other than the code, in column order.
	Fields() []Field
	// Validate reports ErrIncompleteRecord if the record must not be persisted.
	Validate() error
}

// ContainsCode reports whether s contains a course-code shaped token.
func ContainsCode(s string) bool {
	return codeRe.MatchString(s)
}

// FindCode returns the first course-code shaped token in s, or "".
func FindCode(s string) string {
	return codeRe.FindString(s)
}

func incomplete(missing string) error {
	return fmt.Errorf("%w: missing %s", ErrIncompleteRecord, missing)
}

func appendPresent(fields []Field, name, value string) []Field {
	if value == "" {
		return fields
	}
	return append(fields, Field{Name: name, Value: value})
}
