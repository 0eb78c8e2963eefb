package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	departmentRe = regexp.MustCompile(`^[A-Za-z]{3}$`)
	termRe       = regexp.MustCompile(`^[FSYfsy]$`)
)

// Parse builds a filter from space-separated key:value terms. Values of one
// key are comma-separated.
//
// Supported keys:
//   - dept:CSC,MAT
//   - level:100,200 (or 1,2)
//   - term:F,S
//   - name:organic (use quotes or repeat the key for phrases with spaces)
//
// Bare words are treated as name terms.
func Parse(input string) (*Filter, error) {
	f := NewFilter()

	for _, token := range tokenize(input) {
		key, value, ok := strings.Cut(token, ":")
		if !ok {
			key, value = "name", token
		}
		if err := f.Add(key, value); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Add appends the comma-separated values of one criterion.
func (f *Filter) Add(key, value string) error {
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		switch strings.ToLower(key) {
		case "dept", "department":
			if !departmentRe.MatchString(v) {
				return fmt.Errorf("invalid department: %q (want three letters, e.g. CSC)", v)
			}
			f.Departments = append(f.Departments, strings.ToUpper(v))
		case "level":
			level, err := parseLevel(v)
			if err != nil {
				return err
			}
			f.Levels = append(f.Levels, level)
		case "term":
			if !termRe.MatchString(v) {
				return fmt.Errorf("invalid term: %q (want F, S or Y)", v)
			}
			f.Terms = append(f.Terms, strings.ToUpper(v))
		case "name", "q":
			f.Names = append(f.Names, v)
		default:
			return fmt.Errorf("unknown filter key: %q", key)
		}
	}
	return nil
}

func parseLevel(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid level: %q", s)
	}
	if n >= 0 && n <= 9 {
		n *= 100
	}
	if n < 0 || n > 900 || n%100 != 0 {
		return 0, fmt.Errorf("invalid level: %q (want 100, 200, ...)", s)
	}
	return n, nil
}

// tokenize splits on spaces, keeping double-quoted runs together.
func tokenize(input string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range input {
		switch {
		case r == '"':
			quoted = !quoted
		case (r == ' ' || r == '\t') && !quoted:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}
