package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/uoft-courses/internal/course"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByCode SortOrder = "code"
	SortByName SortOrder = "name"
	SortByTerm SortOrder = "term"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(s)); o {
	case SortByCode, SortByName, SortByTerm:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'code', 'name' or 'term')", s)
	}
}

// sortCourses sorts courses based on the specified sort order. Courses have
// no term, so SortByTerm falls back to code order.
func sortCourses(courses []*course.Course, sortOrder SortOrder) {
	switch sortOrder {
	case SortByName:
		sort.SliceStable(courses, func(i, j int) bool {
			if !strings.EqualFold(courses[i].Name, courses[j].Name) {
				return strings.ToLower(courses[i].Name) < strings.ToLower(courses[j].Name)
			}
			return courses[i].Code < courses[j].Code
		})
	default:
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].Code < courses[j].Code
		})
	}
}

// sortOfferings sorts offerings based on the specified sort order
func sortOfferings(offerings []*course.Offering, sortOrder SortOrder) {
	switch sortOrder {
	case SortByName:
		sort.SliceStable(offerings, func(i, j int) bool {
			if !strings.EqualFold(offerings[i].Name, offerings[j].Name) {
				return strings.ToLower(offerings[i].Name) < strings.ToLower(offerings[j].Name)
			}
			return offerings[i].Code < offerings[j].Code
		})
	case SortByTerm:
		sort.SliceStable(offerings, func(i, j int) bool {
			if offerings[i].Term != offerings[j].Term {
				return termRank(offerings[i].Term) < termRank(offerings[j].Term)
			}
			return offerings[i].Code < offerings[j].Code
		})
	default:
		sort.SliceStable(offerings, func(i, j int) bool {
			return offerings[i].Code < offerings[j].Code
		})
	}
}

// termRank orders the session codes F (fall), S (winter), Y (full year);
// anything else sorts last.
func termRank(term string) int {
	switch term {
	case "F":
		return 0
	case "S":
		return 1
	case "Y":
		return 2
	default:
		return 3
	}
}
