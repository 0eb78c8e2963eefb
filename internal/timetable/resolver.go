package timetable

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/uoft-courses/internal/course"
	"github.com/pfrederiksen/uoft-courses/internal/page"
)

// Row is the trimmed cell text of one table row, left to right.
type Row struct {
	Cells []string
}

// Outcome describes what the resolver did with a row.
type Outcome int

const (
	// Skipped rows are structural noise such as header rows.
	Skipped Outcome = iota
	// Emitted rows produced a new offering.
	Emitted
	// Merged rows were folded into the previous offering.
	Merged
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Emitted:
		return "emitted"
	case Merged:
		return "merged"
	}
	return "unknown"
}

var (
	// fields copied from the previous offering onto a new section
	repeatingFields = []string{course.FieldCode, course.FieldTerm, course.FieldName}
	// fields a sub-row adds to the previous offering
	accumulatingFields = []string{course.FieldTime, course.FieldLocation, course.FieldInstructor}
)

// SplitRows returns every row of table in document order.
func SplitRows(table *goquery.Selection) []Row {
	var rows []Row
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(page.Text(td)))
		})
		rows = append(rows, Row{Cells: cells})
	})
	return rows
}

// Extract maps a row's cells onto the offering columns by position. Empty cells
// and cells past the last column are ignored.
func Extract(row Row) *course.Offering {
	o := &course.Offering{}
	for i, text := range row.Cells {
		if i >= len(course.OfferingColumns) || text == "" {
			continue
		}
		_ = o.Set(course.OfferingColumns[i], text)
	}
	return o
}

// Resolver folds rows into offerings. The zero value is ready to use; use a new
// Resolver for every page.
type Resolver struct {
	last *course.Offering
}

// Next consumes one row. It returns the new offering when the outcome is
// Emitted, and nil otherwise. A Merged outcome mutates the offering returned by
// the previous Emitted call.
func (r *Resolver) Next(row Row) (*course.Offering, Outcome) {
	if len(row.Cells) == 0 {
		return nil, Skipped
	}
	if r.last == nil && !course.ContainsCode(row.Cells[0]) {
		return nil, Skipped
	}

	o := Extract(row)

	if r.last != nil && o.Code == "" {
		if o.Section == "" {
			merge(r.last, o)
			return nil, Merged
		}
		for _, field := range repeatingFields {
			if v := r.last.Get(field); v != "" {
				_ = o.Set(field, v)
			}
		}
	}

	r.last = o
	return o, Emitted
}

// merge adds the schedule fields of a sub-row to prev, joining distinct values
// with ", ".
func merge(prev, sub *course.Offering) {
	for _, field := range accumulatingFields {
		v := sub.Get(field)
		if v == "" {
			continue
		}
		switch existing := prev.Get(field); {
		case existing == "":
			_ = prev.Set(field, v)
		case existing != v:
			_ = prev.Set(field, existing+", "+v)
		}
	}
}
