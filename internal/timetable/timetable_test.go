package timetable

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/pfrederiksen/uoft-courses/internal/course"
	"github.com/pfrederiksen/uoft-courses/internal/page"
)

func newParser(t *testing.T, tmpl Template) *Parser {
	t.Helper()
	p, err := New(tmpl)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return p
}

func TestParse(t *testing.T) {
	f, err := os.Open("testdata/computer_science.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	defer f.Close()

	result, err := newParser(t, DefaultTemplate).Parse(f)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if result.Department != "Computer Science" {
		t.Errorf("Department = %q, want Computer Science", result.Department)
	}

	want := []*course.Offering{
		{
			Code: "CSC108H1", Term: "F", Name: "Introduction to Computer Programming",
			Section: "L0101", Waitlist: "Y", Time: "MWF10", Location: "SS 2102",
			Instructor: "Gries", EnrollmentCode: "P",
		},
		{
			Code: "CSC108H1", Term: "F", Name: "Introduction to Computer Programming",
			Section: "L0102", Waitlist: "Y", Time: "MWF11, R4", Location: "SS 2102, BA 1130",
			Instructor: "Campbell",
		},
		{
			Code: "CSC148H1", Term: "S", Name: "Introduction to Computer Science",
			Section: "L0101", Waitlist: "Y", Time: "MWF10, T2, R2", Location: "MP 203, BA 1160",
			Instructor: "Heap, Horton",
		},
	}

	if len(result.Offerings) != len(want) {
		t.Fatalf("Parse() returned %d offerings, want %d: %+v", len(result.Offerings), len(want), result.Offerings)
	}
	for i := range want {
		if !reflect.DeepEqual(result.Offerings[i], want[i]) {
			t.Errorf("offering %d = %+v\nwant %+v", i, result.Offerings[i], want[i])
		}
	}

	if result.Merged != 3 {
		t.Errorf("Merged = %d, want 3", result.Merged)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2 (header and notes rows)", result.Skipped)
	}
}

func TestResolver_MergesSubRow(t *testing.T) {
	rows := []Row{
		{Cells: []string{"ABC123H1", "F", "Thing 101", "L0101", "", "MWF 10-11", "RM 100", "Dr. X"}},
		{Cells: []string{"", "", "", "", "", "MWF 3-4", "RM 200", "Dr. Y"}},
	}

	var r Resolver
	first, outcome := r.Next(rows[0])
	if outcome != Emitted || first == nil {
		t.Fatalf("first row outcome = %v, want emitted", outcome)
	}

	second, outcome := r.Next(rows[1])
	if outcome != Merged || second != nil {
		t.Fatalf("second row = (%v, %v), want (nil, merged)", second, outcome)
	}

	if first.Time != "MWF 10-11, MWF 3-4" {
		t.Errorf("Time = %q", first.Time)
	}
	if first.Location != "RM 100, RM 200" {
		t.Errorf("Location = %q", first.Location)
	}
	if first.Instructor != "Dr. X, Dr. Y" {
		t.Errorf("Instructor = %q", first.Instructor)
	}
	if first.Waitlist != "" {
		t.Errorf("Waitlist = %q, want empty", first.Waitlist)
	}
}

func TestResolver_SameValueNotRepeated(t *testing.T) {
	var r Resolver
	first, _ := r.Next(Row{Cells: []string{"ABC123H1", "F", "Thing", "L0101", "", "M1", "RM 100", "Dr. X"}})
	r.Next(Row{Cells: []string{"", "", "", "", "", "W1", "RM 100", "Dr. X"}})

	if first.Location != "RM 100" || first.Instructor != "Dr. X" {
		t.Errorf("identical values were joined: %+v", first)
	}
	if first.Time != "M1, W1" {
		t.Errorf("Time = %q, want 'M1, W1'", first.Time)
	}
}

func TestResolver_MergeFillsMissingField(t *testing.T) {
	var r Resolver
	first, _ := r.Next(Row{Cells: []string{"ABC123H1", "Y", "Thing", "L0101", "", "M1", "", ""}})
	r.Next(Row{Cells: []string{"", "", "", "", "", "", "RM 300", "Dr. Z"}})

	if first.Location != "RM 300" || first.Instructor != "Dr. Z" {
		t.Errorf("sub-row did not fill empty fields: %+v", first)
	}
}

func TestResolver_NewSectionCarriesCourse(t *testing.T) {
	var r Resolver
	first, _ := r.Next(Row{Cells: []string{"ABC123H1", "F", "Thing 101", "L0101", "", "MWF 10-11"}})

	o, outcome := r.Next(Row{Cells: []string{"", "", "", "L0201", "", "TR 1-3", "RM 5"}})
	if outcome != Emitted || o == nil {
		t.Fatalf("outcome = %v, want emitted", outcome)
	}

	if o.Code != "ABC123H1" || o.Term != "F" || o.Name != "Thing 101" {
		t.Errorf("new section = %+v, want code/term/name carried forward", o)
	}
	if o.Section != "L0201" || o.Time != "TR 1-3" {
		t.Errorf("new section lost its own fields: %+v", o)
	}
	if first.Time != "MWF 10-11" {
		t.Errorf("previous offering was mutated: %+v", first)
	}
	if r.last != o {
		t.Error("the new section should become the last offering")
	}
}

func TestResolver_NoiseBeforeFirstCourse(t *testing.T) {
	tests := []struct {
		name string
		row  Row
	}{
		{"header cells", Row{Cells: []string{"Course", "Sem", "Title"}}},
		{"no cells", Row{}},
		{"blank first cell", Row{Cells: []string{"", "", "", "L0101"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Resolver
			o, outcome := r.Next(tt.row)
			if o != nil || outcome != Skipped {
				t.Errorf("Next() = (%v, %v), want (nil, skipped)", o, outcome)
			}
			if r.last != nil {
				t.Error("noise row should not become the last offering")
			}
		})
	}
}

func TestResolver_IgnoresCellsPastSchema(t *testing.T) {
	cells := []string{"ABC123H1", "F", "Thing", "L0101", "Y", "M1", "RM", "X", "P", "link", "overflow"}

	var r Resolver
	o, _ := r.Next(Row{Cells: cells})
	if o.EnrollmentControlLink != "link" {
		t.Errorf("EnrollmentControlLink = %q, want link", o.EnrollmentControlLink)
	}
	if len(o.Fields()) != len(course.OfferingColumns)-1 {
		t.Errorf("Fields() = %v", o.Fields())
	}
}

func TestParse_StructuralFailures(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		boundary page.Boundary
	}{
		{
			name:     "no title",
			html:     `<html><body><table><tr><td>ABC123H1</td></tr></table></body></html>`,
			boundary: page.BoundaryTitle,
		},
		{
			name:     "title without bracket",
			html:     `<html><body><h2>Timetable</h2><table><tr><td>ABC123H1</td></tr></table></body></html>`,
			boundary: page.BoundaryTitle,
		},
		{
			name:     "no table",
			html:     `<html><body><h2>Anatomy [ANA courses]</h2><p>No courses offered.</p></body></html>`,
			boundary: page.BoundaryTable,
		},
	}

	p := newParser(t, DefaultTemplate)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(strings.NewReader(tt.html))

			var rnf *page.RegionNotFoundError
			if !errors.As(err, &rnf) {
				t.Fatalf("Parse() error = %v, want *RegionNotFoundError", err)
			}
			if rnf.Boundary != tt.boundary {
				t.Errorf("Boundary = %q, want %q", rnf.Boundary, tt.boundary)
			}
		})
	}
}

func TestDepartment_FirstHeadingOnly(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "font in first heading",
			body: `<h2><font size="+1">Anatomy [ANA courses]</font></h2><h2><font>Biology [BIO courses]</font></h2>`,
			want: "Anatomy",
		},
		{
			name: "font only in a later heading",
			body: `<h2>Computer Science [CSC courses]</h2><h2><font>Biology [BIO courses]</font></h2>`,
			want: "Computer Science",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, DefaultTemplate)

			doc, err := page.Read(strings.NewReader("<html><body>"+tt.body+"</body></html>"), "")
			if err != nil {
				t.Fatalf("Read() error: %v", err)
			}

			got, err := p.Department(doc)
			if err != nil {
				t.Fatalf("Department() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Department() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDepartment_TitlePatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		title   string
		want    string
		wantErr bool
	}{
		{"default with courses", DefaultTitlePattern, "Anatomy [ANA courses]", "Anatomy", false},
		{"default without courses", DefaultTitlePattern, "Economics [ECO]", "Economics", false},
		{"strict with courses", StrictTitlePattern, "Anatomy [ANA courses]", "Anatomy", false},
		{"strict singular", StrictTitlePattern, "Astronomy [AST course]", "Astronomy", false},
		{"strict without courses", StrictTitlePattern, "Economics [ECO]", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := DefaultTemplate
			tmpl.TitlePattern = tt.pattern
			p := newParser(t, tmpl)

			doc, err := page.Read(strings.NewReader("<html><body><h2>"+tt.title+"</h2></body></html>"), "")
			if err != nil {
				t.Fatalf("Read() error: %v", err)
			}

			got, err := p.Department(doc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Department() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Department() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_InvalidTemplate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Template)
	}{
		{"bad regexp", func(tm *Template) { tm.TitlePattern = `(` }},
		{"no group", func(tm *Template) { tm.TitlePattern = `\[\w+\]` }},
		{"no selectors", func(tm *Template) { tm.TitleSelectors = nil }},
		{"no table", func(tm *Template) { tm.TableSelector = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := DefaultTemplate
			tmpl.TitleSelectors = append([]string(nil), DefaultTemplate.TitleSelectors...)
			tt.mod(&tmpl)
			if _, err := New(tmpl); err == nil {
				t.Error("New() accepted an invalid template")
			}
		})
	}
}
