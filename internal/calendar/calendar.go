package calendar

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/uoft-courses/internal/course"
	"github.com/pfrederiksen/uoft-courses/internal/page"
)

// DefaultLabels are the "Label:" prefixes pulled out of each course entry.
var DefaultLabels = []string{
	"Prerequisite",
	"Corequisite",
	"Exclusion",
	"Recommended Preparation",
	"Distribution Requirement Status",
	"Breadth Requirement",
}

// Template describes where things live on a calendar page.
type Template struct {
	NameSelector string
	Boundaries   page.Boundaries
	Labels       []string
}

// DefaultTemplate matches the 2012-2013 Arts & Science calendar.
var DefaultTemplate = Template{
	NameSelector: "h1",
	Boundaries:   page.DefaultBoundaries,
	Labels:       DefaultLabels,
}

// Validate checks that every label maps onto a course column.
func (t Template) Validate() error {
	if t.NameSelector == "" {
		return fmt.Errorf("calendar template: name selector is empty")
	}
	if t.Boundaries.FooterSelector == "" {
		return fmt.Errorf("calendar template: footer selector is empty")
	}
	var probe course.Course
	for _, label := range t.Labels {
		if err := probe.Set(labelKey(label), "x"); err != nil {
			return fmt.Errorf("calendar template: label %q: %w", label, err)
		}
	}
	return nil
}

var (
	anchorRe = regexp.MustCompile(`<a name=.?` + course.CodePattern + `.?>*?</a>`)
	titleRe  = regexp.MustCompile(`(` + course.CodePattern + `)(\s*)(.*?)(\[(?:\d+\w/?)+\])?$`)
)

// Parser extracts courses from calendar pages.
type Parser struct {
	tmpl     Template
	labelRes []*regexp.Regexp
}

// New creates a Parser for the given template.
func New(tmpl Template) *Parser {
	p := &Parser{tmpl: tmpl}
	for _, label := range tmpl.Labels {
		p.labelRes = append(p.labelRes, regexp.MustCompile(regexp.QuoteMeta(label)+`:\s*(.*?)<br\s*/?>`))
	}
	return p
}

// Parse reads one calendar page and returns a mapping per course entry, in page
// order. Mappings may be incomplete; callers decide what to keep.
func (p *Parser) Parse(r io.Reader) ([]*course.Course, error) {
	doc, err := page.Read(r, "")
	if err != nil {
		return nil, err
	}
	return p.ParseDocument(doc)
}

// ParseDocument is Parse for an already parsed page.
func (p *Parser) ParseDocument(doc *goquery.Document) ([]*course.Course, error) {
	name, err := DepartmentName(doc, p.tmpl.NameSelector)
	if err != nil {
		return nil, err
	}

	region, err := page.ExtractRegion(doc, name, p.tmpl.Boundaries)
	if err != nil {
		return nil, err
	}

	fragments, err := SplitFragments(region)
	if err != nil {
		return nil, fmt.Errorf("department %q: %w", name, err)
	}

	courses := make([]*course.Course, 0, len(fragments))
	for _, fragment := range fragments {
		courses = append(courses, p.ExtractCourse(fragment))
	}
	return courses, nil
}

// Department returns the department name using the template's selector.
func (p *Parser) Department(doc *goquery.Document) (string, error) {
	return DepartmentName(doc, p.tmpl.NameSelector)
}

// DepartmentName returns the text of the first element matching selector.
func DepartmentName(doc *goquery.Document, selector string) (string, error) {
	heading := doc.Find(selector).First()
	if heading.Length() == 0 {
		return "", &page.RegionNotFoundError{Boundary: page.BoundaryName, Detail: selector}
	}
	name := strings.TrimSpace(page.Text(heading))
	if name == "" {
		return "", &page.RegionNotFoundError{Boundary: page.BoundaryName, Detail: selector + " is empty"}
	}
	return name, nil
}

// SplitFragments cuts a region at every course anchor. Front matter before the
// first anchor is dropped; each fragment is the markup after one anchor up to
// the next.
func SplitFragments(region string) ([]string, error) {
	parts := anchorRe.Split(region, -1)
	if len(parts) < 2 {
		return nil, page.ErrNoFragments
	}
	return parts[1:], nil
}

// ExtractCourse pulls the fields of one course entry. Missing pieces are left
// empty rather than reported.
func (p *Parser) ExtractCourse(fragment string) *course.Course {
	c := &course.Course{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return c
	}

	if strong := doc.Find("span.strong").First(); strong.Length() > 0 {
		title := strings.Join(strings.Fields(page.Text(strong)), " ")
		if m := titleRe.FindStringSubmatch(title); m != nil {
			c.Code = m[1]
			c.Name = strings.TrimSpace(m[3])
			if m[4] != "" {
				c.LecTimes = strings.Trim(m[4], "[]")
			}
		}
	}

	if para := doc.Find("p").First(); para.Length() > 0 {
		c.Desc = strings.TrimSpace(page.Text(para))
	}

	for i, label := range p.tmpl.Labels {
		m := p.labelRes[i].FindStringSubmatch(fragment)
		if m == nil {
			continue
		}
		if value := stripTags(m[1]); value != "" {
			_ = c.Set(labelKey(label), value)
		}
	}

	return c
}

func labelKey(label string) string {
	return strings.ReplaceAll(label, " ", "")
}

func stripTags(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return strings.TrimSpace(markup)
	}
	return strings.TrimSpace(page.Text(doc.Selection))
}
