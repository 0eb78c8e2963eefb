package timetable

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/uoft-courses/internal/course"
	"github.com/pfrederiksen/uoft-courses/internal/page"
)

// Two revisions of the page title exist: "Anatomy [ANA courses]" and titles
// whose bracket does not say "courses". The default accepts both; StrictTitlePattern
// only the first.
const (
	DefaultTitlePattern = `^(.*?)\s*\[\w\w\w\b[^\]]*\]`
	StrictTitlePattern  = `(.*?)\s*?(\[\w\w\w (.*?)courses?(.*?)\])`
)

// Template describes where things live on a timetable page.
type Template struct {
	// TitleSelectors are tried in order; the first match holds the title.
	TitleSelectors []string
	// TitlePattern's first capture group is the department name.
	TitlePattern string
	// TableSelector picks the offerings table; only the first match is used.
	TableSelector string
}

// DefaultTemplate matches the 2012-2013 Arts & Science timetable.
var DefaultTemplate = Template{
	TitleSelectors: []string{"h2:first-of-type font", "h2"},
	TitlePattern:   DefaultTitlePattern,
	TableSelector:  "table",
}

// Page is the result of parsing one timetable page.
type Page struct {
	Department string
	Offerings  []*course.Offering
	// Merged counts rows folded into a previous offering.
	Merged int
	// Skipped counts rows ignored as layout noise.
	Skipped int
}

// Parser extracts offerings from timetable pages.
type Parser struct {
	tmpl    Template
	titleRe *regexp.Regexp
}

// New creates a Parser, compiling the template's title pattern.
func New(tmpl Template) (*Parser, error) {
	if len(tmpl.TitleSelectors) == 0 {
		return nil, fmt.Errorf("timetable template: no title selectors")
	}
	if tmpl.TableSelector == "" {
		return nil, fmt.Errorf("timetable template: table selector is empty")
	}
	re, err := regexp.Compile(tmpl.TitlePattern)
	if err != nil {
		return nil, fmt.Errorf("timetable template: compiling title pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("timetable template: title pattern %q has no capture group", tmpl.TitlePattern)
	}
	return &Parser{tmpl: tmpl, titleRe: re}, nil
}

// Parse reads one timetable page.
func (p *Parser) Parse(r io.Reader) (*Page, error) {
	doc, err := page.Read(r, "")
	if err != nil {
		return nil, err
	}
	return p.ParseDocument(doc)
}

// ParseDocument is Parse for an already parsed page.
func (p *Parser) ParseDocument(doc *goquery.Document) (*Page, error) {
	name, err := p.Department(doc)
	if err != nil {
		return nil, err
	}

	table := doc.Find(p.tmpl.TableSelector).First()
	if table.Length() == 0 {
		return nil, &page.RegionNotFoundError{Boundary: page.BoundaryTable, Detail: p.tmpl.TableSelector}
	}

	result := &Page{Department: name}
	var resolver Resolver
	for _, row := range SplitRows(table) {
		o, outcome := resolver.Next(row)
		switch outcome {
		case Emitted:
			result.Offerings = append(result.Offerings, o)
		case Merged:
			result.Merged++
		case Skipped:
			result.Skipped++
		}
	}
	return result, nil
}

// Department extracts the department name from the page title.
func (p *Parser) Department(doc *goquery.Document) (string, error) {
	var heading *goquery.Selection
	for _, sel := range p.tmpl.TitleSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			heading = found
			break
		}
	}
	if heading == nil {
		return "", &page.RegionNotFoundError{Boundary: page.BoundaryTitle, Detail: strings.Join(p.tmpl.TitleSelectors, ", ")}
	}

	text := strings.Join(strings.Fields(page.Text(heading)), " ")
	m := p.titleRe.FindStringSubmatch(text)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return "", &page.RegionNotFoundError{Boundary: page.BoundaryTitle, Detail: fmt.Sprintf("no department in %q", text)}
	}
	return strings.TrimSpace(m[1]), nil
}
