package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Boundaries locate the functional region of a narrative page.
type Boundaries struct {
	// HeadingSuffix follows the department name in the heading that opens the
	// course listing, e.g. " Courses".
	HeadingSuffix string
	// FooterSelector selects the element that closes the course listing.
	FooterSelector string
}

// DefaultBoundaries match the 2012-2013 Arts & Science calendar.
var DefaultBoundaries = Boundaries{
	HeadingSuffix:  " Courses",
	FooterSelector: "div#footer",
}

// ExtractRegion returns the normalized markup strictly between the element
// holding the "{name} Courses" heading and the footer element. Either boundary
// missing is a *RegionNotFoundError; no partial region is ever returned.
func ExtractRegion(doc *goquery.Document, name string, b Boundaries) (string, error) {
	heading := strings.TrimSpace(Normalize(name + b.HeadingSuffix))

	text := findText(doc.Nodes[0], heading)
	if text == nil || text.Parent == nil {
		return "", &RegionNotFoundError{Boundary: BoundaryHeading, Detail: heading}
	}

	footer := doc.Find(b.FooterSelector).First()
	if footer.Length() == 0 {
		return "", &RegionNotFoundError{Boundary: BoundaryFooter, Detail: b.FooterSelector}
	}

	full, err := Render(doc.Nodes[0])
	if err != nil {
		return "", err
	}
	start, err := Render(text.Parent)
	if err != nil {
		return "", err
	}
	end, err := Render(footer.Nodes[0])
	if err != nil {
		return "", err
	}

	full, start, end = Normalize(full), Normalize(start), Normalize(end)

	i := strings.Index(full, start)
	if i < 0 {
		return "", &RegionNotFoundError{Boundary: BoundaryHeading, Detail: heading}
	}
	rest := full[i+len(start):]

	j := strings.Index(rest, end)
	if j < 0 {
		return "", &RegionNotFoundError{Boundary: BoundaryFooter, Detail: "footer does not follow heading"}
	}

	return rest[:j], nil
}

// findText returns the first text node, in document order, whose trimmed and
// normalized content equals want.
func findText(n *html.Node, want string) *html.Node {
	if n.Type == html.TextNode && strings.TrimSpace(Normalize(n.Data)) == want {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findText(c, want); found != nil {
			return found
		}
	}
	return nil
}
