package page

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Read decodes r to UTF-8 and parses it. contentType may be empty, in which case
// the encoding is sniffed from the markup. Sniffing only sees the first 1024
// bytes, so a body without a BOM or header charset that is valid UTF-8 as a
// whole is taken as UTF-8.
func Read(r io.Reader, contentType string) (*goquery.Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	var decoded io.Reader = bytes.NewReader(content)
	_, name, certain := charset.DetermineEncoding(content, contentType)
	if certain || !utf8.Valid(content) {
		decoded, err = charset.NewReaderLabel(name, bytes.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// ReadFile opens and parses a saved page.
func ReadFile(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()

	return Read(f, "")
}

// Render serializes a node and its subtree.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("rendering %s: %w", n.Data, err)
	}
	return buf.String(), nil
}

// Text returns the normalized text content of a selection.
func Text(sel *goquery.Selection) string {
	return Normalize(sel.Text())
}
