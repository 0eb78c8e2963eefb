package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/uoft-courses/internal/logger"
	"github.com/pfrederiksen/uoft-courses/internal/page"
	"github.com/pfrederiksen/uoft-courses/internal/scraper"
)

// Kind selects the index page layout.
type Kind string

const (
	Calendar  Kind = "calendar"
	Timetable Kind = "timetable"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case Calendar, Timetable:
		return k, nil
	default:
		return "", fmt.Errorf("unknown page kind: %q (want calendar or timetable)", s)
	}
}

var (
	linkSelectors = map[Kind]string{
		Calendar:  "div.items ul.simple a",
		Timetable: "div#content li a",
	}

	linkText = strings.NewReplacer("/", "", "\n", " ")

	// Timetable link text reads "Anatomy [ANA courses]".
	timetableNameRe = regexp.MustCompile(`^(.*?)\s*?\[`)
)

// Link is one department page.
type Link struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Inventory is the saved set of department links.
type Inventory struct {
	Kind  Kind   `yaml:"kind"`
	Links []Link `yaml:"links"`
}

// Extract collects department links from an index page. Relative hrefs are
// resolved against base when it is non-nil. Links whose name cannot be
// recovered are logged and skipped.
func Extract(doc *goquery.Document, kind Kind, base *url.URL) (*Inventory, error) {
	selector, ok := linkSelectors[kind]
	if !ok {
		return nil, fmt.Errorf("unknown page kind: %q", kind)
	}

	anchors := doc.Find(selector)
	if anchors.Length() == 0 {
		return nil, &page.RegionNotFoundError{Boundary: page.BoundaryLinks, Detail: selector}
	}

	inv := &Inventory{Kind: kind}
	index := make(map[string]int)

	anchors.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		text := linkText.Replace(page.Text(a))

		name := strings.TrimSpace(text)
		if kind == Timetable {
			m := timetableNameRe.FindStringSubmatch(text)
			if m == nil {
				logger.Warn("Could not match department name in link", logger.Fields{"text": text, "href": href})
				return
			}
			name = strings.TrimSpace(m[1])
		}
		if name == "" {
			return
		}

		link := Link{Name: name, URL: resolve(base, strings.TrimSpace(href))}
		if i, seen := index[name]; seen {
			inv.Links[i] = link
			return
		}
		index[name] = len(inv.Links)
		inv.Links = append(inv.Links, link)
	})

	return inv, nil
}

func resolve(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// Load reads an inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}
	return &inv, nil
}

// Save writes the inventory as YAML.
func (inv *Inventory) Save(path string) error {
	data, err := yaml.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encoding inventory: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}
	return nil
}

// PagePath is where the page for name is stored under dir.
func PagePath(dir, name string) string {
	return filepath.Join(dir, name+".html")
}

// Downloader saves one URL to a file.
type Downloader interface {
	Download(ctx context.Context, url, path string) error
}

// DownloadResult counts what a download run did.
type DownloadResult struct {
	Saved    int
	Existing int
	Failed   int
}

// Download fetches every page of the inventory into dir. Pages already on
// disk are skipped. A failed page is logged and the run continues; only
// context cancellation stops it early.
func (inv *Inventory) Download(ctx context.Context, d Downloader, dir string) (DownloadResult, error) {
	var res DownloadResult

	for _, link := range inv.Links {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		path := PagePath(dir, link.Name)
		fields := logger.Fields{"name": link.Name, "url": link.URL, "path": path}

		err := d.Download(ctx, link.URL, path)
		switch {
		case err == nil:
			res.Saved++
			logger.Info("Saved page", fields)
		case errors.Is(err, scraper.ErrExists):
			res.Existing++
			logger.Debug("Page already downloaded", fields)
		default:
			res.Failed++
			logger.Error("Failed to download page", fields, err)
		}
	}

	return res, nil
}
