package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	UserAgent = "uoft-courses/1.0 (github.com/pfrederiksen/uoft-courses)"
	Timeout   = 30 * time.Second
)

// ErrExists is returned by Download when the target file is already present.
var ErrExists = errors.New("file already exists")

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Code, e.URL)
}

// Scraper fetches pages with a fixed User-Agent and timeout
type Scraper struct {
	client    *http.Client
	userAgent string
}

// New creates a new Scraper. Zero values select the package defaults.
func New(userAgent string, timeout time.Duration) *Scraper {
	if userAgent == "" {
		userAgent = UserAgent
	}
	if timeout <= 0 {
		timeout = Timeout
	}
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Fetch returns the body of url.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, _, err := s.fetch(ctx, url)
	return body, err
}

func (s *Scraper) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Download saves url to path. Existing files are left alone and reported
// with ErrExists; nothing is written when the fetch fails. A non-UTF-8
// charset named in the Content-Type header is transcoded away, since the
// saved file cannot carry the header.
func (s *Scraper) Download(ctx context.Context, url, path string) error {
	if _, err := os.Stat(path); err == nil {
		return ErrExists
	}

	body, contentType, err := s.fetch(ctx, url)
	if err != nil {
		return err
	}
	body, err = toUTF8(body, contentType)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}

// toUTF8 decodes body using the charset parameter of contentType. Anything
// other than a known non-UTF-8 charset leaves body unchanged.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return body, nil
	}
	e, name := charset.Lookup(params["charset"])
	if e == nil || name == "utf-8" {
		return body, nil
	}

	r, err := charset.NewReaderLabel(name, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return decoded, nil
}
