package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/pfrederiksen/uoft-courses/internal/calendar"
	"github.com/pfrederiksen/uoft-courses/internal/course"
	"github.com/pfrederiksen/uoft-courses/internal/logger"
	"github.com/pfrederiksen/uoft-courses/internal/page"
	"github.com/pfrederiksen/uoft-courses/internal/timetable"
)

// Document is the parser output for one page.
type Document struct {
	Department string
	Records    []course.Record
}

// ParseFunc parses one page.
type ParseFunc func(doc *goquery.Document) (*Document, error)

// Calendar adapts a calendar parser.
func Calendar(p *calendar.Parser) ParseFunc {
	return func(doc *goquery.Document) (*Document, error) {
		name, err := p.Department(doc)
		if err != nil {
			return nil, err
		}
		courses, err := p.ParseDocument(doc)
		if err != nil {
			return nil, err
		}
		out := &Document{Department: name, Records: make([]course.Record, len(courses))}
		for i, c := range courses {
			out.Records[i] = c
		}
		return out, nil
	}
}

// Timetable adapts a timetable parser.
func Timetable(p *timetable.Parser) ParseFunc {
	return func(doc *goquery.Document) (*Document, error) {
		pg, err := p.ParseDocument(doc)
		if err != nil {
			return nil, err
		}
		logger.Debug("Resolved timetable rows", logger.Fields{
			"department": pg.Department,
			"offerings":  len(pg.Offerings),
			"merged":     pg.Merged,
			"skipped":    pg.Skipped,
		})
		out := &Document{Department: pg.Department, Records: make([]course.Record, len(pg.Offerings))}
		for i, o := range pg.Offerings {
			out.Records[i] = o
		}
		return out, nil
	}
}

// Emitter receives the complete records of one document and returns the
// number of rows it wrote.
type Emitter interface {
	Emit(ctx context.Context, source string, doc *Document) (int, error)
}

// Failure records one document that could not be processed.
type Failure struct {
	Source string
	Err    error
}

// Summary totals a run.
type Summary struct {
	RunID      string
	Documents  int
	Skipped    int
	Failures   []Failure
	Records    int
	Incomplete int
	Written    int
	Duration   time.Duration
}

// Failed reports whether any document failed.
func (s *Summary) Failed() bool { return len(s.Failures) > 0 }

// Driver runs Parse over a list of files.
type Driver struct {
	Parse ParseFunc
	Emit  Emitter
	// Skip holds base names of files known not to parse.
	Skip []string
	// FailFast stops the run at the first failed document.
	FailFast bool
	Metrics  *logger.Metrics
}

// Run processes paths in order. The returned error is non-nil only when the
// run stopped early: FailFast on a failed document, or ctx cancellation.
func (d *Driver) Run(ctx context.Context, paths []string) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}
	log := logger.Default().With(logger.Fields{"run_id": sum.RunID})

	metrics := d.Metrics
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}

	skip := make(map[string]bool, len(d.Skip))
	for _, name := range d.Skip {
		skip[filepath.Base(name)] = true
	}
	queued := 0
	for _, path := range paths {
		if !skip[filepath.Base(path)] {
			queued++
		}
	}
	metrics.SetGauge("documents.queued", float64(queued))

	defer func() { sum.Duration = time.Since(start) }()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		if skip[filepath.Base(path)] {
			sum.Skipped++
			log.Debug("Skipping known-bad file", logger.Fields{"source": path})
			continue
		}

		sum.Documents++
		err := d.process(ctx, log, metrics, path, sum)
		if err == nil {
			metrics.IncrCounter("documents.parsed")
			continue
		}

		metrics.IncrCounter("documents.failed")
		sum.Failures = append(sum.Failures, Failure{Source: path, Err: err})
		log.Error("Failed to process document", logger.Fields{
			"source":     path,
			"structural": page.IsStructural(err),
		}, err)

		if d.FailFast {
			return sum, fmt.Errorf("processing %s: %w", path, err)
		}
	}

	return sum, nil
}

func (d *Driver) process(ctx context.Context, log *logger.Logger, metrics *logger.Metrics, path string, sum *Summary) error {
	parseStart := time.Now()

	doc, err := page.ReadFile(path)
	if err != nil {
		return err
	}
	parsed, err := d.Parse(doc)
	if err != nil {
		return err
	}
	metrics.RecordTiming("document.parse", time.Since(parseStart))

	complete := parsed.Records[:0:0]
	for _, rec := range parsed.Records {
		if err := rec.Validate(); err != nil {
			sum.Incomplete++
			metrics.IncrCounter("records.incomplete")
			log.Warn("Dropping incomplete record", logger.Fields{
				"source": path,
				"record": rec,
				"reason": err.Error(),
			})
			continue
		}
		complete = append(complete, rec)
	}
	parsed.Records = complete

	sum.Records += len(complete)
	metrics.AddCounter("records.extracted", int64(len(complete)))

	written, err := d.Emit.Emit(ctx, path, parsed)
	sum.Written += written
	if err != nil {
		return fmt.Errorf("emitting records: %w", err)
	}

	log.Info("Processed document", logger.Fields{
		"source":     path,
		"department": parsed.Department,
		"records":    len(complete),
		"written":    written,
	})
	return nil
}

// Files lists the .htm and .html files directly inside dir, sorted by name.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".htm", ".html":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// Writer persists records, typically a *storage.Store.
type Writer interface {
	WriteAll(ctx context.Context, recs []course.Record) (written, failed int)
}

// StoreEmitter writes each document's records to a Writer. Individual
// record failures are logged by the writer and do not fail the document.
type StoreEmitter struct {
	Store Writer
}

// Emit implements Emitter.
func (e StoreEmitter) Emit(ctx context.Context, source string, doc *Document) (int, error) {
	written, failed := e.Store.WriteAll(ctx, doc.Records)
	if failed > 0 {
		logger.Warn("Some records were not persisted", logger.Fields{
			"source":  source,
			"written": written,
			"failed":  failed,
		})
	}
	return written, nil
}
