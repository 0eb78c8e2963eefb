package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/pfrederiksen/uoft-courses/internal/batch"
	"github.com/pfrederiksen/uoft-courses/internal/course"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
	FormatXLSX OutputFormat = "xlsx"
)

func (f OutputFormat) valid(allowed ...OutputFormat) bool {
	for _, a := range allowed {
		if f == a {
			return true
		}
	}
	return false
}

// DocumentOutput is the JSON shape of one parsed page
type DocumentOutput struct {
	Source     string          `json:"source"`
	Department string          `json:"department"`
	Count      int             `json:"count"`
	Records    []course.Record `json:"records"`
}

// outputEmitter prints each document's records instead of storing them.
type outputEmitter struct {
	w      io.Writer
	format OutputFormat

	csvw *csv.Writer
	enc  *csvutil.Encoder
}

func newOutputEmitter(w io.Writer, format OutputFormat) *outputEmitter {
	e := &outputEmitter{w: w, format: format}
	if format == FormatCSV {
		e.csvw = csv.NewWriter(w)
		e.enc = csvutil.NewEncoder(e.csvw)
	}
	return e
}

// Emit implements batch.Emitter. Nothing is persisted, so it reports zero
// rows written.
func (e *outputEmitter) Emit(_ context.Context, source string, doc *batch.Document) (int, error) {
	switch e.format {
	case FormatJSON:
		return 0, writeJSON(e.w, &DocumentOutput{
			Source:     source,
			Department: doc.Department,
			Count:      len(doc.Records),
			Records:    doc.Records,
		})
	case FormatCSV:
		for _, rec := range doc.Records {
			if err := e.enc.Encode(rec); err != nil {
				return 0, fmt.Errorf("encoding csv: %w", err)
			}
		}
		e.csvw.Flush()
		return 0, e.csvw.Error()
	case FormatText:
		return 0, writeText(e.w, source, doc)
	default:
		return 0, fmt.Errorf("unknown format: %s", e.format)
	}
}

// Flush writes any buffered CSV output.
func (e *outputEmitter) Flush() {
	if e.csvw != nil {
		e.csvw.Flush()
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs one document as human-readable text
func writeText(w io.Writer, source string, doc *batch.Document) error {
	fmt.Fprintf(w, "%s (%s)\n", doc.Department, source)

	if len(doc.Records) == 0 {
		fmt.Fprintln(w, "  No records found.")
		return nil
	}

	for _, rec := range doc.Records {
		fmt.Fprintf(w, "\n  %s\n", rec.Key())
		for _, field := range rec.Fields() {
			fmt.Fprintf(w, "       %s: %s\n", field.Name, field.Value)
		}
	}
	_, err := fmt.Fprintf(w, "\nTotal: %d records\n\n", len(doc.Records))
	return err
}
