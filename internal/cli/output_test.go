package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pfrederiksen/uoft-courses/internal/batch"
	"github.com/pfrederiksen/uoft-courses/internal/course"
)

func sampleDocument() *batch.Document {
	return &batch.Document{
		Department: "Chemistry",
		Records: []course.Record{
			&course.Course{Code: "CHM138H1", Name: "Introductory Organic Chemistry I", LecTimes: "36L/36P"},
			&course.Course{Code: "CHM139H1", Name: "Chemistry: Physical Principles"},
		},
	}
}

func TestOutputEmitter(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		want   []string
	}{
		{
			name:   "text",
			format: FormatText,
			want:   []string{"Chemistry (chm.html)", "  CHM138H1\n", "       lectimes: 36L/36P", "Total: 2 records"},
		},
		{
			name:   "json",
			format: FormatJSON,
			want:   []string{`"source": "chm.html"`, `"count": 2`, `"lectimes": "36L/36P"`},
		},
		{
			name:   "csv",
			format: FormatCSV,
			want:   []string{"code,name,desc,", "CHM138H1,Introductory Organic Chemistry I,", ",36L/36P\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := newOutputEmitter(&buf, tt.format)
			n, err := e.Emit(context.Background(), "chm.html", sampleDocument())
			e.Flush()
			if err != nil {
				t.Fatalf("Emit() error: %v", err)
			}
			if n != 0 {
				t.Errorf("Emit() = %d, stdout output writes no rows", n)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestOutputEmitter_CSVHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	e := newOutputEmitter(&buf, FormatCSV)
	for i := 0; i < 2; i++ {
		if _, err := e.Emit(context.Background(), "chm.html", sampleDocument()); err != nil {
			t.Fatal(err)
		}
	}
	if got := strings.Count(buf.String(), "code,name"); got != 1 {
		t.Errorf("header written %d times, want 1", got)
	}
}

func TestWriteText_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeText(&buf, "x.html", &batch.Document{Department: "Empty"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No records found.") {
		t.Errorf("output = %q", buf.String())
	}
}
