package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/uoft-courses/internal/course"
	"github.com/pfrederiksen/uoft-courses/internal/logger"
)

func fixture(t *testing.T, rel string) string {
	t.Helper()
	path, err := filepath.Abs(rel)
	if err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command in a fresh working directory and returns
// stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	prev := logger.Default()
	t.Cleanup(func() { logger.SetDefault(prev) })

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("UOFT_DATABASE_PATH", filepath.Join(dir, "courses.db"))
	t.Setenv("UOFT_LOG_FORMAT", "json")
	return dir
}

func TestCalendar_StdoutJSON(t *testing.T) {
	chm := fixture(t, "../calendar/testdata/chemistry.html")
	workdir(t)

	out, logs, err := runCLI(t, "calendar", "--file", chm, "--format", "json")
	if err != nil {
		t.Fatalf("calendar error: %v\n%s", err, logs)
	}

	var got struct {
		Department string          `json:"department"`
		Count      int             `json:"count"`
		Records    []course.Course `json:"records"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Department != "Chemistry" || got.Count != 3 {
		t.Errorf("department=%q count=%d, want Chemistry and 3", got.Department, got.Count)
	}
	if got.Records[0].Code != "CHM138H1" || got.Records[0].LecTimes != "36L/36P" {
		t.Errorf("first record = %+v", got.Records[0])
	}
	if !strings.Contains(logs, "Dropping incomplete record") {
		t.Error("incomplete record was not reported")
	}
}

func TestCalendar_StdoutText(t *testing.T) {
	chm := fixture(t, "../calendar/testdata/chemistry.html")
	workdir(t)

	out, _, err := runCLI(t, "calendar", "-f", chm)
	if err != nil {
		t.Fatalf("calendar error: %v", err)
	}
	for _, want := range []string{"Chemistry (", "CHM139H1", "Corequisite: MAT135H1/MAT137Y1", "Total: 3 records"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTimetable_DatabaseAndExport(t *testing.T) {
	csc := fixture(t, "../timetable/testdata/computer_science.html")
	dir := workdir(t)

	if _, logs, err := runCLI(t, "timetable", "--file", csc, "--output", "database"); err != nil {
		t.Fatalf("timetable error: %v\n%s", err, logs)
	}

	out, _, err := runCLI(t, "export", "--table", "timetable", "--format", "csv")
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	// Both CSC108H1 sections share one row; the table is keyed by code.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want header + 2:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "code,term,name,section") {
		t.Errorf("csv header = %q", lines[0])
	}

	out, _, err = runCLI(t, "export", "--table", "timetable", "--format", "csv", "--filter", "term:S")
	if err != nil {
		t.Fatalf("filtered export error: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 2 || !strings.HasPrefix(lines[1], "CSC148H1,S,") {
		t.Errorf("filtered csv = %q", out)
	}

	csvPath := filepath.Join(dir, "fall.csv")
	if _, _, err := runCLI(t, "export", "--table", "timetable", "--filter", "term:F", "--out", csvPath); err != nil {
		t.Fatalf("csv file export error: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("reading csv export: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 2 || !strings.HasPrefix(lines[1], "CSC108H1,F,") {
		t.Errorf("csv file = %q", data)
	}

	xlsx := filepath.Join(dir, "timetable.xlsx")
	if _, _, err := runCLI(t, "export", "--table", "timetable", "--format", "xlsx", "--out", xlsx); err != nil {
		t.Fatalf("xlsx export error: %v", err)
	}
	f, err := excelize.OpenFile(xlsx)
	if err != nil {
		t.Fatalf("opening xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("timetable")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "code" || rows[1][0] != "CSC108H1" {
		t.Errorf("xlsx rows = %v", rows)
	}
}

func TestCalendar_DirWithFailure(t *testing.T) {
	chm := fixture(t, "../calendar/testdata/chemistry.html")
	dir := workdir(t)

	pages := filepath.Join(dir, "pages")
	writeFile(t, filepath.Join(pages, "a.html"), readFile(t, chm))
	writeFile(t, filepath.Join(pages, "b.html"), "<html><body><p>not a calendar page</p></body></html>")
	writeFile(t, filepath.Join(pages, "c.htm"), readFile(t, chm))

	_, logs, err := runCLI(t, "calendar", "--dir", pages, "-o", "database")
	if exitCode(err) != ExitDocumentFailed {
		t.Fatalf("exit code = %d (err %v), want %d", exitCode(err), err, ExitDocumentFailed)
	}
	if !strings.Contains(logs, "b.html") {
		t.Error("failed document not logged with its source")
	}

	out, _, err := runCLI(t, "export", "--format", "json")
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	var courses []course.Course
	if err := json.Unmarshal([]byte(out), &courses); err != nil {
		t.Fatal(err)
	}
	if len(courses) != 3 {
		t.Errorf("stored %d courses, want 3", len(courses))
	}
}

func TestCalendar_NothingToDo(t *testing.T) {
	workdir(t)
	if _, _, err := runCLI(t, "calendar"); err == nil {
		t.Error("calendar without --file or --dir should fail")
	}
}

func TestInvalidFlags(t *testing.T) {
	chm := fixture(t, "../calendar/testdata/chemistry.html")
	workdir(t)

	tests := [][]string{
		{"calendar", "-f", chm, "--format", "yaml"},
		{"calendar", "-f", chm, "--output", "printer"},
		{"calendar", "-f", chm, "--confirm"},
		{"export", "--table", "students"},
		{"export", "--format", "pdf"},
		{"export", "--sort", "date"},
		{"export", "--filter", "room:SS2102"},
		{"links", "--index", "x.html", "--kind", "catalog"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, _, err := runCLI(t, args...); exitCode(err) != ExitError {
				t.Errorf("exit code = %d, want %d", exitCode(err), ExitError)
			}
		})
	}
}

func TestLinks(t *testing.T) {
	index := fixture(t, "../inventory/testdata/timetable_index.html")
	dir := workdir(t)

	out := filepath.Join(dir, "timetable.yaml")
	if _, logs, err := runCLI(t, "links", "--kind", "timetable", "--index", index, "--base", "http://example.com/tt/", "--out", out); err != nil {
		t.Fatalf("links error: %v\n%s", err, logs)
	}

	data := readFile(t, out)
	for _, want := range []string{"kind: timetable", "name: Anatomy", "url: http://example.com/tt/ana.html"} {
		if !strings.Contains(data, want) {
			t.Errorf("inventory missing %q:\n%s", want, data)
		}
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != ExitSuccess {
		t.Error("nil error should exit 0")
	}
	if exitCode(errDocumentsFailed) != ExitDocumentFailed {
		t.Error("document failure should exit 2")
	}
	if exitCode(context.Canceled) != ExitError {
		t.Error("other errors should exit 1")
	}
}
