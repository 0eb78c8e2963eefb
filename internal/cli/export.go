package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/uoft-courses/internal/course"
	"github.com/pfrederiksen/uoft-courses/internal/filter"
	"github.com/pfrederiksen/uoft-courses/internal/logger"
)

func newExportCmd() *cobra.Command {
	var table, format, out, sortBy, where string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored table as CSV, JSON or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, table, format, out, sortBy, where)
		},
	}

	cmd.Flags().StringVar(&table, "table", course.CoursesTable, "Table to export: courses or timetable")
	cmd.Flags().StringVar(&format, "format", string(FormatCSV), "Export format: csv, json or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&sortBy, "sort", string(SortByCode), "Sort order: code, name or term")
	cmd.Flags().StringVar(&where, "filter", "", `Only export matching rows, e.g. "dept:CSC level:100 term:F"`)

	return cmd
}

// getter reads a column by name.
type getter interface {
	Get(name string) string
}

func runExport(cmd *cobra.Command, table, formatName, out, sortBy, where string) error {
	format := OutputFormat(strings.ToLower(formatName))
	if !format.valid(FormatCSV, FormatJSON, FormatXLSX) {
		return fmt.Errorf("invalid format: %s (must be 'csv', 'json' or 'xlsx')", formatName)
	}
	order, err := parseSortOrder(sortBy)
	if err != nil {
		return err
	}
	crit, err := filter.Parse(where)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()

	var (
		records any
		rows    []getter
		columns []string
	)
	switch table {
	case course.CoursesTable:
		courses, err := store.Courses(ctx)
		if err != nil {
			return err
		}
		courses = filter.Apply(crit, courses)
		sortCourses(courses, order)
		records, columns = courses, course.CourseColumns
		for _, c := range courses {
			rows = append(rows, c)
		}
	case course.TimetableTable:
		offerings, err := store.Offerings(ctx)
		if err != nil {
			return err
		}
		offerings = filter.Apply(crit, offerings)
		sortOfferings(offerings, order)
		records, columns = offerings, course.OfferingColumns
		for _, o := range offerings {
			rows = append(rows, o)
		}
	default:
		return fmt.Errorf("unknown table: %s (must be 'courses' or 'timetable')", table)
	}

	w := cmd.OutOrStdout()
	var file *os.File
	if out != "" && out != "-" {
		file, err = os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	switch format {
	case FormatJSON:
		err = writeJSON(w, records)
	case FormatXLSX:
		err = writeXLSX(w, table, columns, rows)
	default:
		err = writeCSV(w, records)
	}
	if err != nil {
		return fmt.Errorf("writing %s export: %w", format, err)
	}
	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("closing output file: %w", err)
		}
	}

	logger.Info("Exported table", logger.Fields{"table": table, "format": format, "rows": len(rows), "out": out})
	return nil
}

func writeCSV(w io.Writer, records any) error {
	data, err := csvutil.Marshal(records)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeXLSX writes one sheet named after the table with a bold header row.
func writeXLSX(w io.Writer, sheet string, columns []string, rows []getter) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	for r, row := range rows {
		for i, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(sheet, cell, row.Get(col))
		}
	}

	return f.Write(w)
}
