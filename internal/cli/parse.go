package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/uoft-courses/internal/batch"
	"github.com/pfrederiksen/uoft-courses/internal/calendar"
	"github.com/pfrederiksen/uoft-courses/internal/logger"
	"github.com/pfrederiksen/uoft-courses/internal/timetable"
)

type pageKind string

const (
	kindCalendar  pageKind = "calendar"
	kindTimetable pageKind = "timetable"
)

const (
	outputStdout   = "stdout"
	outputDatabase = "database"
)

type parseFlags struct {
	file     string
	dir      string
	output   string
	format   string
	failFast bool
	confirm  bool
}

func newParseCmd(kind pageKind) *cobra.Command {
	var f parseFlags

	short := "Parse calendar pages into course records"
	if kind == kindTimetable {
		short = "Parse timetable pages into offering records"
	}

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, kind, f)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Parse the given page")
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "Parse every .htm/.html page in the directory")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputStdout, "Output target: stdout or database")
	cmd.Flags().StringVar(&f.format, "format", string(FormatText), "Stdout format: text, json or csv")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "Stop at the first page that fails to parse")
	cmd.Flags().BoolVar(&f.confirm, "confirm", false, "Ask before writing each record (database output)")

	cmd.MarkFlagsMutuallyExclusive("file", "dir")

	return cmd
}

func runParse(cmd *cobra.Command, kind pageKind, f parseFlags) error {
	var (
		paths []string
		skip  []string
	)
	switch {
	case f.file != "":
		paths = []string{f.file}
	case f.dir != "":
		files, err := batch.Files(f.dir)
		if err != nil {
			return err
		}
		paths = files
		skip = cfg.Skip
	default:
		return fmt.Errorf("nothing to do: pass --file or --dir")
	}

	parse, err := parserFor(kind)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var (
		emitter batch.Emitter
		conf    *confirmEmitter
	)
	switch strings.ToLower(f.output) {
	case outputStdout:
		if f.confirm {
			return fmt.Errorf("--confirm needs --output database")
		}
		format := OutputFormat(strings.ToLower(f.format))
		if !format.valid(FormatText, FormatJSON, FormatCSV) {
			return fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'csv')", f.format)
		}
		out := newOutputEmitter(cmd.OutOrStdout(), format)
		defer out.Flush()
		emitter = out
	case outputDatabase:
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		emitter = batch.StoreEmitter{Store: store}
		if f.confirm {
			conf = newConfirmEmitter(cmd.InOrStdin(), cmd.ErrOrStderr(), store, cancel)
			emitter = conf
		}
	default:
		return fmt.Errorf("invalid output: %s (must be 'stdout' or 'database')", f.output)
	}

	driver := &batch.Driver{
		Parse:    parse,
		Emit:     emitter,
		Skip:     skip,
		FailFast: f.failFast,
	}

	sum, err := driver.Run(ctx, paths)

	logger.Info("Run complete", logger.Fields{
		"run_id":     sum.RunID,
		"documents":  sum.Documents,
		"skipped":    sum.Skipped,
		"failed":     len(sum.Failures),
		"records":    sum.Records,
		"incomplete": sum.Incomplete,
		"written":    sum.Written,
		"duration":   sum.Duration.String(),
	})
	logger.Debug("Run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})

	if err != nil {
		if conf != nil && conf.Quit() && errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	if sum.Failed() {
		return errDocumentsFailed
	}
	return nil
}

func parserFor(kind pageKind) (batch.ParseFunc, error) {
	switch kind {
	case kindCalendar:
		tmpl := cfg.Calendar.Template()
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
		return batch.Calendar(calendar.New(tmpl)), nil
	case kindTimetable:
		p, err := timetable.New(cfg.Timetable.Template())
		if err != nil {
			return nil, err
		}
		return batch.Timetable(p), nil
	default:
		return nil, fmt.Errorf("unknown page kind: %s", kind)
	}
}
