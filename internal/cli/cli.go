package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/uoft-courses/internal/config"
	"github.com/pfrederiksen/uoft-courses/internal/logger"
	"github.com/pfrederiksen/uoft-courses/internal/storage"
)

const (
	ExitSuccess        = 0
	ExitError          = 1
	ExitDocumentFailed = 2
)

// errDocumentsFailed is returned when a batch finished but some documents
// could not be parsed.
var errDocumentsFailed = errors.New("some documents failed to parse")

var (
	flagConfig  string
	flagVerbose bool

	cfg *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uoft-courses",
		Short: "Extract course records from archived U of T calendar and timetable pages",
		Long: `A CLI tool that parses saved Arts & Science calendar and timetable pages
into course and offering records, prints them or stores them in a database,
and serves the stored records as JSON.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(
		newParseCmd(kindCalendar),
		newParseCmd(kindTimetable),
		newLinksCmd(),
		newDownloadCmd(),
		newExportCmd(),
		newServeCmd(),
	)

	return cmd
}

// setup loads configuration and installs the default logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.NewWithFormat(level, logger.Format(cfg.Log.Format), cmd.ErrOrStderr()))
	return nil
}

// openStore connects to the configured database.
func openStore() (*storage.Store, error) {
	dialect, err := storage.DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.Database.Path
	if dialect.Name == storage.MySQL.Name {
		dsn = storage.MySQLDSN(cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
	}

	store, err := storage.Open(dialect, dsn)
	if err != nil {
		return nil, err
	}
	if dialect.Name == storage.MySQL.Name && cfg.Database.MaxOpenConns > 0 {
		store.DB().SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	return store, nil
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errDocumentsFailed):
		return ExitDocumentFailed
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
