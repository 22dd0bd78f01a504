package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/owg-schedule/internal/filter"
	"github.com/pfrederiksen/owg-schedule/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version is reported by --version; set at build time.
var Version = "dev"

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool

	flagSports   []string
	flagVenues   []string
	flagTeams    []string
	flagStatuses []string
	flagDates    string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owg-schedule",
		Short: "Scrape the Milano Cortina 2026 competition schedule",
		Long: `A CLI tool that renders the official Olympic schedule page, extracts the
embedded event records and normalizes them into a per-day schedule. Optionally
builds a per-day feed of athletes from one nation.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging and output")
	cmd.PersistentFlags().StringSliceVar(&flagSports, "sport", nil, "Only show these sports (repeatable)")
	cmd.PersistentFlags().StringSliceVar(&flagVenues, "venue", nil, "Only show events at these venues (repeatable)")
	cmd.PersistentFlags().StringSliceVar(&flagTeams, "team", nil, "Only show events naming this team or athlete (repeatable)")
	cmd.PersistentFlags().StringSliceVar(&flagStatuses, "status", nil, "Only show events with this status (repeatable)")
	cmd.PersistentFlags().StringVar(&flagDates, "dates", "", "Only show this date range, e.g. 'Feb 10-15' or 'Feb 14'")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newFallbackCmd())
	cmd.AddCommand(newNormalizeCmd())

	return cmd
}

// parseFormat validates the --format flag.
func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// buildFilter turns the display flags into a filter. Filters never affect what is persisted.
func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Sports = flagSports
	f.Venues = flagVenues
	f.Teams = flagTeams
	f.Statuses = flagStatuses
	if flagDates != "" {
		from, to, err := filter.ParseDateRange(flagDates, filter.GamesYear)
		if err != nil {
			return nil, fmt.Errorf("--dates: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}
	return f, nil
}

// setupLogger installs the process logger. Logs go to stderr so JSON output stays clean.
func setupLogger(level, format string) (*logger.Logger, error) {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		lvl = logger.LevelDebug
	}

	var log *logger.Logger
	if format == "console" {
		log = logger.NewConsole(lvl, os.Stderr)
	} else {
		log = logger.New(lvl, os.Stderr)
	}
	logger.SetDefault(log)
	return log, nil
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Finished in %s\n", time.Since(start).Round(time.Millisecond))
	}
	stop()
	os.Exit(ExitSuccess)
}
