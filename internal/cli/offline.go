package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/owg-schedule/internal/config"
	"github.com/pfrederiksen/owg-schedule/internal/pipeline"
	"github.com/pfrederiksen/owg-schedule/internal/schedule"
	"github.com/pfrederiksen/owg-schedule/internal/scraper"
)

func newFallbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fallback",
		Short: "Print the built-in fallback schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(flagFormat)
			if err != nil {
				return err
			}
			flt, err := buildFilter()
			if err != nil {
				return err
			}
			result := &OutputResult{
				GeneratedAt:    time.Now().UTC(),
				Fallback:       true,
				FallbackReason: "requested",
				Days:           schedule.Fallback(),
			}
			result.EventCount = schedule.CountEvents(result.Days)
			result.applyFilter(flt)
			return WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose)
		},
	}
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize FILE",
		Short: "Extract and normalize the schedule from a saved HTML page",
		Long: `Normalize runs the pattern extractor and record normalizer over a saved copy
of the schedule page. Nothing is persisted. An empty extraction is reported as
the fallback schedule, the same way scrape would.`,
		Args: cobra.ExactArgs(1),
		RunE: runNormalize,
	}
}

func runNormalize(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}
	flt, err := buildFilter()
	if err != nil {
		return err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()

	opts := pipelineOptions(cfg)
	records, err := scraper.New(opts.Extract).ExtractHTML(f)
	if err != nil {
		return fmt.Errorf("extracting records: %w", err)
	}
	days := schedule.NewNormalizer(opts.Codes, schedule.WithLocation(opts.Location)).Normalize(records)

	res := &pipeline.Result{Days: days, RawRecords: len(records)}
	if len(days) == 0 {
		res = pipeline.FallbackResult(pipeline.ReasonEmpty)
		res.RawRecords = len(records)
	}

	result := &OutputResult{
		GeneratedAt:    time.Now().UTC(),
		Fallback:       res.Fallback,
		FallbackReason: res.FallbackReason,
		RawRecords:     res.RawRecords,
		Days:           res.Days,
		EventCount:     schedule.CountEvents(res.Days),
	}
	result.applyFilter(flt)
	return WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose)
}
