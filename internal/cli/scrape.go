package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/owg-schedule/internal/browser"
	"github.com/pfrederiksen/owg-schedule/internal/cache"
	"github.com/pfrederiksen/owg-schedule/internal/calendar"
	"github.com/pfrederiksen/owg-schedule/internal/capture"
	"github.com/pfrederiksen/owg-schedule/internal/config"
	"github.com/pfrederiksen/owg-schedule/internal/logger"
	"github.com/pfrederiksen/owg-schedule/internal/metrics"
	"github.com/pfrederiksen/owg-schedule/internal/notifier"
	"github.com/pfrederiksen/owg-schedule/internal/pipeline"
	"github.com/pfrederiksen/owg-schedule/internal/schedule"
	"github.com/pfrederiksen/owg-schedule/internal/scraper"
	"github.com/pfrederiksen/owg-schedule/internal/storage"
)

var (
	flagNationality    string
	flagTTL            int
	flagICS            string
	flagDryRun         bool
	flagDataDir        string
	flagInstallBrowser bool
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Render the schedule page and persist the normalized schedule",
		Long: `Scrape renders the schedule page in headless Chromium, extracts and normalizes
the embedded records, and saves schedule.json and last-updated.json. When a
nationality is configured it also saves athletes.json. A fresh cached schedule
short-circuits the run.`,
		Args: cobra.NoArgs,
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&flagNationality, "nationality", "", "Three-letter nation code for the athlete feed (e.g. FIN)")
	cmd.Flags().IntVar(&flagTTL, "ttl", 0, "Cache TTL in seconds; 0 always scrapes")
	cmd.Flags().StringVar(&flagICS, "ics", "", "Also write the schedule as an iCalendar file")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print notifications and skip persistence")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "", "Override the data directory")
	cmd.Flags().BoolVar(&flagInstallBrowser, "install-browser", false, "Download Chromium before launching")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}
	flt, err := buildFilter()
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithEnv(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	log, err := setupLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer closeStore()

	notify, closeNotifier, err := buildNotifier(cfg, flagDryRun, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("initializing notifier: %w", err)
	}
	defer closeNotifier()

	runner := &pipeline.Runner{
		Store:    store,
		Gate:     cache.NewGate(cfg.Cache.TTL()),
		Notifier: notify,
		Metrics:  metrics.New(),
		Options:  pipelineOptions(cfg),
		Open:     browserOpener(cfg, flagInstallBrowser),
		DryRun:   flagDryRun,
		PushURL:  cfg.Metrics.PushgatewayURL,
		Job:      cfg.Metrics.Job,
		Log:      log,
	}

	out, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	result := newOutputResult(out)
	result.applyFilter(flt)

	if flagICS != "" {
		if err := writeICS(flagICS, result.Days, cfg.Location()); err != nil {
			return err
		}
		log.Info("Wrote calendar", logger.Fields{"path": flagICS, "events": result.EventCount})
	}

	return WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose)
}

// applyFlags layers explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("nationality") {
		cfg.Capture.Nationality = strings.ToUpper(strings.TrimSpace(flagNationality))
		cfg.Capture.Word = schedule.DefaultCodes().Country(cfg.Capture.Nationality)
	}
	if flags.Changed("ttl") {
		if flagTTL < 0 {
			flagTTL = 0
		}
		cfg.Cache.TTLSeconds = flagTTL
	}
	if flags.Changed("data-dir") {
		cfg.Storage.DataDir = flagDataDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	extract := scraper.DefaultConfig()
	extract.WindowSize = cfg.Extract.WindowSize
	extract.MaxTeams = cfg.Extract.MaxTeams

	return pipeline.Options{
		URL:               cfg.Source.URL,
		DayAPI:            cfg.Source.DayAPI,
		NavigationTimeout: cfg.Source.NavigationTimeout,
		Location:          cfg.Location(),
		Nationality: capture.Nationality{
			Code: cfg.Capture.Nationality,
			Word: cfg.Capture.Word,
		},
		Watch:      cfg.Capture.Watch,
		MaxClicks:  cfg.Capture.MaxClicks,
		MaxHandles: cfg.Capture.MaxHandles,
		ClickWait:  cfg.Capture.ClickWait,
		SettleWait: cfg.Capture.SettleWait,
		Extract:    extract,
		Codes:      schedule.DefaultCodes(),
	}
}

func browserOpener(cfg *config.Config, install bool) pipeline.Opener {
	return func(ctx context.Context) (pipeline.Renderer, func() error, error) {
		r, err := browser.Launch(browser.Options{
			Headless:  cfg.Source.Headless,
			UserAgent: cfg.Source.UserAgent,
			Install:   install,
		})
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	}
}

// openStore builds the primary store and any mirrors. The returned func releases connections.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	var closers []func() error
	release := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	primary, closer, err := backend(ctx, cfg, cfg.Storage.Backend)
	if err != nil {
		return nil, release, err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	var mirrors []storage.Store
	if cfg.Storage.MirrorDir != "" {
		fs, err := storage.New(cfg.Storage.MirrorDir)
		if err != nil {
			release()
			return nil, func() {}, fmt.Errorf("mirror directory: %w", err)
		}
		mirrors = append(mirrors, fs)
	}
	for _, name := range cfg.Storage.Mirrors {
		if name == cfg.Storage.Backend {
			continue
		}
		m, closer, err := backend(ctx, cfg, name)
		if err != nil {
			release()
			return nil, func() {}, fmt.Errorf("%s mirror: %w", name, err)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		mirrors = append(mirrors, m)
	}

	if len(mirrors) == 0 {
		return primary, release, nil
	}
	return &storage.Mirrored{Primary: primary, Mirrors: mirrors}, release, nil
}

func backend(ctx context.Context, cfg *config.Config, name string) (storage.Store, func() error, error) {
	switch name {
	case "file":
		s, err := storage.New(cfg.Storage.DataDir)
		return s, nil, err
	case "s3":
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:  cfg.Storage.S3.Bucket,
			Prefix:  cfg.Storage.S3.Prefix,
			Region:  cfg.Storage.S3.Region,
			Profile: cfg.Storage.S3.Profile,
		})
		return s, nil, err
	case "redis":
		s, err := storage.NewRedisStore(ctx,
			storage.WithRedisAddr(cfg.Storage.Redis.Addr),
			storage.WithRedisPassword(cfg.Storage.Redis.Password),
			storage.WithRedisDB(cfg.Storage.Redis.DB),
			storage.WithRedisPrefix(cfg.Storage.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "gist":
		s, err := storage.NewGistStore(cfg.Storage.Gist.ID, os.Getenv("GITHUB_TOKEN"))
		return s, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", name)
	}
}

// buildNotifier picks the notifier named in the config. Dry runs always print instead.
func buildNotifier(cfg *config.Config, dryRun bool, out io.Writer) (notifier.Notifier, func(), error) {
	noop := func() {}
	if dryRun {
		return notifier.NewDryRunNotifier(out), noop, nil
	}

	switch cfg.Notify.Type {
	case "none", "":
		return notifier.Nop{}, noop, nil
	case "dryrun":
		return notifier.NewDryRunNotifier(out), noop, nil
	case "twitter":
		n, err := notifier.NewTwitterNotifier()
		if err != nil {
			return nil, noop, err
		}
		return n, noop, nil
	case "telegram":
		n, err := notifier.NewTelegramNotifierFromEnv()
		if err != nil {
			return nil, noop, err
		}
		return n, noop, nil
	case "kafka":
		n, err := notifier.NewKafkaNotifier(cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic)
		if err != nil {
			return nil, noop, err
		}
		return n, func() { _ = n.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown notifier type: %s", cfg.Notify.Type)
	}
}

func writeICS(path string, days []schedule.DaySchedule, loc *time.Location) error {
	ics := calendar.GenerateICS(days, "Milano Cortina 2026", loc, time.Now())
	if ics == "" {
		return fmt.Errorf("no events with a parseable date and time for %s", path)
	}
	if err := os.WriteFile(path, []byte(ics), 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}
