package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cronwatch/core/internal/config"
	"github.com/cronwatch/core/pkg/compliance"
	"github.com/cronwatch/core/pkg/jenkins"
	"github.com/cronwatch/core/pkg/jobs"
	"github.com/cronwatch/core/pkg/logger"
	"github.com/cronwatch/core/pkg/report"
	"github.com/cronwatch/core/pkg/services"
)

const (
	exitFailed = 1
	exitFatal  = 2
)

// exitError carries the process exit code out of a command. err is nil when
// the report already said everything.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func fatal(err error) error {
	return &exitError{code: exitFatal, err: err}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "cronwatch",
		Short: "Check that Jenkins cron jobs ran when their schedule said they would",
		Long: `cronwatch reads the latest builds feed of a Jenkins view, extracts the
"cron string:" line from each job description and reports every job whose
last build is older than its most recent scheduled firing.

Exit status is 0 when all jobs ran in time, 1 when at least one did not and
2 when the feed could not be read or the configuration is invalid.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fatal(err)
			}

			stdout := cmd.OutOrStdout()
			newReporter := func() report.Reporter {
				if cfg.Report.Format == config.FormatJSON {
					return report.NewJSON(stdout)
				}
				return report.NewText(stdout, cfg.Report.TimeFormat, !noColor)
			}

			client := jenkins.NewClient(&jenkins.Config{
				FeedURL:         cfg.FeedURL(),
				Timeout:         cfg.HTTPTimeout(),
				BreakerFailures: cfg.Jenkins.BreakerFailures,
			})
			checker := compliance.NewChecker(cfg.Check.AllowMissing, time.Now())
			monitor := services.NewMonitorService(client, checker)

			if cfg.Check.WatchSchedule != "" {
				return watch(cmd.Context(), monitor, newReporter, cfg.Check.WatchSchedule)
			}
			return runOnce(cmd.Context(), monitor, newReporter())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Check.WatchSchedule, "watch", cfg.Check.WatchSchedule, "keep running and re-check on this cron schedule")
	flags.StringVar(&cfg.Report.Format, "format", cfg.Report.Format, "report format: text or json")
	flags.IntVar(&cfg.Check.AllowMissing, "allow-missing", cfg.Check.AllowMissing, "number of missed executions tolerated per job")
	flags.BoolVar(&noColor, "no-color", false, "disable coloured output")

	return cmd
}

func runOnce(ctx context.Context, monitor jobs.Monitor, reporter report.Reporter) error {
	if ctx == nil {
		ctx = context.Background()
	}

	summary, err := monitor.Run(ctx, reporter)
	if err != nil {
		return fatal(err)
	}
	if w, ok := reporter.(interface{ Err() error }); ok && w.Err() != nil {
		return fatal(fmt.Errorf("failed to write report: %w", w.Err()))
	}
	if code := summary.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func watch(ctx context.Context, monitor jobs.Monitor, newReporter func() report.Reporter, schedule string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.New("cronwatch")

	jobManager := jobs.NewJobManager(jobs.DefaultManagerConfig())
	if err := jobManager.RegisterJob(jobs.NewComplianceCheckJob(monitor, newReporter, schedule)); err != nil {
		return fatal(err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobManager.Start()
	log.Info().
		Str("action", "watch_started").
		Str("schedule", schedule).
		Msg("Watching cron jobs")

	<-ctx.Done()

	log.Info().Str("action", "watch_stopping").Msg("Shutting down")
	jobManager.Stop()
	return nil
}
