package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cronwatch/core/pkg/compliance"
	"github.com/cronwatch/core/pkg/jenkins"
	"github.com/cronwatch/core/pkg/logger"
	"github.com/cronwatch/core/pkg/models"
	"github.com/cronwatch/core/pkg/report"
	"github.com/cronwatch/core/pkg/schedule"
)

// MonitorService runs one compliance check over the latest-builds feed
type MonitorService struct {
	jenkins JenkinsAPI
	checker *compliance.Checker
	now     func() time.Time
	logger  *logger.Logger
}

func NewMonitorService(api JenkinsAPI, checker *compliance.Checker) *MonitorService {
	return &MonitorService{
		jenkins: api,
		checker: checker,
		now:     time.Now,
		logger:  logger.New("monitor"),
	}
}

// Run fetches the feed and checks every entry in feed order. A feed that
// cannot be fetched or parsed aborts the run; problems with a single entry
// are reported and the run continues.
func (s *MonitorService) Run(ctx context.Context, reporter report.Reporter) (report.Summary, error) {
	runID := uuid.New().String()
	log := logger.WithContext(ctx, "monitor").WithRequestID(runID)
	now := s.now()

	reporter.Begin(report.RunInfo{
		RunID:      runID,
		ExecutedAt: now,
		Source:     s.jenkins.FeedURL(),
	})

	entries, err := s.jenkins.FetchFeed(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("action", "feed_fetch_failed").
			Str("feed_url", s.jenkins.FeedURL()).
			Msg("Failed to read latest builds feed")
		return report.Summary{}, fmt.Errorf("failed to read feed: %w", err)
	}

	log.Info().
		Str("action", "feed_fetched").
		Int("entries", len(entries)).
		Msg("Fetched latest builds feed")

	var summary report.Summary
	for _, entry := range entries {
		er := s.checkEntry(ctx, log.WithEntry(entry.Title, entry.ResourceID), entry, now)
		reporter.Entry(er)
		summary = summary.Add(er)
	}

	reporter.End(summary)

	log.Info().
		Str("action", "run_complete").
		Int("checked", summary.Checked).
		Int("failed", summary.Failed).
		Int("tolerated", summary.Tolerated).
		Int("unmonitorable", summary.Unmonitorable).
		Int("errored", summary.Errored).
		Int("skipped", summary.Skipped).
		Msg("Compliance run completed")

	return summary, nil
}

func (s *MonitorService) checkEntry(ctx context.Context, log *logger.Logger, entry models.JobEntry, now time.Time) report.EntryReport {
	er := report.EntryReport{Entry: entry}

	description, err := s.jenkins.FetchDescription(ctx, entry.ResourceID)
	if jenkins.IsBreakerOpen(err) {
		log.Warn().
			Str("action", "description_fetch_skipped").
			Msg("Circuit breaker open, job not checked")
		er.Outcome = report.OutcomeSkipped
		er.Err = err
		return er
	}
	if err != nil {
		log.WithError(err).Warn().
			Str("action", "description_fetch_failed").
			Msg("Could not fetch job description")
		er.Outcome = report.OutcomeFetchError
		er.Err = err
		return er
	}

	cron, found := schedule.Extract(description)
	if !found {
		log.Debug().
			Str("action", "no_cron_string").
			Msg("Job has no cron string, not monitorable")
		er.Outcome = report.OutcomeUnmonitorable
		return er
	}
	er.Cron = cron

	result, err := s.checker.Evaluate(cron, entry.LastUpdated, now)
	if err != nil {
		var schedErr *schedule.Error
		if !errors.As(err, &schedErr) {
			err = fmt.Errorf("unexpected evaluation error: %w", err)
		}
		log.Warn().
			Err(err).
			Str("action", "invalid_cron_string").
			Str("cron", cron).
			Msg("Cron string not usable, job excluded from check")
		er.Outcome = report.OutcomeScheduleError
		er.Err = err
		return er
	}

	log.LogVerdict(cron, string(result.Verdict()), result.ExpectedPriorRun, result.ActualLastRun, result.MissedCount)
	er.Outcome = report.OutcomeChecked
	er.Result = result
	return er
}
