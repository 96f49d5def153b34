package jobs

import (
	"context"
	"time"

	"github.com/cronwatch/core/pkg/logger"
	"github.com/cronwatch/core/pkg/report"
)

// ComplianceCheckJob re-runs the compliance check on a schedule
type ComplianceCheckJob struct {
	monitor     Monitor
	newReporter func() report.Reporter
	schedule    string
}

// NewComplianceCheckJob creates a job that checks the feed on every firing
// of schedule. newReporter is called once per run.
func NewComplianceCheckJob(monitor Monitor, newReporter func() report.Reporter, schedule string) Job {
	return &ComplianceCheckJob{
		monitor:     monitor,
		newReporter: newReporter,
		schedule:    schedule,
	}
}

func (j *ComplianceCheckJob) Execute(ctx context.Context) error {
	log := logger.WithContext(ctx, "compliance-check")
	start := time.Now()

	summary, err := j.monitor.Run(ctx, j.newReporter())
	if err != nil {
		return err
	}

	log.LogJobComplete(j.Name(), time.Since(start), summary.Checked, summary.Errored+summary.Skipped)
	if summary.HasFailures() {
		log.Warn().
			Str("action", "jobs_missed_schedule").
			Int("failed", summary.Failed).
			Int("exit_code", summary.ExitCode()).
			Msg("One or more cron jobs did not execute in time")
	}

	return nil
}

func (j *ComplianceCheckJob) Name() string {
	return "compliance_check"
}

func (j *ComplianceCheckJob) Schedule() string {
	return j.schedule
}
