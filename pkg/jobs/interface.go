package jobs

import (
	"context"

	"github.com/cronwatch/core/pkg/report"
)

// Job is a unit of work the manager fires on its own cron schedule.
type Job interface {
	Execute(ctx context.Context) error
	Name() string

	// Schedule uses the standard five fields or a descriptor such as
	// "@hourly". It is unrelated to the schedules of the monitored jobs.
	Schedule() string
}

// JobManager fires registered jobs until stopped
type JobManager interface {
	RegisterJob(job Job) error
	Start()
	// Stop waits for running jobs to return
	Stop()
	GetJobs() []Job
}

// Monitor runs one compliance check
type Monitor interface {
	Run(ctx context.Context, reporter report.Reporter) (report.Summary, error)
}
