package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/cronwatch/core/pkg/logger"
)

type cronJobManager struct {
	cron       *cron.Cron
	jobs       []Job
	logger     *logger.Logger
	timeout    time.Duration
	runOnStart bool
}

// ManagerConfig holds configuration for the job manager
type ManagerConfig struct {
	Location   *time.Location
	Timeout    time.Duration // Upper bound for a single execution
	RunOnStart bool          // Execute every job once when the manager starts
}

// DefaultManagerConfig returns defaults for watch mode
func DefaultManagerConfig() *ManagerConfig {
	return &ManagerConfig{
		Location:   time.Local,
		Timeout:    10 * time.Minute,
		RunOnStart: true,
	}
}

// NewJobManager creates a new job manager. A run still in progress when its
// next firing comes up is skipped, so checks never overlap.
func NewJobManager(config *ManagerConfig) JobManager {
	if config == nil {
		config = DefaultManagerConfig()
	}
	loc := config.Location
	if loc == nil {
		loc = time.Local
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultManagerConfig().Timeout
	}

	return &cronJobManager{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		jobs:       make([]Job, 0),
		logger:     logger.New("job-manager"),
		timeout:    timeout,
		runOnStart: config.RunOnStart,
	}
}

func (m *cronJobManager) RegisterJob(job Job) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	m.logger.Info().
		Str("action", "register_job").
		Str("job_name", job.Name()).
		Str("schedule", job.Schedule()).
		Msg("Registering job")

	_, err := m.cron.AddFunc(job.Schedule(), func() {
		m.execute(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}

	m.jobs = append(m.jobs, job)
	return nil
}

func (m *cronJobManager) execute(job Job) {
	requestID := uuid.New().String()
	jobLogger := m.logger.WithRequestID(requestID).WithJob(job.Name())

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	ctx = jobLogger.ToContext(ctx)

	jobLogger.LogJobStart(job.Name(), job.Schedule())
	start := time.Now()

	if err := job.Execute(ctx); err != nil {
		jobLogger.Error().
			Err(err).
			Str("action", "job_failed").
			Dur("duration", time.Since(start)).
			Msg("Job execution failed")
		return
	}
	jobLogger.Info().
		Str("action", "job_finished").
		Dur("duration", time.Since(start)).
		Msg("Job execution finished")
}

func (m *cronJobManager) Start() {
	m.logger.Info().
		Str("action", "start").
		Int("job_count", len(m.jobs)).
		Bool("run_on_start", m.runOnStart).
		Msg("Starting job manager")

	if m.runOnStart {
		for _, job := range m.jobs {
			m.execute(job)
		}
	}

	m.cron.Start()
}

func (m *cronJobManager) Stop() {
	m.logger.Info().
		Str("action", "stop_initiated").
		Msg("Stopping job manager")

	ctx := m.cron.Stop()
	<-ctx.Done()

	m.logger.Info().
		Str("action", "stopped").
		Msg("Job manager stopped")
}

func (m *cronJobManager) GetJobs() []Job {
	return append([]Job(nil), m.jobs...)
}
