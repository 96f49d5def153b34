// Package report renders compliance results and folds them into the
// process exit status.
package report

import (
	"time"

	"github.com/cronwatch/core/pkg/compliance"
	"github.com/cronwatch/core/pkg/models"
)

// Outcome says how far the check of one entry got
type Outcome string

const (
	OutcomeChecked       Outcome = "checked"
	OutcomeUnmonitorable Outcome = "unmonitorable"
	OutcomeScheduleError Outcome = "schedule_error"
	OutcomeFetchError    Outcome = "fetch_error"
	// OutcomeSkipped means the description was never requested because the
	// circuit breaker had opened.
	OutcomeSkipped Outcome = "skipped"
)

// RunInfo describes a check run
type RunInfo struct {
	RunID      string
	ExecutedAt time.Time
	Source     string
}

// EntryReport is the outcome for one feed entry
type EntryReport struct {
	Entry   models.JobEntry
	Outcome Outcome
	Cron    string
	Result  compliance.Result
	Err     error
}

// Reporter renders a run. Calls arrive as Begin, Entry per feed entry, End.
type Reporter interface {
	Begin(info RunInfo)
	Entry(entry EntryReport)
	End(summary Summary)
}

// Summary aggregates entry outcomes for one run
type Summary struct {
	Checked       int `json:"checked"`
	Compliant     int `json:"compliant"`
	Tolerated     int `json:"tolerated"`
	Failed        int `json:"failed"`
	Unmonitorable int `json:"unmonitorable"`
	Errored       int `json:"errored"`
	Skipped       int `json:"skipped"`
}

// Add folds one entry into the summary. Entries that could not be checked
// never count as failures.
func (s Summary) Add(entry EntryReport) Summary {
	switch entry.Outcome {
	case OutcomeUnmonitorable:
		s.Unmonitorable++
	case OutcomeScheduleError, OutcomeFetchError:
		s.Errored++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeChecked:
		s.Checked++
		switch entry.Result.Verdict() {
		case compliance.VerdictCompliant:
			s.Compliant++
		case compliance.VerdictTolerated:
			s.Tolerated++
		case compliance.VerdictFailed:
			s.Failed++
		}
	}
	return s
}

// HasFailures reports whether any checked entry hard-failed
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// ExitCode is 1 when any entry hard-failed, 0 otherwise
func (s Summary) ExitCode() int {
	if s.HasFailures() {
		return 1
	}
	return 0
}
