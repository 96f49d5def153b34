// Package compliance decides whether a scheduled job ran when its cron
// expression says it should have.
package compliance

import (
	"time"

	"github.com/cronwatch/core/pkg/schedule"
)

// GraceWindow is how long after an expected firing a run may still be recorded.
const GraceWindow = time.Hour

// Verdict summarises a Result
type Verdict string

const (
	VerdictCompliant Verdict = "compliant"
	VerdictTolerated Verdict = "tolerated"
	VerdictFailed    Verdict = "failed"
)

// Result is the outcome of checking one job
type Result struct {
	Expression       string      `json:"cron_string"`
	ExpectedPriorRun time.Time   `json:"expected_prior_run"`
	ActualLastRun    time.Time   `json:"actual_last_run"`
	MissedCount      int         `json:"missed_count"`
	MissedRuns       []time.Time `json:"missed_runs,omitempty"`
	WithinTolerance  bool        `json:"within_tolerance"`
}

// Verdict classifies the result
func (r Result) Verdict() Verdict {
	switch {
	case !r.WithinTolerance:
		return VerdictFailed
	case r.MissedCount > 0:
		return VerdictTolerated
	default:
		return VerdictCompliant
	}
}

// Checker evaluates jobs against their schedules. All fields are process-wide
// settings; a Checker keeps no state between evaluations.
type Checker struct {
	// ToleratedMisses is how many consecutive firings may be missed
	// before a job hard-fails.
	ToleratedMisses int

	// Offset and Location convert feed timestamps, see AssumeUTC.
	Offset   time.Duration
	Location *time.Location
}

// NewChecker creates a checker whose UTC offset is fixed at now
func NewChecker(toleratedMisses int, now time.Time) *Checker {
	return &Checker{
		ToleratedMisses: toleratedMisses,
		Offset:          LocalOffset(now),
		Location:        now.Location(),
	}
}

// Evaluate checks a job's last recorded execution against its cron expression.
// now is the anchor the expected prior run is computed from. A malformed or
// never-firing expression is returned as a *schedule.Error.
func (c *Checker) Evaluate(expr string, lastExecutedAt, now time.Time) (Result, error) {
	sched, err := schedule.Parse(expr)
	if err != nil {
		return Result{}, err
	}

	last := AssumeUTC(lastExecutedAt, c.Offset, c.Location)

	expected, err := sched.Prev(now)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Expression:       expr,
		ExpectedPriorRun: expected,
		ActualLastRun:    last,
		WithinTolerance:  true,
	}

	if !expected.After(last.Add(GraceWindow)) {
		return result, nil
	}

	result.MissedCount = 1
	result.MissedRuns = []time.Time{expected}

	// Walk one step past the allowance so exceeding it is observable.
	firing := expected
	for i := 0; i < c.ToleratedMisses; i++ {
		firing, err = sched.Prev(firing)
		if err != nil {
			return Result{}, err
		}
		if !firing.After(last) {
			break
		}
		result.MissedCount++
		result.MissedRuns = append(result.MissedRuns, firing)
	}

	result.WithinTolerance = result.MissedCount <= c.ToleratedMisses
	return result, nil
}

// Evaluate checks a single job, taking the UTC offset from now's zone.
func Evaluate(expr string, lastExecutedAt, now time.Time, toleratedMisses int) (Result, error) {
	return NewChecker(toleratedMisses, now).Evaluate(expr, lastExecutedAt, now)
}
