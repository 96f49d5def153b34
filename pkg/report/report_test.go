package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cronwatch/core/pkg/compliance"
	"github.com/cronwatch/core/pkg/logger"
	"github.com/cronwatch/core/pkg/models"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func checked(title string, result compliance.Result) EntryReport {
	return EntryReport{
		Entry: models.JobEntry{
			Title:       title,
			StatusLabel: "stable",
			ResourceID:  "http://localhost:8080/job/" + title + "/",
			LastUpdated: result.ActualLastRun,
		},
		Outcome: OutcomeChecked,
		Cron:    result.Expression,
		Result:  result,
	}
}

var (
	compliantResult = compliance.Result{
		Expression:       "0 * * * *",
		ExpectedPriorRun: at(10, 0),
		ActualLastRun:    at(9, 0),
		WithinTolerance:  true,
	}
	failedResult = compliance.Result{
		Expression:       "0 * * * *",
		ExpectedPriorRun: at(10, 0),
		ActualLastRun:    at(7, 0),
		MissedCount:      1,
		MissedRuns:       []time.Time{at(10, 0)},
	}
	toleratedResult = compliance.Result{
		Expression:       "0 */2 * * *",
		ExpectedPriorRun: at(10, 0),
		ActualLastRun:    at(8, 30),
		MissedCount:      1,
		MissedRuns:       []time.Time{at(10, 0)},
		WithinTolerance:  true,
	}
)

func TestSummary_Add(t *testing.T) {
	var s Summary
	s = s.Add(checked("a", compliantResult))
	s = s.Add(checked("b", toleratedResult))
	s = s.Add(EntryReport{Outcome: OutcomeUnmonitorable})
	s = s.Add(EntryReport{Outcome: OutcomeScheduleError, Err: errors.New("bad")})

	if s.Checked != 2 || s.Compliant != 1 || s.Tolerated != 1 || s.Unmonitorable != 1 || s.Errored != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.HasFailures() || s.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", s.ExitCode())
	}

	s = s.Add(checked("c", failedResult))
	if !s.HasFailures() || s.ExitCode() != 1 {
		t.Errorf("expected exit code 1 after a failure, got %d", s.ExitCode())
	}
}

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, "", false)

	r.Begin(RunInfo{ExecutedAt: at(10, 5), Source: "http://localhost:8080/view/Cronjobs/rssLatest"})
	r.Entry(checked("backup", compliantResult))
	r.Entry(checked("sync", failedResult))
	r.Entry(EntryReport{
		Entry:   models.JobEntry{Title: "deploy", StatusLabel: "broken since build #3", ResourceID: "http://localhost:8080/job/deploy/"},
		Outcome: OutcomeUnmonitorable,
	})
	r.Entry(EntryReport{
		Entry:   models.JobEntry{Title: "report", StatusLabel: "stable", ResourceID: "http://localhost:8080/job/report/"},
		Outcome: OutcomeScheduleError,
		Cron:    "H 2 * * *",
		Err:     errors.New("syntax error"),
	})
	r.End(Summary{Checked: 2, Compliant: 1, Failed: 1, Unmonitorable: 1, Errored: 1})

	out := buf.String()
	for _, want := range []string{
		"Checking execution times\n==========================\n",
		"Executed on: 10:05 01/01/2024\n",
		"Data source: http://localhost:8080/view/Cronjobs/rssLatest\n",
		"backup\n--------\n",
		"Cron string: 0 * * * *\nLast executed on: 09:00 01/01/2024\n",
		"/!\\ Missed execution: 10:00 01/01/2024\n",
		"/!\\ Did not execute in time!\n",
		"/!\\ Last build status: broken since build #3\n",
		"[i] No cron string found, can't monitor execution times.\n",
		"/!\\ Cron string not usable, job not checked: syntax error\n",
		"[i] 1 job(s) could not be checked.\n",
		"==========\n/!\\ One or more cronjobs failed to execute!\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n--- output ---\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("expected no colour escapes with colour disabled")
	}
}

func TestTextReporter_AllGood(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, DefaultTimeFormat, false)

	r.Begin(RunInfo{ExecutedAt: at(10, 5), Source: "feed"})
	r.Entry(checked("sync", toleratedResult))
	r.End(Summary{Checked: 1, Tolerated: 1})

	out := buf.String()
	for _, want := range []string{
		"Missed execution time: 10:00 01/01/2024\n",
		"[i] 1 missed execution(s) within tolerance.\n",
		"All cronjobs executed in time.\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n--- output ---\n%s", want, out)
		}
	}
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSON(&buf)

	r.Begin(RunInfo{RunID: "run-1", ExecutedAt: at(10, 5), Source: "feed"})
	r.Entry(checked("Nightly Backup", failedResult))
	r.Entry(EntryReport{
		Entry:   models.JobEntry{Title: "deploy"},
		Outcome: OutcomeFetchError,
		Err:     errors.New("connection refused"),
	})
	r.End(Summary{Checked: 1, Failed: 1, Errored: 1})

	var doc struct {
		RunID   string `json:"run_id"`
		Entries []struct {
			Key     string `json:"key"`
			Outcome string `json:"outcome"`
			Verdict string `json:"verdict"`
			Error   string `json:"error"`
			Result  *struct {
				MissedCount int `json:"missed_count"`
			} `json:"result"`
		} `json:"entries"`
		Summary  Summary `json:"summary"`
		ExitCode int     `json:"exit_code"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if doc.RunID != "run-1" {
		t.Errorf("run_id = %q", doc.RunID)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(doc.Entries))
	}
	if doc.Entries[0].Key != "nightly-backup" || doc.Entries[0].Verdict != "failed" {
		t.Errorf("unexpected first entry %+v", doc.Entries[0])
	}
	if doc.Entries[0].Result == nil || doc.Entries[0].Result.MissedCount != 1 {
		t.Errorf("expected result with one missed run")
	}
	if doc.Entries[1].Outcome != "fetch_error" || doc.Entries[1].Error != "connection refused" || doc.Entries[1].Result != nil {
		t.Errorf("unexpected second entry %+v", doc.Entries[1])
	}
	if doc.ExitCode != 1 || doc.Summary.Failed != 1 {
		t.Errorf("exit_code = %d, summary = %+v", doc.ExitCode, doc.Summary)
	}
}

func TestSummary_SkippedDoesNotFail(t *testing.T) {
	var s Summary
	s = s.Add(checked("a", compliantResult))
	s = s.Add(EntryReport{Entry: models.JobEntry{Title: "b"}, Outcome: OutcomeSkipped})

	if s.Skipped != 1 || s.Errored != 0 || s.Checked != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.ExitCode() != 0 {
		t.Errorf("ExitCode = %d, want 0", s.ExitCode())
	}
}

func TestTextReporter_SkippedAndMissingStatus(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, "", false)

	r.Begin(RunInfo{ExecutedAt: at(10, 5), Source: "feed"})
	r.Entry(EntryReport{
		Entry:   models.JobEntry{Title: "cleanup", ResourceID: "http://localhost:8080/job/cleanup/"},
		Outcome: OutcomeSkipped,
	})
	r.End(Summary{Skipped: 1})

	out := buf.String()
	if strings.Contains(out, "Last build status") {
		t.Errorf("status line printed for an entry without status:\n%s", out)
	}
	for _, want := range []string{
		"/!\\ Skipped, Jenkins stopped answering description requests.",
		"/!\\ 1 job(s) skipped after repeated description failures.",
		"All cronjobs executed in time.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestJSONReporter_WriteError(t *testing.T) {
	var logs bytes.Buffer
	prev := logger.Output
	logger.Output = &logs
	defer func() { logger.Output = prev }()

	r := NewJSON(failingWriter{})
	r.Begin(RunInfo{RunID: "run-2", ExecutedAt: at(10, 5), Source: "feed"})
	r.End(Summary{})

	if r.Err() == nil || !strings.Contains(r.Err().Error(), "broken pipe") {
		t.Errorf("Err() = %v, want broken pipe", r.Err())
	}
	if !strings.Contains(logs.String(), "report_write_failed") {
		t.Errorf("write failure not logged: %q", logs.String())
	}
}
