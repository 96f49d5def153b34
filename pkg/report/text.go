package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/cronwatch/core/pkg/compliance"
)

// DefaultTimeFormat renders timestamps as HH:MM DD/MM/YYYY
const DefaultTimeFormat = "15:04 02/01/2006"

var healthyStatuses = map[string]bool{
	"stable":         true,
	"back to normal": true,
}

// TextReporter writes the human-readable console report
type TextReporter struct {
	w          io.Writer
	timeFormat string
	warn       *color.Color
	fail       *color.Color
	ok         *color.Color
}

// NewText creates a console reporter. With colour off no escape codes are written.
func NewText(w io.Writer, timeFormat string, colour bool) *TextReporter {
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}

	r := &TextReporter{
		w:          w,
		timeFormat: timeFormat,
		warn:       color.New(color.FgYellow),
		fail:       color.New(color.FgRed, color.Bold),
		ok:         color.New(color.FgGreen),
	}
	if !colour {
		r.warn.DisableColor()
		r.fail.DisableColor()
		r.ok.DisableColor()
	}
	return r
}

func (r *TextReporter) Begin(info RunInfo) {
	r.underline("Checking execution times", "=")
	fmt.Fprintf(r.w, "Executed on: %s\n", info.ExecutedAt.Format(r.timeFormat))
	fmt.Fprintf(r.w, "Data source: %s\n\n", info.Source)
}

func (r *TextReporter) Entry(e EntryReport) {
	r.underline(e.Entry.Title, "-")

	switch status := e.Entry.StatusLabel; {
	case status == "":
	case healthyStatuses[strings.ToLower(status)]:
		fmt.Fprintf(r.w, "Last build status: %s\n", status)
	default:
		r.warning(r.warn, "Last build status: %s", status)
	}
	fmt.Fprintln(r.w, e.Entry.ResourceID)

	switch e.Outcome {
	case OutcomeFetchError:
		r.warning(r.warn, "Could not fetch job description: %v", e.Err)
	case OutcomeSkipped:
		r.warning(r.warn, "Skipped, Jenkins stopped answering description requests.")
	case OutcomeUnmonitorable:
		r.info("No cron string found, can't monitor execution times.")
	case OutcomeScheduleError:
		fmt.Fprintf(r.w, "Cron string: %s\n", e.Cron)
		r.warning(r.warn, "Cron string not usable, job not checked: %v", e.Err)
	case OutcomeChecked:
		fmt.Fprintf(r.w, "Cron string: %s\n", e.Cron)
		r.result(e.Result)
	}

	fmt.Fprintln(r.w)
}

func (r *TextReporter) result(res compliance.Result) {
	switch res.Verdict() {
	case compliance.VerdictTolerated:
		for _, missed := range res.MissedRuns {
			fmt.Fprintf(r.w, "Missed execution time: %s\n", missed.Format(r.timeFormat))
		}
		r.info(fmt.Sprintf("%d missed execution(s) within tolerance.", res.MissedCount))
	case compliance.VerdictFailed:
		for _, missed := range res.MissedRuns {
			r.warning(r.fail, "Missed execution: %s", missed.Format(r.timeFormat))
		}
		r.warning(r.fail, "Did not execute in time!")
	}
	fmt.Fprintf(r.w, "Last executed on: %s\n", res.ActualLastRun.Format(r.timeFormat))
}

func (r *TextReporter) End(s Summary) {
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("=", 10))
	if s.Errored > 0 {
		r.info(fmt.Sprintf("%d job(s) could not be checked.", s.Errored))
	}
	if s.Skipped > 0 {
		r.warning(r.warn, "%d job(s) skipped after repeated description failures.", s.Skipped)
	}
	if s.HasFailures() {
		r.warning(r.fail, "One or more cronjobs failed to execute!")
		return
	}
	r.ok.Fprintln(r.w, "All cronjobs executed in time.")
}

func (r *TextReporter) underline(title, character string) {
	fmt.Fprintln(r.w, title)
	fmt.Fprintln(r.w, strings.Repeat(character, len(title)+2))
}

func (r *TextReporter) warning(c *color.Color, format string, args ...interface{}) {
	c.Fprintf(r.w, "/!\\ "+format+"\n", args...)
}

func (r *TextReporter) info(msg string) {
	fmt.Fprintf(r.w, "[i] %s\n", msg)
}
