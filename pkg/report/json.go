package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/cronwatch/core/pkg/compliance"
	"github.com/cronwatch/core/pkg/logger"
	"github.com/cronwatch/core/pkg/utils"
)

type jsonEntry struct {
	Key         string             `json:"key"`
	Title       string             `json:"title"`
	Status      string             `json:"status"`
	URL         string             `json:"url"`
	LastUpdated time.Time          `json:"last_updated"`
	Outcome     Outcome            `json:"outcome"`
	Cron        string             `json:"cron_string,omitempty"`
	Verdict     compliance.Verdict `json:"verdict,omitempty"`
	Result      *compliance.Result `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
}

type jsonDocument struct {
	RunID      string      `json:"run_id,omitempty"`
	ExecutedAt time.Time   `json:"executed_at"`
	Source     string      `json:"source"`
	Entries    []jsonEntry `json:"entries"`
	Summary    Summary     `json:"summary"`
	ExitCode   int         `json:"exit_code"`
}

// JSONReporter buffers a run and writes it as one JSON document on End
type JSONReporter struct {
	w   io.Writer
	doc jsonDocument
	err error
}

func NewJSON(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

func (r *JSONReporter) Begin(info RunInfo) {
	r.doc = jsonDocument{
		RunID:      info.RunID,
		ExecutedAt: info.ExecutedAt,
		Source:     info.Source,
		Entries:    []jsonEntry{},
	}
}

func (r *JSONReporter) Entry(e EntryReport) {
	je := jsonEntry{
		Key:         utils.GenerateJobKey(e.Entry.Title),
		Title:       e.Entry.Title,
		Status:      e.Entry.StatusLabel,
		URL:         e.Entry.ResourceID,
		LastUpdated: e.Entry.LastUpdated,
		Outcome:     e.Outcome,
		Cron:        e.Cron,
	}
	if e.Outcome == OutcomeChecked {
		result := e.Result
		je.Result = &result
		je.Verdict = result.Verdict()
	}
	if e.Err != nil {
		je.Error = e.Err.Error()
	}
	r.doc.Entries = append(r.doc.Entries, je)
}

func (r *JSONReporter) End(s Summary) {
	r.doc.Summary = s
	r.doc.ExitCode = s.ExitCode()

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.doc); err != nil {
		r.err = err
		logger.New("report").Error().
			Err(err).
			Str("action", "report_write_failed").
			Str("run_id", r.doc.RunID).
			Msg("Failed to write JSON report")
	}
}

// Err returns the error from writing the document, if any
func (r *JSONReporter) Err() error {
	return r.err
}
