package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/report"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

// RunRecord summarizes one gate run. It deliberately leaves out the raw
// findings; those live in the results file.
type RunRecord struct {
	Timestamp    time.Time   `json:"timestamp"`
	ScanID       string      `json:"scan_id"`
	Repo         string      `json:"repo,omitempty"`
	Commit       string      `json:"commit,omitempty"`
	Branch       string      `json:"branch,omitempty"`
	Compliant    bool        `json:"compliant"`
	Templates    int         `json:"templates"`
	NonCompliant []string    `json:"non_compliant,omitempty"`
	Failed       []string    `json:"failed,omitempty"`
	Totals       types.Tally `json:"totals"`
	Duration     string      `json:"duration"`
}

// Log is an append-only JSON Lines file of RunRecords.
type Log struct {
	path string
}

// DefaultPath keeps the log inside .git when root is a repository.
func DefaultPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "templatescan_audit.jsonl")
	}
	return filepath.Join(root, ".templatescan_audit.jsonl")
}

func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the file the log writes to.
func (l *Log) Path() string { return l.path }

// History returns every record, newest first. Lines that fail to decode are
// skipped.
func (l *Log) History() ([]RunRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record RunRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Append writes record as one line.
func (l *Log) Append(record RunRecord) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// NewRecord builds the record of a finished run. Totals sum the tallies of
// every scanned template.
func NewRecord(rep types.Report, d report.Decision) RunRecord {
	rec := RunRecord{
		Timestamp:    time.Now().UTC(),
		ScanID:       rep.ScanID,
		Compliant:    d.Compliant,
		Templates:    len(rep.Outcomes),
		NonCompliant: d.NonCompliant,
		Failed:       d.Failed,
		Duration:     rep.Duration.String(),
	}
	for _, o := range rep.Outcomes {
		rec.Totals.Extreme += o.Results.Extreme
		rec.Totals.VeryHigh += o.Results.VeryHigh
		rec.Totals.High += o.Results.High
		rec.Totals.Medium += o.Results.Medium
		rec.Totals.Low += o.Results.Low
		rec.Totals.Unknown += o.Results.Unknown
	}
	return rec
}
