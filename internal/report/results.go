package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

// DefaultResultsFile is where the raw results of a run are written.
const DefaultResultsFile = "results.json"

// WriteResults stores rep, raw scan results included, as indented JSON.
func WriteResults(path string, rep types.Report) error {
	if path == "" {
		path = DefaultResultsFile
	}
	if rep.Outcomes == nil {
		rep.Outcomes = []types.Outcome{}
	}
	buf, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// Summary is the machine-readable output of a run.
type Summary struct {
	Decision
	Report types.Report `json:"report"`
}

// WriteJSON writes the decision and the report to w.
func WriteJSON(w io.Writer, rep types.Report, d Decision) error {
	if rep.Outcomes == nil {
		rep.Outcomes = []types.Outcome{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Summary{Decision: d, Report: rep})
}
