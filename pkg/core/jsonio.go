package core

import (
	"encoding/json"
	"io"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/report"
)

// MarshalResult pretty-prints a result as JSON for humans or pipelines. The
// shape matches the CLI's --json output.
func MarshalResult(w io.Writer, res Result) error {
	return report.WriteJSON(w, res.Report, res.Decision)
}

// UnmarshalResult decodes a result written by MarshalResult or the CLI.
func UnmarshalResult(r io.Reader) (Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return Result{}, err
	}
	return res, nil
}
