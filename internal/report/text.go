package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

// PrintOptions tunes the human-readable reporters.
type PrintOptions struct {
	OutputResults bool
	NoColor       bool
}

// thresholdView renders a Threshold with unbounded levels left out.
type thresholdView struct {
	Extreme  *int `json:"extreme,omitempty"`
	VeryHigh *int `json:"veryHigh,omitempty"`
	High     *int `json:"high,omitempty"`
	Medium   *int `json:"medium,omitempty"`
	Low      *int `json:"low,omitempty"`
}

func viewThreshold(th types.Threshold) thresholdView {
	var v thresholdView
	for _, l := range types.RiskLevels {
		max, ok := th.Max(l)
		if !ok {
			continue
		}
		switch l {
		case types.RiskExtreme:
			v.Extreme = &max
		case types.RiskVeryHigh:
			v.VeryHigh = &max
		case types.RiskHigh:
			v.High = &max
		case types.RiskMedium:
			v.Medium = &max
		case types.RiskLow:
			v.Low = &max
		}
	}
	return v
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// PrintText writes the per-template block the pipeline log has always shown:
// the tally, the accepted quantities and, when requested, one line per
// failing check.
func PrintText(w io.Writer, rep types.Report, th types.Threshold, opts PrintOptions) {
	allowed := indentJSON(viewThreshold(th))
	for _, o := range rep.Outcomes {
		fmt.Fprintf(w, "Scan template: (%s)\n", o.Template)
		if o.Failed() {
			fmt.Fprintf(w, "Scan failed: %s\n\n", o.Error)
			continue
		}
		fmt.Fprintf(w, "\nFailures found: %s\n\n", indentJSON(o.Results))
		fmt.Fprintf(w, "Quantity of failures allowed: %s\n", allowed)
		if opts.OutputResults && len(o.Messages) > 0 {
			fmt.Fprintf(w, "\nResults:\n\n%s\n", strings.Join(o.Messages, "\n"))
		}
		fmt.Fprintln(w)
	}
}
