package report

import (
	"strings"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

const (
	CompliantMessage    = "Template passes configured checks."
	NonCompliantMessage = "Security and/or misconfiguration issue(s) found in template(s): "
	ScanErrorMessage    = "Template(s) that could not be scanned: "
)

// Exceeds reports whether any known level has strictly more failing checks
// than its configured maximum. Levels without a maximum never exceed.
func Exceeds(t types.Tally, th types.Threshold) bool {
	return len(Exceeded(t, th)) > 0
}

// Exceeded lists the levels over their maximum, most severe first.
func Exceeded(t types.Tally, th types.Threshold) []types.RiskLevel {
	var out []types.RiskLevel
	for _, l := range types.RiskLevels {
		if max, ok := th.Max(l); ok && t.Count(l) > max {
			out = append(out, l)
		}
	}
	return out
}

// Compliant reports whether a single outcome was scanned and stays within th.
func Compliant(o types.Outcome, th types.Threshold) bool {
	return !o.Failed() && !Exceeds(o.Results, th)
}

// Decision is the verdict of a run.
type Decision struct {
	Compliant    bool     `json:"compliant"`
	Message      string   `json:"message"`
	NonCompliant []string `json:"nonCompliant,omitempty"`
	Failed       []string `json:"failed,omitempty"`
}

// Decide evaluates every outcome of rep against th. The run is compliant only
// when every template was scanned and none exceeds the threshold.
func Decide(rep types.Report, th types.Threshold) Decision {
	var d Decision
	for _, o := range rep.Outcomes {
		switch {
		case o.Failed():
			d.Failed = append(d.Failed, o.Template)
		case Exceeds(o.Results, th):
			d.NonCompliant = append(d.NonCompliant, o.Template)
		}
	}
	d.Compliant = len(d.Failed) == 0 && len(d.NonCompliant) == 0
	if d.Compliant {
		d.Message = CompliantMessage
		return d
	}
	var lines []string
	if len(d.NonCompliant) > 0 {
		lines = append(lines, NonCompliantMessage+" ["+strings.Join(d.NonCompliant, ",")+"]")
	}
	if len(d.Failed) > 0 {
		lines = append(lines, ScanErrorMessage+"["+strings.Join(d.Failed, ",")+"]")
	}
	d.Message = strings.Join(lines, "\n")
	return d
}
